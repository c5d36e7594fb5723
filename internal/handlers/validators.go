package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterCustomValidators installs the binding rules used by the DTOs.
// dgte0 accepts any decimal.Decimal value >= 0; fee rates and reserve
// targets must never be negative.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dgte0", decimalGTEZero)
	}
}

func decimalGTEZero(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !value.IsNegative()
}
