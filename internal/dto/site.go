package dto

import "github.com/paymentops/settlement-backend/internal/core/domain"

// CreateSiteRequest registers a new merchant site on the roster.
type CreateSiteRequest struct {
	Name string `json:"name" binding:"required"`
}

// SiteResponse is the API representation of a merchant site.
type SiteResponse struct {
	SiteID   string `json:"siteID"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// ToSiteResponse converts a domain site to its DTO.
func ToSiteResponse(s *domain.Site) SiteResponse {
	return SiteResponse{
		SiteID:   s.SiteID,
		Name:     s.Name,
		IsActive: s.IsActive,
	}
}

// ToSiteResponses converts a slice of domain sites.
func ToSiteResponses(sites []domain.Site) []SiteResponse {
	out := make([]SiteResponse, len(sites))
	for i := range sites {
		out[i] = ToSiteResponse(&sites[i])
	}
	return out
}
