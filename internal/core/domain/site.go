package domain

// Site represents a merchant storefront whose transactions are settled independently.
type Site struct {
	SiteID   string `json:"siteID"` // Primary Key (e.g., UUID)
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"` // Inactive sites are excluded from the settlement roster
	AuditFields
}
