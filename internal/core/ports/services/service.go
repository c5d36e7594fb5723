package services

// ServiceContainer holds instances of all the application services.
// It is used for dependency injection into the route handlers.
type ServiceContainer struct {
	Settlement SettlementSvcFacade
	Pricing    PricingSvcFacade
	Site       SiteSvcFacade
}
