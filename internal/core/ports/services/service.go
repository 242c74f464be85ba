package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	User        UserSvcFacade
	Auth        TokenSvcFacade
	GoogleOAuth GoogleOAuthHandlerSvcFacade
	APIToken    APITokenSvc
	Transaction TransactionSvcFacade
	Budget      BudgetSvcFacade
	Goal        GoalSvcFacade
	Assistant   AssistantSvc
	Report      ReportSvc
	Import      ImportSvc
}
