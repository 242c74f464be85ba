package services

import (
	"github.com/finsight-app/finsight_backend/internal/core/ports"
	portssvc "github.com/finsight-app/finsight_backend/internal/core/ports/services"
	"github.com/finsight-app/finsight_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos ports.RepositoryProvider, generator ports.TextGenerator) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Auth = NewTokenService(cfg, container.User)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	container.Transaction = NewTransactionService(repos.TransactionRepo, repos.BudgetRepo)
	container.Budget = NewBudgetService(repos.BudgetRepo, repos.TransactionRepo)
	container.Goal = NewGoalService(repos.GoalRepo)

	contextBuilder := NewContextBuilderService(repos.TransactionRepo, repos.BudgetRepo)

	container.Assistant = NewAssistantService(
		generator,
		contextBuilder,
		repos.Conversations,
		WithCallTimeout(cfg.GeminiTimeout),
		WithRetryPolicy(cfg.GeminiRetries, cfg.GeminiBackoff, cfg.GeminiBackoffCap),
	)
	container.Report = NewReportService(generator, contextBuilder,
		WithReportCallTimeout(cfg.GeminiTimeout),
	)
	container.Import = NewImportService(generator, repos.TransactionRepo, repos.BudgetRepo,
		WithImportCallTimeout(cfg.GeminiTimeout),
	)

	return container
}
