package ports

import (
	"github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
)

// RepositoryProvider holds all repository implementations used by the
// service layer.
type RepositoryProvider struct {
	UserRepo        repositories.UserRepositoryFacade
	TransactionRepo repositories.TransactionRepositoryFacade
	BudgetRepo      repositories.BudgetRepositoryFacade
	GoalRepo        repositories.GoalRepositoryFacade
	APITokenRepo    repositories.APITokenRepository
	Conversations   repositories.ConversationStore
}
