package pgsql

import (
	"github.com/finsight-app/finsight_backend/internal/core/ports"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repositories. The
// conversation store is injected separately since chat history lives in
// memory, not Postgres.
func NewRepositoryProvider(dbPool *pgxpool.Pool, conversations portsrepo.ConversationStore) ports.RepositoryProvider {
	return ports.RepositoryProvider{
		UserRepo:        newPgxUserRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		BudgetRepo:      newPgxBudgetRepository(dbPool),
		GoalRepo:        newPgxGoalRepository(dbPool),
		APITokenRepo:    newPgxAPITokenRepository(dbPool),
		Conversations:   conversations,
	}
}
