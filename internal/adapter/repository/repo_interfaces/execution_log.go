package repo_interfaces

import (
	"context"

	"github.com/api-sage/core-ledger/internal/domain"
)

// RecurringExecutionLog records every execution attempt of a recurring
// payment. Record is idempotent on the entry's DedupID: a redelivered attempt
// never produces a second row.
type RecurringExecutionLog interface {
	Record(ctx context.Context, entry domain.RecurringExecution) error
	Get(ctx context.Context, dedupID string) (domain.RecurringExecution, error)
	ListByPayment(ctx context.Context, paymentID string) ([]domain.RecurringExecution, error)
}
