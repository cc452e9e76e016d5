package repo_interfaces

import (
	"context"

	"github.com/api-sage/core-ledger/internal/domain"
)

// LedgerStore persists the versioned, immutable states of the ledger. Append
// is the only write path: it atomically consumes every input version and
// records every output version. A second consumer of an already-consumed
// input fails with commons.ErrStateConsumed, which is how concurrent
// execution and cancellation of the same state race cleanly.
type LedgerStore interface {
	Append(ctx context.Context, tx domain.Transaction) error
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	GetRecurringPayment(ctx context.Context, id string) (domain.RecurringPayment, error)
	ListScheduledRecurringPayments(ctx context.Context) ([]domain.RecurringPayment, error)
}
