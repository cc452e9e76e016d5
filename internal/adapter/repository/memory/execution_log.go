package memory

import (
	"context"
	"sync"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
)

type ExecutionLog struct {
	mu      sync.Mutex
	entries map[string]domain.RecurringExecution
}

func NewExecutionLog() *ExecutionLog {
	return &ExecutionLog{entries: make(map[string]domain.RecurringExecution)}
}

func (l *ExecutionLog) Record(_ context.Context, entry domain.RecurringExecution) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// First delivery wins; a redelivered attempt is a no-op.
	if _, ok := l.entries[entry.DedupID]; ok {
		return nil
	}
	l.entries[entry.DedupID] = entry
	return nil
}

func (l *ExecutionLog) Get(_ context.Context, dedupID string) (domain.RecurringExecution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[dedupID]
	if !ok {
		return domain.RecurringExecution{}, commons.ErrRecordNotFound
	}
	return entry, nil
}

func (l *ExecutionLog) ListByPayment(_ context.Context, paymentID string) ([]domain.RecurringExecution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.RecurringExecution
	for _, entry := range l.entries {
		if entry.PaymentID == paymentID {
			out = append(out, entry)
		}
	}
	return out, nil
}
