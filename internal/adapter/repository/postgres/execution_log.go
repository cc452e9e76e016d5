package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/logger"
)

type ExecutionLog struct {
	db *sql.DB
}

func NewExecutionLog(db *sql.DB) *ExecutionLog {
	return &ExecutionLog{db: db}
}

// Record inserts one execution attempt. The dedup id is the primary key, so a
// redelivered attempt hits the unique constraint and is dropped silently.
func (l *ExecutionLog) Record(ctx context.Context, entry domain.RecurringExecution) error {
	const query = `
INSERT INTO recurring_execution_log (dedup_id, payment_id, executed_at, succeeded, error, transfer_id)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := l.db.ExecContext(
		ctx,
		query,
		entry.DedupID,
		entry.PaymentID,
		entry.ExecutedAt,
		entry.Succeeded,
		entry.Error,
		entry.TransferID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			logger.Info("execution log duplicate delivery ignored", logger.Fields{
				"dedupId":   entry.DedupID,
				"paymentId": entry.PaymentID,
			})
			return nil
		}
		return fmt.Errorf("record execution %s: %w", entry.DedupID, err)
	}
	return nil
}

func (l *ExecutionLog) Get(ctx context.Context, dedupID string) (domain.RecurringExecution, error) {
	const query = `
SELECT dedup_id, payment_id, executed_at, succeeded, error, transfer_id
FROM recurring_execution_log
WHERE dedup_id = $1`

	var entry domain.RecurringExecution
	if err := l.db.QueryRowContext(ctx, query, dedupID).Scan(
		&entry.DedupID,
		&entry.PaymentID,
		&entry.ExecutedAt,
		&entry.Succeeded,
		&entry.Error,
		&entry.TransferID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RecurringExecution{}, commons.ErrRecordNotFound
		}
		return domain.RecurringExecution{}, fmt.Errorf("get execution %s: %w", dedupID, err)
	}
	return entry, nil
}

func (l *ExecutionLog) ListByPayment(ctx context.Context, paymentID string) ([]domain.RecurringExecution, error) {
	const query = `
SELECT dedup_id, payment_id, executed_at, succeeded, error, transfer_id
FROM recurring_execution_log
WHERE payment_id = $1
ORDER BY executed_at`

	rows, err := l.db.QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list executions for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	var out []domain.RecurringExecution
	for rows.Next() {
		var entry domain.RecurringExecution
		if err := rows.Scan(
			&entry.DedupID,
			&entry.PaymentID,
			&entry.ExecutedAt,
			&entry.Succeeded,
			&entry.Error,
			&entry.TransferID,
		); err != nil {
			return nil, fmt.Errorf("scan execution entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
