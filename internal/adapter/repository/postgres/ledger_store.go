package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/logger"

	"github.com/lib/pq"
)

const kindRecurringPayment = "RECURRING_PAYMENT"

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Append consumes every input version and records every output version in one
// database transaction. A competing consumer of the same input version loses
// with commons.ErrStateConsumed.
func (s *LedgerStore) Append(ctx context.Context, tx domain.Transaction) error {
	logger.Info("ledger store append", logger.Fields{
		"transactionId": tx.ID,
		"command":       string(tx.Command.CommandType()),
		"inputs":        len(tx.Inputs),
		"outputs":       len(tx.Outputs),
	})

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = dbTx.Rollback() }()

	const record = `
INSERT INTO ledger_transactions (id, command, signers)
VALUES ($1, $2, $3)`

	if _, err := dbTx.ExecContext(ctx, record, tx.ID, string(tx.Command.CommandType()), pq.Array(tx.Signers)); err != nil {
		return fmt.Errorf("record transaction %s: %w", tx.ID, err)
	}

	const consume = `
UPDATE ledger_states
SET consumed_at = NOW(), consumed_tx_id = $3
WHERE state_id = $1 AND version = $2 AND consumed_at IS NULL`

	for _, ref := range tx.InputRefs() {
		result, err := dbTx.ExecContext(ctx, consume, ref.ID, ref.Version, tx.ID)
		if err != nil {
			return fmt.Errorf("consume state %s: %w", ref.String(), err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("consume state %s rows affected: %w", ref.String(), err)
		}
		if affected == 0 {
			exists, err := s.stateExists(ctx, dbTx, ref)
			if err != nil {
				return err
			}
			if !exists {
				return commons.ErrRecordNotFound
			}
			logger.Info("ledger store input already consumed", logger.Fields{
				"transactionId": tx.ID,
				"stateRef":      ref.String(),
			})
			return commons.ErrStateConsumed
		}
	}

	const insert = `
INSERT INTO ledger_states (state_id, version, kind, payload, created_tx_id)
VALUES ($1, $2, $3, $4, $5)`

	for _, out := range tx.Outputs {
		kind, payload, err := encodeState(out)
		if err != nil {
			return err
		}
		if _, err := dbTx.ExecContext(ctx, insert, out.StateID(), out.StateVersion(), kind, payload, tx.ID); err != nil {
			if isUniqueViolation(err) {
				return commons.ErrStateConsumed
			}
			return fmt.Errorf("insert state %s:%d: %w", out.StateID(), out.StateVersion(), err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit append tx: %w", err)
	}
	return nil
}

func (s *LedgerStore) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	payload, kind, err := s.latestUnconsumed(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if kind == kindRecurringPayment {
		return domain.Account{}, commons.ErrRecordNotFound
	}

	var account domain.Account
	if err := json.Unmarshal(payload, &account); err != nil {
		return domain.Account{}, fmt.Errorf("decode account %s: %w", id, err)
	}
	return account, nil
}

func (s *LedgerStore) GetRecurringPayment(ctx context.Context, id string) (domain.RecurringPayment, error) {
	payload, kind, err := s.latestUnconsumed(ctx, id)
	if err != nil {
		return domain.RecurringPayment{}, err
	}
	if kind != kindRecurringPayment {
		return domain.RecurringPayment{}, commons.ErrRecordNotFound
	}

	var payment domain.RecurringPayment
	if err := json.Unmarshal(payload, &payment); err != nil {
		return domain.RecurringPayment{}, fmt.Errorf("decode recurring payment %s: %w", id, err)
	}
	return payment, nil
}

func (s *LedgerStore) ListScheduledRecurringPayments(ctx context.Context) ([]domain.RecurringPayment, error) {
	const query = `
SELECT payload
FROM ledger_states
WHERE kind = $1 AND consumed_at IS NULL`

	rows, err := s.db.QueryContext(ctx, query, kindRecurringPayment)
	if err != nil {
		return nil, fmt.Errorf("list scheduled recurring payments: %w", err)
	}
	defer rows.Close()

	var out []domain.RecurringPayment
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan recurring payment: %w", err)
		}
		var payment domain.RecurringPayment
		if err := json.Unmarshal(payload, &payment); err != nil {
			return nil, fmt.Errorf("decode recurring payment: %w", err)
		}
		out = append(out, payment)
	}
	return out, rows.Err()
}

func (s *LedgerStore) latestUnconsumed(ctx context.Context, id string) ([]byte, string, error) {
	const query = `
SELECT payload, kind
FROM ledger_states
WHERE state_id = $1 AND consumed_at IS NULL
ORDER BY version DESC
LIMIT 1`

	var payload []byte
	var kind string
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&payload, &kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", commons.ErrRecordNotFound
		}
		return nil, "", fmt.Errorf("get state %s: %w", id, err)
	}
	return payload, kind, nil
}

func (s *LedgerStore) stateExists(ctx context.Context, dbTx *sql.Tx, ref domain.StateRef) (bool, error) {
	var exists bool
	const query = `
SELECT EXISTS (
	SELECT 1 FROM ledger_states WHERE state_id = $1 AND version = $2
)`
	if err := dbTx.QueryRowContext(ctx, query, ref.ID, ref.Version).Scan(&exists); err != nil {
		return false, fmt.Errorf("check state %s: %w", ref.String(), err)
	}
	return exists, nil
}

func encodeState(state domain.State) (string, []byte, error) {
	switch typed := state.(type) {
	case domain.Account:
		payload, err := json.Marshal(typed)
		if err != nil {
			return "", nil, fmt.Errorf("encode account %s: %w", typed.ID, err)
		}
		return string(typed.Kind), payload, nil
	case domain.RecurringPayment:
		payload, err := json.Marshal(typed)
		if err != nil {
			return "", nil, fmt.Errorf("encode recurring payment %s: %w", typed.ID, err)
		}
		return kindRecurringPayment, payload, nil
	default:
		return "", nil, fmt.Errorf("unsupported state type %T", state)
	}
}
