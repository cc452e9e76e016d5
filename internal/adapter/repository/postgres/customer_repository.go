package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/logger"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	logger.Info("customer repository create", logger.Fields{
		"customerId": customer.CustomerID,
	})

	const query = `
INSERT INTO customers (
	customer_id,
	first_name,
	last_name,
	phone_number,
	signer_key,
	transaction_pin_hash
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`

	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		customer.CustomerID,
		customer.FirstName,
		customer.LastName,
		customer.PhoneNumber,
		customer.SignerKey,
		customer.TransactionPinHash,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		logger.Error("customer repository create failed", err, logger.Fields{
			"customerId": customer.CustomerID,
		})
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	customer.ID = id
	customer.CreatedAt = createdAt
	customer.UpdatedAt = updatedAt
	return customer, nil
}

func (r *CustomerRepository) GetByCustomerID(ctx context.Context, customerID string) (domain.Customer, error) {
	const query = `
SELECT id, customer_id, first_name, last_name, phone_number, signer_key, transaction_pin_hash, created_at, updated_at
FROM customers
WHERE customer_id = $1`

	var customer domain.Customer
	if err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&customer.ID,
		&customer.CustomerID,
		&customer.FirstName,
		&customer.LastName,
		&customer.PhoneNumber,
		&customer.SignerKey,
		&customer.TransactionPinHash,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, commons.ErrRecordNotFound
		}
		logger.Error("customer repository get failed", err, logger.Fields{
			"customerId": customerID,
		})
		return domain.Customer{}, fmt.Errorf("get customer by customer id: %w", err)
	}

	return customer, nil
}
