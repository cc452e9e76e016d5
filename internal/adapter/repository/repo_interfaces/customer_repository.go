package repo_interfaces

import (
	"context"

	"github.com/api-sage/core-ledger/internal/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	GetByCustomerID(ctx context.Context, customerID string) (domain.Customer, error)
}
