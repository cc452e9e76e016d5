package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"

	"github.com/google/uuid"
)

type CustomerRepository struct {
	mu        sync.Mutex
	customers map[string]domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[string]domain.Customer)}
}

func (r *CustomerRepository) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.customers[customer.CustomerID] = customer
	return customer, nil
}

func (r *CustomerRepository) GetByCustomerID(_ context.Context, customerID string) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.customers[customerID]
	if !ok {
		return domain.Customer{}, commons.ErrRecordNotFound
	}
	return customer, nil
}
