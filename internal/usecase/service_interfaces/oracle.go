package service_interfaces

import (
	"context"

	"github.com/api-sage/core-ledger/internal/domain"
)

// CreditRatingProvider fetches a countersignable rating assertion for a
// customer from the external oracle.
type CreditRatingProvider interface {
	FetchAssertion(ctx context.Context, customerID string) (domain.CreditRatingAssertion, error)
}
