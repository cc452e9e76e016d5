package service_interfaces

import (
	"context"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
)

type TransferService interface {
	TransferFunds(ctx context.Context, req models.IntrabankPaymentRequest) (commons.Response[models.IntrabankPaymentResponse], error)
	// ExecuteRecurringTransfer moves funds for one recurring payment
	// execution. It bypasses PIN verification: both owners already signed
	// the schedule itself.
	ExecuteRecurringTransfer(ctx context.Context, fromAccountID, toAccountID string, amount domain.Money) (string, error)
}
