package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/engine"
	"github.com/api-sage/core-ledger/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TransferService struct {
	ledger       repo_interfaces.LedgerStore
	customerRepo repo_interfaces.CustomerRepository
	engine       *engine.Engine
}

func NewTransferService(
	ledger repo_interfaces.LedgerStore,
	customerRepo repo_interfaces.CustomerRepository,
	eng *engine.Engine,
) *TransferService {
	return &TransferService{
		ledger:       ledger,
		customerRepo: customerRepo,
		engine:       eng,
	}
}

func (s *TransferService) TransferFunds(ctx context.Context, req models.IntrabankPaymentRequest) (commons.Response[models.IntrabankPaymentResponse], error) {
	logger.Info("transfer service intrabank payment request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.IntrabankPaymentResponse]("validation failed", err.Error()), err
	}

	amount, err := domain.MoneyFromDecimal(req.Amount, req.Currency)
	if err != nil {
		return commons.ErrorResponse[models.IntrabankPaymentResponse]("validation failed", err.Error()), err
	}

	from, err := s.ledger.GetAccount(ctx, strings.TrimSpace(req.FromAccountID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.IntrabankPaymentResponse]("Debit account not found"), err
		}
		return commons.ErrorResponse[models.IntrabankPaymentResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	if err := s.verifyTransactionPin(ctx, from.CustomerID, req.TransactionPin); err != nil {
		return commons.ErrorResponse[models.IntrabankPaymentResponse]("transaction pin verification failed", err.Error()), err
	}

	transactionID, err := s.transfer(ctx, from, strings.TrimSpace(req.ToAccountID), amount)
	if err != nil {
		return rejectionResponse[models.IntrabankPaymentResponse](err, "failed to process transfer")
	}

	response := models.IntrabankPaymentResponse{
		TransactionID: transactionID,
		FromAccountID: from.ID,
		ToAccountID:   strings.TrimSpace(req.ToAccountID),
		Amount:        amount.Decimal().StringFixed(2),
		Currency:      amount.Currency,
	}

	logger.Info("transfer service intrabank payment success", logger.Fields{
		"transactionId": transactionID,
		"fromAccountId": response.FromAccountID,
		"toAccountId":   response.ToAccountID,
		"amount":        response.Amount,
	})
	return commons.SuccessResponse("Transaction successful", response), nil
}

func (s *TransferService) ExecuteRecurringTransfer(ctx context.Context, fromAccountID, toAccountID string, amount domain.Money) (string, error) {
	from, err := s.ledger.GetAccount(ctx, fromAccountID)
	if err != nil {
		return "", err
	}
	return s.transfer(ctx, from, toAccountID, amount)
}

// transfer builds, verifies and appends one intrabank payment transaction.
func (s *TransferService) transfer(ctx context.Context, from domain.Account, toAccountID string, amount domain.Money) (string, error) {
	to, err := s.ledger.GetAccount(ctx, toAccountID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	outFrom, err := from.Withdraw(amount)
	if err != nil {
		return "", err
	}
	outTo, err := creditAccount(to, amount)
	if err != nil {
		return "", err
	}
	outFrom.Version = from.Version + 1
	outFrom.LastTxAt = now
	outTo.Version = to.Version + 1
	outTo.LastTxAt = now

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Inputs:     []domain.State{from, to},
		Outputs:    []domain.State{outFrom, outTo},
		Command:    domain.CreateIntrabankPayment{Amount: amount},
		Signers:    []string{from.OwnerKey, to.OwnerKey},
		TimeWindow: domain.WindowFrom(now),
	}

	if err := s.engine.Verify(tx); err != nil {
		logger.Error("transfer service transaction rejected", err, logger.Fields{
			"transactionId": tx.ID,
			"fromAccountId": from.ID,
			"toAccountId":   to.ID,
		})
		return "", err
	}
	if err := s.ledger.Append(ctx, tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}

func (s *TransferService) verifyTransactionPin(ctx context.Context, customerID, pin string) error {
	customer, err := s.customerRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("transaction pin cannot be verified")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.TransactionPinHash), []byte(strings.TrimSpace(pin))); err != nil {
		return fmt.Errorf("transaction pin is incorrect")
	}
	return nil
}

// creditAccount applies an incoming amount: a payment towards a loan account
// is a repayment and reduces the outstanding principal.
func creditAccount(to domain.Account, amount domain.Money) (domain.Account, error) {
	if to.Kind == domain.AccountKindLoan {
		return to.Repay(amount)
	}
	return to.Deposit(amount)
}
