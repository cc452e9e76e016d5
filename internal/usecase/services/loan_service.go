package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/engine"
	"github.com/api-sage/core-ledger/internal/logger"
	"github.com/api-sage/core-ledger/internal/usecase/service_interfaces"

	"github.com/google/uuid"
)

// issuanceWindow bounds how long a loan issuance transaction may stay in
// flight; the oracle assertion must cover the whole window.
const issuanceWindow = 5 * time.Minute

type LoanService struct {
	ledger    repo_interfaces.LedgerStore
	oracle    service_interfaces.CreditRatingProvider
	engine    *engine.Engine
	bankKey   string
	oracleKey string
}

func NewLoanService(
	ledger repo_interfaces.LedgerStore,
	oracle service_interfaces.CreditRatingProvider,
	eng *engine.Engine,
	bankKey string,
	oracleKey string,
) *LoanService {
	return &LoanService{
		ledger:    ledger,
		oracle:    oracle,
		engine:    eng,
		bankKey:   strings.TrimSpace(bankKey),
		oracleKey: strings.TrimSpace(oracleKey),
	}
}

func (s *LoanService) IssueLoan(ctx context.Context, req models.IssueLoanRequest) (commons.Response[models.IssueLoanResponse], error) {
	logger.Info("loan service issue loan request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.IssueLoanResponse]("validation failed", err.Error()), err
	}

	amount, err := domain.MoneyFromDecimal(req.Amount, req.Currency)
	if err != nil {
		return commons.ErrorResponse[models.IssueLoanResponse]("validation failed", err.Error()), err
	}

	current, err := s.ledger.GetAccount(ctx, strings.TrimSpace(req.AccountID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.IssueLoanResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.IssueLoanResponse]("failed to issue loan", "Unable to issue loan right now"), err
	}

	assertion, err := s.oracle.FetchAssertion(ctx, current.CustomerID)
	if err != nil {
		logger.Error("loan service credit rating fetch failed", err, logger.Fields{
			"customerId": current.CustomerID,
		})
		return commons.ErrorResponse[models.IssueLoanResponse]("failed to issue loan", "Credit rating is unavailable right now"), err
	}

	now := time.Now().UTC()
	funded, err := current.Deposit(amount)
	if err != nil {
		return rejectionResponse[models.IssueLoanResponse](err, "failed to issue loan")
	}
	funded.Version = current.Version + 1
	funded.LastTxAt = now

	loan := domain.NewLoanAccount(current.Bank, current.CustomerID, current.OwnerKey, amount)
	loan.LastTxAt = now

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Inputs:     []domain.State{current},
		Outputs:    []domain.State{funded, loan},
		Command:    domain.IssueLoan{Amount: amount, Assertion: assertion},
		Signers:    []string{s.bankKey, s.oracleKey},
		TimeWindow: domain.WindowBetween(now, now.Add(issuanceWindow)),
	}

	if err := s.engine.Verify(tx); err != nil {
		logger.Error("loan service transaction rejected", err, logger.Fields{
			"transactionId": tx.ID,
			"accountId":     current.ID,
			"rating":        assertion.Rating,
		})
		return rejectionResponse[models.IssueLoanResponse](err, "failed to issue loan")
	}
	if err := s.ledger.Append(ctx, tx); err != nil {
		return rejectionResponse[models.IssueLoanResponse](err, "failed to issue loan")
	}

	response := models.IssueLoanResponse{
		TransactionID: tx.ID,
		AccountID:     funded.ID,
		LoanAccountID: loan.ID,
		Amount:        amount.Decimal().StringFixed(2),
		Currency:      amount.Currency,
		Balance:       funded.Balance.Decimal().StringFixed(2),
	}

	logger.Info("loan service issue loan success", logger.Fields{
		"transactionId": tx.ID,
		"accountId":     funded.ID,
		"loanAccountId": loan.ID,
		"amount":        response.Amount,
	})
	return commons.SuccessResponse("Loan issued successfully", response), nil
}
