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
	"github.com/shopspring/decimal"
)

type AccountService struct {
	ledger       repo_interfaces.LedgerStore
	customerRepo repo_interfaces.CustomerRepository
	engine       *engine.Engine
	bankCode     string
	bankKey      string
}

func NewAccountService(
	ledger repo_interfaces.LedgerStore,
	customerRepo repo_interfaces.CustomerRepository,
	eng *engine.Engine,
	bankCode string,
	bankKey string,
) *AccountService {
	return &AccountService{
		ledger:       ledger,
		customerRepo: customerRepo,
		engine:       eng,
		bankCode:     strings.TrimSpace(bankCode),
		bankKey:      strings.TrimSpace(bankKey),
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	customer, err := s.customerRepo.GetByCustomerID(ctx, strings.TrimSpace(req.CustomerID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Customer not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	var account domain.Account
	var cmd domain.Command
	switch strings.ToUpper(strings.TrimSpace(req.Type)) {
	case "SAVINGS":
		period, _ := time.ParseDuration(strings.TrimSpace(req.SavingsPeriod))
		account, err = domain.NewSavingsAccount(s.bankCode, customer.CustomerID, customer.SignerKey, req.Currency, time.Now().UTC(), period)
		cmd = domain.CreateSavingsAccount{}
	default:
		account, err = domain.NewCurrentAccount(s.bankCode, customer.CustomerID, customer.SignerKey, req.Currency)
		cmd = domain.CreateCurrentAccount{}
	}
	if err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	tx := domain.Transaction{
		ID:      uuid.NewString(),
		Outputs: []domain.State{account},
		Command: cmd,
		Signers: []string{customer.SignerKey},
	}
	if err := s.commit(ctx, tx); err != nil {
		return rejectionResponse[models.AccountResponse](err, "failed to create account")
	}

	response := mapAccountToResponse(account)
	logger.Info("account service create account success", logger.Fields{
		"accountId":  account.ID,
		"customerId": account.CustomerID,
		"type":       string(account.Kind),
	})
	return commons.SuccessResponse("account created successfully", response), nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID string) (commons.Response[models.AccountResponse], error) {
	if strings.TrimSpace(accountID) == "" {
		err := fmt.Errorf("accountId is required")
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.ledger.GetAccount(ctx, strings.TrimSpace(accountID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *AccountService) DepositFunds(ctx context.Context, req models.AmountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service deposit funds request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	return s.moveFunds(ctx, req, func(account domain.Account, amount domain.Money) (domain.Account, domain.Command, error) {
		out, err := account.Deposit(amount)
		return out, domain.DepositFunds{Amount: amount}, err
	})
}

func (s *AccountService) WithdrawFunds(ctx context.Context, req models.AmountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service withdraw funds request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	return s.moveFunds(ctx, req, func(account domain.Account, amount domain.Money) (domain.Account, domain.Command, error) {
		out, err := account.Withdraw(amount)
		return out, domain.WithdrawFunds{Amount: amount}, err
	})
}

func (s *AccountService) ApproveOverdraft(ctx context.Context, req models.AmountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service approve overdraft request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	return s.moveFunds(ctx, req, func(account domain.Account, amount domain.Money) (domain.Account, domain.Command, error) {
		return account.WithOverdraft(amount), domain.ApproveOverdraft{Amount: amount}, nil
	})
}

func (s *AccountService) SetAccountStatus(ctx context.Context, req models.SetStatusRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service set status request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.ledger.GetAccount(ctx, strings.TrimSpace(req.AccountID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to set status", "Unable to update account right now"), err
	}

	next := domain.AccountStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	out, err := account.WithStatus(next)
	if err != nil {
		return rejectionResponse[models.AccountResponse](err, "failed to set status")
	}
	out.Version = account.Version + 1
	out.LastTxAt = time.Now().UTC()

	tx := domain.Transaction{
		ID:      uuid.NewString(),
		Inputs:  []domain.State{account},
		Outputs: []domain.State{out},
		Command: domain.SetAccountStatus{Status: next},
		Signers: []string{s.bankKey},
	}
	if err := s.commit(ctx, tx); err != nil {
		return rejectionResponse[models.AccountResponse](err, "failed to set status")
	}

	return commons.SuccessResponse("account status updated successfully", mapAccountToResponse(out)), nil
}

func (s *AccountService) SetLimits(ctx context.Context, req models.SetLimitsRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service set limits request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.ledger.GetAccount(ctx, strings.TrimSpace(req.AccountID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to set limits", "Unable to update account right now"), err
	}

	out := account.WithLimits(req.WithdrawalDailyLimit, req.TransferDailyLimit)
	out.Version = account.Version + 1
	out.LastTxAt = time.Now().UTC()

	tx := domain.Transaction{
		ID:      uuid.NewString(),
		Inputs:  []domain.State{account},
		Outputs: []domain.State{out},
		Command: domain.SetLimits{
			WithdrawalDailyLimit: req.WithdrawalDailyLimit,
			TransferDailyLimit:   req.TransferDailyLimit,
		},
		Signers: []string{s.bankKey},
	}
	if err := s.commit(ctx, tx); err != nil {
		return rejectionResponse[models.AccountResponse](err, "failed to set limits")
	}

	return commons.SuccessResponse("account limits updated successfully", mapAccountToResponse(out)), nil
}

type mutation func(account domain.Account, amount domain.Money) (domain.Account, domain.Command, error)

func (s *AccountService) moveFunds(ctx context.Context, req models.AmountRequest, mutate mutation) (commons.Response[models.AccountResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	amount, err := domain.MoneyFromDecimal(req.Amount, req.Currency)
	if err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.ledger.GetAccount(ctx, strings.TrimSpace(req.AccountID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to process request", "Unable to process request right now"), err
	}

	now := time.Now().UTC()
	out, cmd, err := mutate(account, amount)
	if err != nil {
		return rejectionResponse[models.AccountResponse](err, "failed to process request")
	}
	out.Version = account.Version + 1
	out.LastTxAt = now

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Inputs:     []domain.State{account},
		Outputs:    []domain.State{out},
		Command:    cmd,
		Signers:    []string{s.bankKey},
		TimeWindow: domain.WindowFrom(now),
	}
	if err := s.commit(ctx, tx); err != nil {
		return rejectionResponse[models.AccountResponse](err, "failed to process request")
	}

	return commons.SuccessResponse("transaction successful", mapAccountToResponse(out)), nil
}

func (s *AccountService) commit(ctx context.Context, tx domain.Transaction) error {
	if err := s.engine.Verify(tx); err != nil {
		logger.Error("account service transaction rejected", err, logger.Fields{
			"transactionId": tx.ID,
			"command":       string(tx.Command.CommandType()),
		})
		return err
	}
	return s.ledger.Append(ctx, tx)
}

func rejectionResponse[T any](err error, fallback string) (commons.Response[T], error) {
	if rejection, ok := domain.AsRejection(err); ok {
		return commons.ErrorResponse[T](rejection.Reason), err
	}
	if errors.Is(err, commons.ErrStateConsumed) {
		return commons.ErrorResponse[T]("Input state already consumed", "The account was updated concurrently, retry"), err
	}
	return commons.ErrorResponse[T](fallback, "Unable to process request right now"), err
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	response := models.AccountResponse{
		ID:         account.ID,
		CustomerID: account.CustomerID,
		Type:       string(account.Kind),
		Status:     string(account.Status),
		Balance:    account.Balance.Decimal().StringFixed(2),
		Currency:   account.Balance.Currency,
	}
	if account.Kind == domain.AccountKindCurrent {
		response.WithdrawalDailyLimit = account.WithdrawalDailyLimit
		response.TransferDailyLimit = account.TransferDailyLimit
		response.OverdraftBalance = decimal.New(account.OverdraftBalance, -2).StringFixed(2)
		response.ApprovedOverdraftLimit = decimal.New(account.ApprovedOverdraftLimit, -2).StringFixed(2)
	}
	if account.Kind == domain.AccountKindSavings {
		end := account.SavingsEndDate
		response.SavingsEndDate = &end
	}
	return response
}
