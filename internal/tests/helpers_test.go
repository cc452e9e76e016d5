package services_test

import (
	"context"
	"testing"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/core-ledger/internal/engine"
	"github.com/api-sage/core-ledger/internal/usecase/service_interfaces"
	"github.com/api-sage/core-ledger/internal/usecase/services"

	"github.com/shopspring/decimal"
)

const (
	testBankCode  = "100100"
	testBankKey   = "bank-100100"
	testOracleKey = "oracle-credit-rating"
)

type testEnv struct {
	engine       *engine.Engine
	ledger       *memory.LedgerStore
	executionLog *memory.ExecutionLog
	customerRepo *memory.CustomerRepository

	customers *services.CustomerService
	accounts  *services.AccountService
	transfers *services.TransferService
}

func (env *testEnv) newLoanService(oracle service_interfaces.CreditRatingProvider) *services.LoanService {
	return services.NewLoanService(env.ledger, oracle, env.engine, testBankKey, testOracleKey)
}

func (env *testEnv) newRecurringService() *services.RecurringService {
	return services.NewRecurringService(env.ledger, env.executionLog, env.transfers, env.engine)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	eng := engine.New(engine.Options{
		BankKey:               testBankKey,
		OracleKey:             testOracleKey,
		CreditRatingThreshold: 50,
	})
	ledger := memory.NewLedgerStore()
	customerRepo := memory.NewCustomerRepository()

	return &testEnv{
		engine:       eng,
		ledger:       ledger,
		executionLog: memory.NewExecutionLog(),
		customerRepo: customerRepo,
		customers:    services.NewCustomerService(customerRepo),
		accounts:     services.NewAccountService(ledger, customerRepo, eng, testBankCode, testBankKey),
		transfers:    services.NewTransferService(ledger, customerRepo, eng),
	}
}

// newActiveAccount provisions a customer with pin 1234, opens a current
// account for them, activates it and deposits the opening balance.
func (env *testEnv) newActiveAccount(t *testing.T, firstName string, openingBalance string) string {
	t.Helper()
	ctx := context.Background()

	customer, err := env.customers.CreateCustomer(ctx, models.CreateCustomerRequest{
		FirstName:      firstName,
		LastName:       "Tester",
		PhoneNumber:    "08030000000",
		TransactionPin: "1234",
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	account, err := env.accounts.CreateAccount(ctx, models.CreateAccountRequest{
		CustomerID: customer.Data.CustomerID,
		Currency:   "EUR",
		Type:       "CURRENT",
	})
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	if _, err := env.accounts.SetAccountStatus(ctx, models.SetStatusRequest{
		AccountID: account.Data.ID,
		Status:    "ACTIVE",
	}); err != nil {
		t.Fatalf("activate account failed: %v", err)
	}

	if openingBalance != "" {
		if _, err := env.accounts.DepositFunds(ctx, models.AmountRequest{
			AccountID: account.Data.ID,
			Amount:    decimal.RequireFromString(openingBalance),
			Currency:  "EUR",
		}); err != nil {
			t.Fatalf("opening deposit failed: %v", err)
		}
	}
	return account.Data.ID
}
