package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/usecase/services"

	"github.com/shopspring/decimal"
)

type stubOracle struct {
	rating int
}

func (o stubOracle) FetchAssertion(_ context.Context, customerID string) (domain.CreditRatingAssertion, error) {
	return domain.CreditRatingAssertion{
		CustomerID:   customerID,
		CustomerName: "Ada Tester",
		Rating:       o.rating,
		AssertedAt:   time.Now().UTC().Add(-time.Minute),
		Validity:     10 * time.Minute,
		OracleKey:    testOracleKey,
	}, nil
}

func TestLoanServiceIssueLoanValidationError(t *testing.T) {
	svc := services.NewLoanService(nil, nil, nil, testBankKey, testOracleKey)

	_, err := svc.IssueLoan(context.Background(), models.IssueLoanRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty issue loan request")
	}
}

func TestLoanServiceIssueLoanFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	accountID := env.newActiveAccount(t, "Ada", "10.00")

	svc := env.newLoanService(stubOracle{rating: 75})
	response, err := svc.IssueLoan(ctx, models.IssueLoanRequest{
		AccountID: accountID,
		Amount:    decimal.RequireFromString("100.00"),
		Currency:  "EUR",
	})
	if err != nil {
		t.Fatalf("issue loan failed: %v", err)
	}
	if response.Data.Balance != "110.00" {
		t.Fatalf("expected funded balance 110.00, got %s", response.Data.Balance)
	}

	loan, err := env.accounts.GetAccount(ctx, response.Data.LoanAccountID)
	if err != nil {
		t.Fatalf("get loan account failed: %v", err)
	}
	if loan.Data.Type != "LOAN" || loan.Data.Status != "ACTIVE" {
		t.Fatalf("unexpected loan account: %+v", loan.Data)
	}
	if loan.Data.Balance != "100.00" {
		t.Fatalf("expected outstanding principal 100.00, got %s", loan.Data.Balance)
	}
}

func TestLoanServiceRejectsLowCreditRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	accountID := env.newActiveAccount(t, "Ada", "10.00")

	svc := env.newLoanService(stubOracle{rating: 49})
	response, err := svc.IssueLoan(ctx, models.IssueLoanRequest{
		AccountID: accountID,
		Amount:    decimal.RequireFromString("100.00"),
		Currency:  "EUR",
	})
	if err == nil {
		t.Fatal("expected a low credit rating rejection")
	}
	if response.Message != "Credit rating 49 is below the required threshold of 50" {
		t.Fatalf("unexpected message: %q", response.Message)
	}

	account, err := env.accounts.GetAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Data.Balance != "10.00" {
		t.Fatalf("expected untouched balance, got %s", account.Data.Balance)
	}
}

func TestLoanServiceRepaymentByTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	accountID := env.newActiveAccount(t, "Ada", "10.00")

	svc := env.newLoanService(stubOracle{rating: 75})
	issued, err := svc.IssueLoan(ctx, models.IssueLoanRequest{
		AccountID: accountID,
		Amount:    decimal.RequireFromString("100.00"),
		Currency:  "EUR",
	})
	if err != nil {
		t.Fatalf("issue loan failed: %v", err)
	}

	if _, err := env.transfers.TransferFunds(ctx, models.IntrabankPaymentRequest{
		FromAccountID:  accountID,
		ToAccountID:    issued.Data.LoanAccountID,
		Amount:         decimal.RequireFromString("40.00"),
		Currency:       "EUR",
		TransactionPin: "1234",
	}); err != nil {
		t.Fatalf("repayment transfer failed: %v", err)
	}

	loan, err := env.accounts.GetAccount(ctx, issued.Data.LoanAccountID)
	if err != nil {
		t.Fatalf("get loan account failed: %v", err)
	}
	if loan.Data.Balance != "60.00" {
		t.Fatalf("expected outstanding principal 60.00, got %s", loan.Data.Balance)
	}

	// Overpaying the remaining principal is refused.
	if _, err := env.transfers.TransferFunds(ctx, models.IntrabankPaymentRequest{
		FromAccountID:  accountID,
		ToAccountID:    issued.Data.LoanAccountID,
		Amount:         decimal.RequireFromString("70.00"),
		Currency:       "EUR",
		TransactionPin: "1234",
	}); err == nil {
		t.Fatal("expected overpayment rejection")
	}
}
