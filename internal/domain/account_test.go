package domain

import (
	"testing"
	"time"
)

func eur(t *testing.T, minor int64) Money {
	t.Helper()
	m, err := NewMoney(minor, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func activeCurrent(t *testing.T, balance int64) Account {
	t.Helper()
	account, err := NewCurrentAccount("100100", "cust-1", "owner-1", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	account.Status = AccountStatusActive
	account.Balance = eur(t, balance)
	return account
}

func TestNewCurrentAccountStartsPendingWithZeroBalance(t *testing.T) {
	account, err := NewCurrentAccount("100100", "cust-1", "owner-1", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Status != AccountStatusPending {
		t.Fatalf("expected PENDING, got %s", account.Status)
	}
	if !account.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", account.Balance.String())
	}
	if account.Kind != AccountKindCurrent {
		t.Fatalf("expected CURRENT, got %s", account.Kind)
	}
}

func TestDepositReturnsFreshCopy(t *testing.T) {
	account := activeCurrent(t, 1000)
	out, err := account.Deposit(eur(t, 500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Balance.MinorUnits != 1500 {
		t.Fatalf("expected 1500, got %d", out.Balance.MinorUnits)
	}
	if account.Balance.MinorUnits != 1000 {
		t.Fatal("input account must not be mutated")
	}
}

func TestWithdrawShortfallMessage(t *testing.T) {
	account := activeCurrent(t, 1000)
	_, err := account.Withdraw(eur(t, 5000))
	if err == nil {
		t.Fatal("expected insufficient balance error")
	}
	rejection, ok := AsRejection(err)
	if !ok || rejection.Code != RejectInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
	if rejection.Reason != "Insufficient balance, missing 40.00 EUR" {
		t.Fatalf("unexpected message: %q", rejection.Reason)
	}
}

func TestWithdrawSplitsIntoOverdraft(t *testing.T) {
	account := activeCurrent(t, 1000)
	account.ApprovedOverdraftLimit = 2000

	out, err := account.Withdraw(eur(t, 1500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Balance.MinorUnits != 0 {
		t.Fatalf("expected zero cash balance, got %d", out.Balance.MinorUnits)
	}
	if out.OverdraftBalance != 500 {
		t.Fatalf("expected 500 drawn overdraft, got %d", out.OverdraftBalance)
	}
}

func TestWithdrawCountsOverdraftHeadroomTowardShortfall(t *testing.T) {
	account := activeCurrent(t, 1000)
	account.ApprovedOverdraftLimit = 2000
	account.OverdraftBalance = 500

	// Withdrawable is 1000 cash + 1500 remaining headroom.
	if _, err := account.Withdraw(eur(t, 2500)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := account.Withdraw(eur(t, 2501))
	rejection, ok := AsRejection(err)
	if !ok || rejection.Code != RejectInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
	if rejection.Reason != "Insufficient balance, missing 0.01 EUR" {
		t.Fatalf("unexpected message: %q", rejection.Reason)
	}
}

func TestRepayRejectsOverpayment(t *testing.T) {
	loan := NewLoanAccount("100100", "cust-1", "owner-1", eur(t, 1000))
	_, err := loan.Repay(eur(t, 1500))
	if err == nil {
		t.Fatal("expected error for repayment above outstanding balance")
	}

	out, err := loan.Repay(eur(t, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Balance.IsZero() {
		t.Fatalf("expected fully repaid loan, got %s", out.Balance.String())
	}
}

func TestStatusTransitionTotality(t *testing.T) {
	statuses := []AccountStatus{AccountStatusPending, AccountStatusActive, AccountStatusSuspended}
	allowed := map[AccountStatus]map[AccountStatus]bool{
		AccountStatusPending:   {AccountStatusActive: true, AccountStatusSuspended: true},
		AccountStatusActive:    {AccountStatusSuspended: true},
		AccountStatusSuspended: {AccountStatusActive: true},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := from.CanProgressTo(to)
			want := allowed[from][to]
			if got != want {
				t.Fatalf("transition %s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestWithStatusRejectionMessage(t *testing.T) {
	account := activeCurrent(t, 0)
	_, err := account.WithStatus(AccountStatusPending)
	rejection, ok := AsRejection(err)
	if !ok || rejection.Code != RejectInvalidStatusTransition {
		t.Fatalf("expected INVALID_STATUS_TRANSITION, got %v", err)
	}
	if rejection.Reason != "Account cannot progress from status: ACTIVE to status PENDING" {
		t.Fatalf("unexpected message: %q", rejection.Reason)
	}
}

func TestWithLimitsSentinelSemantics(t *testing.T) {
	account := activeCurrent(t, 0)
	limit := int64(5000)

	withLimit := account.WithLimits(&limit, nil)
	if withLimit.WithdrawalDailyLimit == nil || *withLimit.WithdrawalDailyLimit != 5000 {
		t.Fatal("expected withdrawal limit to be set")
	}
	if withLimit.TransferDailyLimit != nil {
		t.Fatal("nil limit must leave the field untouched")
	}

	reset := LimitReset
	cleared := withLimit.WithLimits(&reset, nil)
	if cleared.WithdrawalDailyLimit != nil {
		t.Fatal("expected LimitReset to clear the limit")
	}
}

func TestWithOverdraftResetsDrawnBalance(t *testing.T) {
	account := activeCurrent(t, 0)
	account.OverdraftBalance = 300
	account.ApprovedOverdraftLimit = 1000

	out := account.WithOverdraft(eur(t, 2000))
	if out.OverdraftBalance != 0 {
		t.Fatalf("expected drawn overdraft reset, got %d", out.OverdraftBalance)
	}
	if out.ApprovedOverdraftLimit != 2000 {
		t.Fatalf("expected limit 2000, got %d", out.ApprovedOverdraftLimit)
	}
}

func TestSavingsLocked(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	account, err := NewSavingsAccount("100100", "cust-1", "owner-1", "EUR", start, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !account.SavingsLocked(start.Add(24 * time.Hour)) {
		t.Fatal("expected account to be locked inside the savings period")
	}
	if account.SavingsLocked(account.SavingsEndDate) {
		t.Fatal("expected account to be unlocked at the end date")
	}
}
