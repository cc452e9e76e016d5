package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountKind string

const (
	AccountKindCurrent AccountKind = "CURRENT"
	AccountKindSavings AccountKind = "SAVINGS"
	AccountKindLoan    AccountKind = "LOAN"
)

// LimitReset is the sentinel limit value that clears a daily limit.
const LimitReset int64 = -1

// Account is the single closed representation of all account variants. Kind
// discriminates which of the variant fields are meaningful. Instances are
// immutable; every mutator returns a fresh copy and leaves authorization to
// the validation engine.
type Account struct {
	ID         string        `json:"id"`
	Bank       string        `json:"bank"`
	CustomerID string        `json:"customerId"`
	OwnerKey   string        `json:"ownerKey"`
	Kind       AccountKind   `json:"kind"`
	Status     AccountStatus `json:"status"`
	Balance    Money         `json:"balance"`
	Version    uint64        `json:"version"`
	LastTxAt   time.Time     `json:"lastTxAt"`

	// Current accounts only.
	WithdrawalDailyLimit   *int64 `json:"withdrawalDailyLimit,omitempty"`
	TransferDailyLimit     *int64 `json:"transferDailyLimit,omitempty"`
	OverdraftBalance       int64  `json:"overdraftBalance,omitempty"`
	ApprovedOverdraftLimit int64  `json:"approvedOverdraftLimit,omitempty"`

	// Savings accounts only.
	SavingsEndDate time.Time     `json:"savingsEndDate,omitempty"`
	SavingsPeriod  time.Duration `json:"savingsPeriod,omitempty"`
}

func NewCurrentAccount(bank, customerID, ownerKey, currency string) (Account, error) {
	zero, err := NewMoney(0, currency)
	if err != nil {
		return Account{}, err
	}
	return Account{
		ID:         uuid.NewString(),
		Bank:       bank,
		CustomerID: customerID,
		OwnerKey:   ownerKey,
		Kind:       AccountKindCurrent,
		Status:     AccountStatusPending,
		Balance:    zero,
	}, nil
}

func NewSavingsAccount(bank, customerID, ownerKey, currency string, start time.Time, period time.Duration) (Account, error) {
	zero, err := NewMoney(0, currency)
	if err != nil {
		return Account{}, err
	}
	return Account{
		ID:             uuid.NewString(),
		Bank:           bank,
		CustomerID:     customerID,
		OwnerKey:       ownerKey,
		Kind:           AccountKindSavings,
		Status:         AccountStatusPending,
		Balance:        zero,
		SavingsEndDate: start.Add(period),
		SavingsPeriod:  period,
	}, nil
}

// NewLoanAccount is only produced by loan issuance: it starts ACTIVE with the
// outstanding principal as its balance.
func NewLoanAccount(bank, customerID, ownerKey string, principal Money) Account {
	return Account{
		ID:         uuid.NewString(),
		Bank:       bank,
		CustomerID: customerID,
		OwnerKey:   ownerKey,
		Kind:       AccountKindLoan,
		Status:     AccountStatusActive,
		Balance:    principal,
	}
}

func (a Account) StateID() string {
	return a.ID
}

func (a Account) StateVersion() uint64 {
	return a.Version
}

// OverdraftHeadroom is the remaining approved overdraft a current account may
// still draw from.
func (a Account) OverdraftHeadroom() int64 {
	if a.Kind != AccountKindCurrent {
		return 0
	}
	if a.OverdraftBalance >= a.ApprovedOverdraftLimit {
		return 0
	}
	return a.ApprovedOverdraftLimit - a.OverdraftBalance
}

// Withdrawable reports how much the account can pay out right now, overdraft
// headroom included.
func (a Account) Withdrawable() int64 {
	return a.Balance.MinorUnits + a.OverdraftHeadroom()
}

func (a Account) Deposit(amount Money) (Account, error) {
	if !amount.IsPositive() {
		return Account{}, Rejectf(RejectStructural, "Deposit amount must be greater than zero")
	}
	next, err := a.Balance.Add(amount)
	if err != nil {
		return Account{}, err
	}
	out := a
	out.Balance = next
	return out, nil
}

// Withdraw pays out amount, drawing into approved overdraft once the cash
// balance is exhausted. The shortfall in the failure message is exact.
func (a Account) Withdraw(amount Money) (Account, error) {
	if !amount.IsPositive() {
		return Account{}, Rejectf(RejectStructural, "Withdrawal amount must be greater than zero")
	}
	if amount.Currency != a.Balance.Currency {
		return Account{}, Rejectf(RejectCurrencyMismatch, "Cannot mix currencies %s and %s", a.Balance.Currency, amount.Currency)
	}
	if a.Withdrawable() < amount.MinorUnits {
		missing := Money{MinorUnits: amount.MinorUnits - a.Withdrawable(), Currency: amount.Currency}
		return Account{}, Rejectf(RejectInsufficientFunds, "Insufficient balance, missing %s", missing.String())
	}

	out := a
	if amount.MinorUnits <= a.Balance.MinorUnits {
		out.Balance = Money{MinorUnits: a.Balance.MinorUnits - amount.MinorUnits, Currency: a.Balance.Currency}
		return out, nil
	}

	drawn := amount.MinorUnits - a.Balance.MinorUnits
	out.Balance = Money{MinorUnits: 0, Currency: a.Balance.Currency}
	out.OverdraftBalance = a.OverdraftBalance + drawn
	return out, nil
}

// Repay reduces an outstanding loan balance. Overpayment is refused so the
// balance invariant (never negative) holds.
func (a Account) Repay(amount Money) (Account, error) {
	if !amount.IsPositive() {
		return Account{}, Rejectf(RejectStructural, "Repayment amount must be greater than zero")
	}
	next, err := a.Balance.Sub(amount)
	if err != nil {
		return Account{}, Rejectf(RejectStructural, "Repayment exceeds outstanding loan balance of %s", a.Balance.String())
	}
	out := a
	out.Balance = next
	return out, nil
}

func (a Account) WithStatus(next AccountStatus) (Account, error) {
	if !a.Status.CanProgressTo(next) {
		return Account{}, Rejectf(RejectInvalidStatusTransition,
			"Account cannot progress from status: %s to status %s", a.Status, next)
	}
	out := a
	out.Status = next
	return out, nil
}

// WithLimits replaces the daily limits. A nil limit is left untouched; the
// LimitReset sentinel clears it.
func (a Account) WithLimits(withdrawalDailyLimit, transferDailyLimit *int64) Account {
	out := a
	if withdrawalDailyLimit != nil {
		if *withdrawalDailyLimit == LimitReset {
			out.WithdrawalDailyLimit = nil
		} else {
			v := *withdrawalDailyLimit
			out.WithdrawalDailyLimit = &v
		}
	}
	if transferDailyLimit != nil {
		if *transferDailyLimit == LimitReset {
			out.TransferDailyLimit = nil
		} else {
			v := *transferDailyLimit
			out.TransferDailyLimit = &v
		}
	}
	return out
}

// WithOverdraft approves an overdraft facility, resetting the drawn amount.
func (a Account) WithOverdraft(limit Money) Account {
	out := a
	out.OverdraftBalance = 0
	out.ApprovedOverdraftLimit = limit.MinorUnits
	return out
}

// SavingsLocked reports whether the savings lock window still covers now.
func (a Account) SavingsLocked(now time.Time) bool {
	return a.Kind == AccountKindSavings && now.Before(a.SavingsEndDate)
}
