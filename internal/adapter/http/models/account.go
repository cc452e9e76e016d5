package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	CustomerID string `json:"customerId"`
	Currency   string `json:"currency"`
	// Type is CURRENT or SAVINGS. Loan accounts are only created by loan
	// issuance.
	Type string `json:"type"`
	// SavingsPeriod is required for savings accounts, e.g. "8760h".
	SavingsPeriod string `json:"savingsPeriod,omitempty"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.CustomerID) == "" {
		errs = append(errs, "customerId is required")
	}
	if len(strings.TrimSpace(r.Currency)) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}

	accountType := strings.ToUpper(strings.TrimSpace(r.Type))
	switch accountType {
	case "CURRENT":
		if strings.TrimSpace(r.SavingsPeriod) != "" {
			errs = append(errs, "savingsPeriod is only valid for savings accounts")
		}
	case "SAVINGS":
		period, err := time.ParseDuration(strings.TrimSpace(r.SavingsPeriod))
		if err != nil || period <= 0 {
			errs = append(errs, "savingsPeriod must be a positive duration")
		}
	default:
		errs = append(errs, "type must be CURRENT or SAVINGS")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	ID                     string     `json:"id"`
	CustomerID             string     `json:"customerId"`
	Type                   string     `json:"type"`
	Status                 string     `json:"status"`
	Balance                string     `json:"balance"`
	Currency               string     `json:"currency"`
	WithdrawalDailyLimit   *int64     `json:"withdrawalDailyLimit,omitempty"`
	TransferDailyLimit     *int64     `json:"transferDailyLimit,omitempty"`
	OverdraftBalance       string     `json:"overdraftBalance,omitempty"`
	ApprovedOverdraftLimit string     `json:"approvedOverdraftLimit,omitempty"`
	SavingsEndDate         *time.Time `json:"savingsEndDate,omitempty"`
}

type AmountRequest struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

func (r AmountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if len(strings.TrimSpace(r.Currency)) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type SetStatusRequest struct {
	AccountID string `json:"accountId"`
	Status    string `json:"status"`
}

func (r SetStatusRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	switch strings.ToUpper(strings.TrimSpace(r.Status)) {
	case "PENDING", "ACTIVE", "SUSPENDED":
	default:
		errs = append(errs, "status must be PENDING, ACTIVE or SUSPENDED")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// SetLimitsRequest carries limits in minor units. A value of -1 clears the
// limit; a nil field leaves it untouched.
type SetLimitsRequest struct {
	AccountID            string `json:"accountId"`
	WithdrawalDailyLimit *int64 `json:"withdrawalDailyLimit,omitempty"`
	TransferDailyLimit   *int64 `json:"transferDailyLimit,omitempty"`
}

func (r SetLimitsRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	if r.WithdrawalDailyLimit == nil && r.TransferDailyLimit == nil {
		errs = append(errs, "at least one limit is required")
	}
	if !limitValid(r.WithdrawalDailyLimit) {
		errs = append(errs, "withdrawalDailyLimit must be positive or -1 to reset")
	}
	if !limitValid(r.TransferDailyLimit) {
		errs = append(errs, "transferDailyLimit must be positive or -1 to reset")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func limitValid(limit *int64) bool {
	return limit == nil || *limit > 0 || *limit == -1
}
