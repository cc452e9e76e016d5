package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CreateRecurringPaymentRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DateStart     time.Time       `json:"dateStart"`
	// Period is the interval between executions, e.g. "24h".
	Period string `json:"period"`
	// IterationNum is the number of executions; omit for an open-ended
	// schedule.
	IterationNum *int `json:"iterationNum,omitempty"`
}

func (r CreateRecurringPaymentRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FromAccountID) == "" {
		errs = append(errs, "fromAccountId is required")
	}
	if strings.TrimSpace(r.ToAccountID) == "" {
		errs = append(errs, "toAccountId is required")
	}
	if strings.TrimSpace(r.FromAccountID) != "" &&
		strings.TrimSpace(r.FromAccountID) == strings.TrimSpace(r.ToAccountID) {
		errs = append(errs, "fromAccountId and toAccountId cannot be the same")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if len(strings.TrimSpace(r.Currency)) != 3 {
		errs = append(errs, "currency must be 3 characters")
	}
	if r.DateStart.IsZero() {
		errs = append(errs, "dateStart is required")
	}
	period, err := time.ParseDuration(strings.TrimSpace(r.Period))
	if err != nil || period <= 0 {
		errs = append(errs, "period must be a positive duration")
	}
	if r.IterationNum != nil && *r.IterationNum <= 0 {
		errs = append(errs, "iterationNum must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type RecurringPaymentResponse struct {
	ID            string    `json:"id"`
	FromAccountID string    `json:"fromAccountId"`
	ToAccountID   string    `json:"toAccountId"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	DateStart     time.Time `json:"dateStart"`
	Period        string    `json:"period"`
	IterationNum  *int      `json:"iterationNum,omitempty"`
}

type CancelRecurringPaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

func (r CancelRecurringPaymentRequest) Validate() error {
	if strings.TrimSpace(r.PaymentID) == "" {
		return errors.New("paymentId is required")
	}
	return nil
}

type ExecutionLogEntry struct {
	DedupID    string    `json:"dedupId"`
	ExecutedAt time.Time `json:"executedAt"`
	Succeeded  bool      `json:"succeeded"`
	Error      string    `json:"error,omitempty"`
	TransferID string    `json:"transferId,omitempty"`
}
