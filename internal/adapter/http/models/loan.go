package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type IssueLoanRequest struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

func (r IssueLoanRequest) Validate() error {
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

type IssueLoanResponse struct {
	TransactionID string `json:"transactionId"`
	AccountID     string `json:"accountId"`
	LoanAccountID string `json:"loanAccountId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Balance       string `json:"balance"`
}
