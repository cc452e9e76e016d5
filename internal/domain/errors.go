package domain

import (
	"errors"
	"fmt"
)

// RejectionCode classifies why the validation engine refused a transaction.
type RejectionCode string

const (
	RejectStructural              RejectionCode = "STRUCTURAL"
	RejectCurrencyMismatch        RejectionCode = "CURRENCY_MISMATCH"
	RejectInsufficientFunds       RejectionCode = "INSUFFICIENT_FUNDS"
	RejectAccountNotActive        RejectionCode = "ACCOUNT_NOT_ACTIVE"
	RejectInvalidStatusTransition RejectionCode = "INVALID_STATUS_TRANSITION"
	RejectLimitExceeded           RejectionCode = "LIMIT_EXCEEDED"
	RejectSavingsLocked           RejectionCode = "SAVINGS_PERIOD_LOCKED"
	RejectLoanOnDeficitAccount    RejectionCode = "LOAN_ON_DEFICIT_ACCOUNT"
	RejectCreditRatingTooLow      RejectionCode = "CREDIT_RATING_TOO_LOW"
	RejectAssertionNotYetValid    RejectionCode = "ASSERTION_NOT_YET_VALID"
	RejectAssertionExpired        RejectionCode = "ASSERTION_EXPIRED"
	RejectMissingOracleSignature  RejectionCode = "MISSING_ORACLE_SIGNATURE"
	RejectCancelLoanRepayment     RejectionCode = "CANNOT_CANCEL_LOAN_REPAYMENT"
	RejectCancelSavingsPeriod     RejectionCode = "CANNOT_CANCEL_DURING_SAVINGS_PERIOD"
)

// Rejection is a structured refusal. Reason is a stable, user-displayable
// sentence surfaced unchanged to callers.
type Rejection struct {
	Code   RejectionCode
	Reason string
}

func (r Rejection) Error() string {
	return r.Reason
}

func Rejectf(code RejectionCode, format string, args ...any) error {
	return Rejection{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps err into a Rejection when it is one.
func AsRejection(err error) (Rejection, bool) {
	var rejection Rejection
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return Rejection{}, false
}
