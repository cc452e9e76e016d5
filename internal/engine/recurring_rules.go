package engine

import (
	"github.com/api-sage/core-ledger/internal/domain"
)

func (e *Engine) verifyCreateRecurringPayment(tx domain.Transaction, cmd domain.CreateRecurringPaymentCmd) error {
	if len(tx.Inputs) != 0 {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment creation consumes no inputs")
	}
	payment, err := singleRecurringOutput(tx)
	if err != nil {
		return err
	}

	if tx.TimeWindow == nil || tx.TimeWindow.From == nil || tx.TimeWindow.To != nil {
		return domain.Rejectf(domain.RejectStructural,
			"Recurring payment creation requires a from-only time window")
	}

	if payment.AccountFromID == payment.AccountToID {
		return domain.Rejectf(domain.RejectStructural, "Accounts should be different for a recurring payment")
	}
	if !cmd.Amount.IsPositive() || !payment.Amount.IsPositive() {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment amount must be greater than zero")
	}
	if !payment.Amount.Equals(cmd.Amount) {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment amount must match the command amount")
	}
	if payment.Period <= 0 {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment period must be positive")
	}
	if payment.DateStart.Before(*tx.TimeWindow.From) {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment start date cannot be in the past")
	}
	if payment.IterationNum != nil && *payment.IterationNum <= 0 {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment iteration count must be positive")
	}

	return e.requireBothOwnersSign(tx, payment)
}

func (e *Engine) verifyExecuteRecurringPayment(tx domain.Transaction) error {
	payment, err := singleRecurringInput(tx)
	if err != nil {
		return err
	}

	next, ok := payment.Next()
	if !ok {
		if len(tx.Outputs) != 0 {
			return domain.Rejectf(domain.RejectStructural,
				"Exhausted recurring payment must not be recreated")
		}
		return e.requireBothOwnersSign(tx, payment)
	}

	out, err := singleRecurringOutput(tx)
	if err != nil {
		return err
	}
	if out.ID != payment.ID {
		return domain.Rejectf(domain.RejectStructural, "Recurring payment id must not change")
	}
	if out.Bank != payment.Bank ||
		out.AccountFromID != payment.AccountFromID ||
		out.AccountToID != payment.AccountToID ||
		!out.Amount.Equals(payment.Amount) ||
		out.Period != payment.Period {
		return domain.Rejectf(domain.RejectStructural,
			"Execution may only advance the schedule of a recurring payment")
	}
	if !out.DateStart.Equal(next.DateStart) {
		return domain.Rejectf(domain.RejectStructural,
			"Next start date must equal the previous start date plus the period")
	}
	if !equalIterations(out.IterationNum, next.IterationNum) {
		return domain.Rejectf(domain.RejectStructural,
			"Iteration count must decrement by one when set")
	}

	return e.requireBothOwnersSign(tx, payment)
}

func (e *Engine) verifyCancelRecurringPayment(tx domain.Transaction) error {
	payment, err := singleRecurringInput(tx)
	if err != nil {
		return err
	}
	if len(tx.Outputs) != 0 {
		return domain.Rejectf(domain.RejectStructural, "Cancellation produces no outputs")
	}

	accountTo, err := referencedAccount(tx, payment.AccountToID)
	if err != nil {
		return err
	}
	if accountTo.Kind == domain.AccountKindLoan {
		return domain.Rejectf(domain.RejectCancelLoanRepayment,
			"Recurring payment towards a loan repayment cannot be cancelled")
	}
	if accountTo.Kind == domain.AccountKindSavings {
		window, err := windowStart(tx)
		if err != nil {
			return err
		}
		if accountTo.SavingsLocked(*window.From) {
			return domain.Rejectf(domain.RejectCancelSavingsPeriod,
				"Recurring payment towards a savings account cannot be cancelled during the savings period")
		}
	}

	return e.requireBothOwnersSign(tx, payment)
}

// requireBothOwnersSign resolves the two accounts of the payment among the
// referenced states and checks both owner keys are present.
func (e *Engine) requireBothOwnersSign(tx domain.Transaction, payment domain.RecurringPayment) error {
	from, err := referencedAccount(tx, payment.AccountFromID)
	if err != nil {
		return err
	}
	to, err := referencedAccount(tx, payment.AccountToID)
	if err != nil {
		return err
	}
	if from.Bank != payment.Bank || to.Bank != payment.Bank {
		return domain.Rejectf(domain.RejectStructural, "Banks should be the same for both accounts")
	}
	if !tx.HasSigner(from.OwnerKey) || !tx.HasSigner(to.OwnerKey) {
		return domain.Rejectf(domain.RejectStructural,
			"Both account owners must sign a recurring payment command")
	}
	return nil
}

func singleRecurringInput(tx domain.Transaction) (domain.RecurringPayment, error) {
	if len(tx.Inputs) != 1 {
		return domain.RecurringPayment{}, domain.Rejectf(domain.RejectStructural,
			"Command consumes exactly one recurring payment")
	}
	payment, ok := tx.Inputs[0].(domain.RecurringPayment)
	if !ok {
		return domain.RecurringPayment{}, domain.Rejectf(domain.RejectStructural,
			"Command input must be a recurring payment")
	}
	return payment, nil
}

func singleRecurringOutput(tx domain.Transaction) (domain.RecurringPayment, error) {
	if len(tx.Outputs) != 1 {
		return domain.RecurringPayment{}, domain.Rejectf(domain.RejectStructural,
			"Command produces exactly one recurring payment")
	}
	payment, ok := tx.Outputs[0].(domain.RecurringPayment)
	if !ok {
		return domain.RecurringPayment{}, domain.Rejectf(domain.RejectStructural,
			"Command output must be a recurring payment")
	}
	return payment, nil
}

func equalIterations(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
