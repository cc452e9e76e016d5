package engine

import (
	"github.com/api-sage/core-ledger/internal/domain"
)

func (e *Engine) verifyIssueLoan(tx domain.Transaction, cmd domain.IssueLoan) error {
	if !tx.HasSigner(e.opts.BankKey) {
		return domain.Rejectf(domain.RejectStructural, "The bank must sign loan issuance")
	}

	inputs := tx.InputAccounts()
	if len(tx.Inputs) != 1 || len(inputs) != 1 {
		return domain.Rejectf(domain.RejectStructural, "Loan issuance consumes exactly one current account")
	}
	current := inputs[0]
	if current.Kind != domain.AccountKindCurrent {
		return domain.Rejectf(domain.RejectStructural, "Loans are only issued against a current account")
	}
	if err := requireActive(current); err != nil {
		return err
	}
	if current.OverdraftBalance > 0 {
		drawn := domain.Money{MinorUnits: current.OverdraftBalance, Currency: current.Balance.Currency}
		return domain.Rejectf(domain.RejectLoanOnDeficitAccount,
			"Cannot issue a loan to an account in deficit of %s", drawn.String())
	}
	if !cmd.Amount.IsPositive() {
		return domain.Rejectf(domain.RejectStructural, "Loan amount must be greater than zero")
	}
	if cmd.Amount.Currency != current.Balance.Currency {
		return domain.Rejectf(domain.RejectCurrencyMismatch,
			"Cannot mix currencies %s and %s", current.Balance.Currency, cmd.Amount.Currency)
	}

	outputs := tx.OutputAccounts()
	if len(tx.Outputs) != 2 || len(outputs) != 2 {
		return domain.Rejectf(domain.RejectStructural,
			"Loan issuance produces the funded current account and a loan account")
	}

	outCurrent, err := outputAccountByID(outputs, current.ID)
	if err != nil {
		return err
	}
	var loan domain.Account
	found := false
	for _, out := range outputs {
		if out.ID != current.ID {
			loan = out
			found = true
		}
	}
	if !found || loan.Kind != domain.AccountKindLoan {
		return domain.Rejectf(domain.RejectStructural, "Loan issuance must produce a new loan account")
	}

	// The credit check runs before any balance arithmetic is accepted.
	window, err := issuanceWindow(tx)
	if err != nil {
		return err
	}
	if err := e.verifyCreditRating(cmd.Assertion, current.CustomerID, window, tx); err != nil {
		return err
	}

	if err := sameIdentity(current, outCurrent); err != nil {
		return err
	}
	funded, err := current.Deposit(cmd.Amount)
	if err != nil {
		return err
	}
	if !outCurrent.Balance.Equals(funded.Balance) {
		return domain.Rejectf(domain.RejectStructural,
			"Funded balance must equal %s, got %s", funded.Balance.String(), outCurrent.Balance.String())
	}
	if outCurrent.Status != current.Status {
		return domain.Rejectf(domain.RejectStructural, "Loan issuance must not change the current account status")
	}

	if !loan.Balance.Equals(cmd.Amount) {
		return domain.Rejectf(domain.RejectStructural,
			"Loan account balance must equal the loan amount %s", cmd.Amount.String())
	}
	if loan.Bank != current.Bank {
		return domain.Rejectf(domain.RejectStructural, "Banks should be the same for both accounts")
	}
	if loan.CustomerID != current.CustomerID {
		return domain.Rejectf(domain.RejectStructural, "Loan account must belong to the funded customer")
	}
	if loan.Status != domain.AccountStatusActive {
		return domain.Rejectf(domain.RejectStructural, "Loan account must be created in status ACTIVE")
	}
	return nil
}

// verifyCreditRating applies the oracle-assertion checks of the loan issuance
// protocol, in their mandated order: threshold, not-yet-valid, expired,
// counter-signature.
func (e *Engine) verifyCreditRating(assertion domain.CreditRatingAssertion, customerID string, window domain.TimeWindow, tx domain.Transaction) error {
	if assertion.CustomerID != customerID {
		return domain.Rejectf(domain.RejectStructural,
			"Credit rating assertion is for customer %s, not %s", assertion.CustomerID, customerID)
	}
	if assertion.Rating < e.opts.CreditRatingThreshold {
		return domain.Rejectf(domain.RejectCreditRatingTooLow,
			"Credit rating %d is below the required threshold of %d", assertion.Rating, e.opts.CreditRatingThreshold)
	}
	if assertion.AssertedAt.After(*window.From) {
		return domain.Rejectf(domain.RejectAssertionNotYetValid,
			"Credit rating assertion is not valid before %s", assertion.AssertedAt.Format("2006-01-02 15:04:05"))
	}
	if assertion.ValidUntil().Before(*window.To) {
		return domain.Rejectf(domain.RejectAssertionExpired,
			"Credit rating assertion expired at %s", assertion.ValidUntil().Format("2006-01-02 15:04:05"))
	}
	if assertion.OracleKey != e.opts.OracleKey || !tx.HasSigner(e.opts.OracleKey) {
		return domain.Rejectf(domain.RejectMissingOracleSignature,
			"Credit rating assertion must be countersigned by the designated oracle")
	}
	return nil
}

func issuanceWindow(tx domain.Transaction) (domain.TimeWindow, error) {
	if tx.TimeWindow == nil || tx.TimeWindow.From == nil || tx.TimeWindow.To == nil {
		return domain.TimeWindow{}, domain.Rejectf(domain.RejectStructural,
			"Loan issuance requires a bounded time window")
	}
	return *tx.TimeWindow, nil
}
