// Package engine is the transaction validation engine: a pure, synchronous
// rule set deciding whether a proposed ledger transition is legal. It holds no
// mutable state and performs no I/O, so a single Engine is safe for concurrent
// use. Arbitration of competing consumers of the same input state belongs to
// the ledger store, not here.
package engine

import (
	"github.com/api-sage/core-ledger/internal/domain"
)

type Options struct {
	// BankKey is the bank's signer key, required as sole signer on
	// bank-administered commands.
	BankKey string
	// OracleKey is the designated credit-rating oracle's signer key.
	OracleKey string
	// CreditRatingThreshold is the minimum rating for loan issuance.
	CreditRatingThreshold int
}

type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Verify accepts or rejects the transaction. A nil return means every rule of
// the command's rule set passed. Rejections are domain.Rejection values whose
// Reason is stable and user-displayable.
func (e *Engine) Verify(tx domain.Transaction) error {
	if tx.Command == nil {
		return domain.Rejectf(domain.RejectStructural, "Transaction must carry exactly one command")
	}

	switch cmd := tx.Command.(type) {
	case domain.CreateCurrentAccount:
		return e.verifyCreateAccount(tx, domain.AccountKindCurrent)
	case domain.CreateSavingsAccount:
		return e.verifyCreateAccount(tx, domain.AccountKindSavings)
	case domain.DepositFunds:
		return e.verifyDeposit(tx, cmd)
	case domain.WithdrawFunds:
		return e.verifyWithdraw(tx, cmd)
	case domain.CreateIntrabankPayment:
		return e.verifyIntrabankPayment(tx, cmd)
	case domain.ApproveOverdraft:
		return e.verifyApproveOverdraft(tx, cmd)
	case domain.SetAccountStatus:
		return e.verifySetStatus(tx, cmd)
	case domain.SetLimits:
		return e.verifySetLimits(tx, cmd)
	case domain.IssueLoan:
		return e.verifyIssueLoan(tx, cmd)
	case domain.CreateRecurringPaymentCmd:
		return e.verifyCreateRecurringPayment(tx, cmd)
	case domain.ExecuteRecurringPayment:
		return e.verifyExecuteRecurringPayment(tx)
	case domain.CancelRecurringPayment:
		return e.verifyCancelRecurringPayment(tx)
	default:
		return domain.Rejectf(domain.RejectStructural, "Unknown command type: %s", tx.Command.CommandType())
	}
}

func (e *Engine) requireSoleBankSigner(tx domain.Transaction) error {
	if len(tx.Signers) != 1 || tx.Signers[0] != e.opts.BankKey {
		return domain.Rejectf(domain.RejectStructural, "The bank must be the only signer of this command")
	}
	return nil
}

func requireActive(a domain.Account) error {
	if a.Status != domain.AccountStatusActive {
		return domain.Rejectf(domain.RejectAccountNotActive,
			"Account is not active, status: %s", a.Status)
	}
	return nil
}

// singleAccountPair enforces the 1 account input / 1 account output shape and
// returns the pair.
func singleAccountPair(tx domain.Transaction) (domain.Account, domain.Account, error) {
	inputs := tx.InputAccounts()
	outputs := tx.OutputAccounts()
	if len(tx.Inputs) != 1 || len(inputs) != 1 {
		return domain.Account{}, domain.Account{}, domain.Rejectf(domain.RejectStructural,
			"Command requires exactly one account input")
	}
	if len(tx.Outputs) != 1 || len(outputs) != 1 {
		return domain.Account{}, domain.Account{}, domain.Rejectf(domain.RejectStructural,
			"Command requires exactly one account output")
	}
	return inputs[0], outputs[0], nil
}

// sameIdentity checks the fields that never change across any account
// transition: id, bank, customer, owner key, kind and currency.
func sameIdentity(in, out domain.Account) error {
	if in.ID != out.ID {
		return domain.Rejectf(domain.RejectStructural, "Account id must not change")
	}
	if in.Bank != out.Bank {
		return domain.Rejectf(domain.RejectStructural, "Account bank must not change")
	}
	if in.CustomerID != out.CustomerID {
		return domain.Rejectf(domain.RejectStructural, "Account customer must not change")
	}
	if in.OwnerKey != out.OwnerKey {
		return domain.Rejectf(domain.RejectStructural, "Account owner key must not change")
	}
	if in.Kind != out.Kind {
		return domain.Rejectf(domain.RejectStructural, "Account type must not change")
	}
	if in.Balance.Currency != out.Balance.Currency {
		return domain.Rejectf(domain.RejectStructural, "Account currency must not change")
	}
	return nil
}

func sameLimits(in, out domain.Account) error {
	if !equalLimit(in.WithdrawalDailyLimit, out.WithdrawalDailyLimit) ||
		!equalLimit(in.TransferDailyLimit, out.TransferDailyLimit) {
		return domain.Rejectf(domain.RejectStructural, "Account limits must not change")
	}
	return nil
}

func sameOverdraft(in, out domain.Account) error {
	if in.OverdraftBalance != out.OverdraftBalance ||
		in.ApprovedOverdraftLimit != out.ApprovedOverdraftLimit {
		return domain.Rejectf(domain.RejectStructural, "Account overdraft fields must not change")
	}
	return nil
}

func sameSavingsTerms(in, out domain.Account) error {
	if !in.SavingsEndDate.Equal(out.SavingsEndDate) || in.SavingsPeriod != out.SavingsPeriod {
		return domain.Rejectf(domain.RejectStructural, "Savings terms must not change")
	}
	return nil
}

func equalLimit(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// referencedAccount finds an account with the given id among the transaction's
// read-only referenced states.
func referencedAccount(tx domain.Transaction, id string) (domain.Account, error) {
	for _, ref := range tx.Referenced {
		if a, ok := ref.(domain.Account); ok && a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, domain.Rejectf(domain.RejectStructural,
		"Transaction must reference the current state of account %s", id)
}

func windowStart(tx domain.Transaction) (domain.TimeWindow, error) {
	if tx.TimeWindow == nil || tx.TimeWindow.From == nil {
		return domain.TimeWindow{}, domain.Rejectf(domain.RejectStructural,
			"Command requires a time window with a start time")
	}
	return *tx.TimeWindow, nil
}
