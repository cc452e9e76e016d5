package engine

import (
	"github.com/api-sage/core-ledger/internal/domain"
)

func (e *Engine) verifyCreateAccount(tx domain.Transaction, kind domain.AccountKind) error {
	if len(tx.Inputs) != 0 {
		return domain.Rejectf(domain.RejectStructural, "Account creation consumes no inputs")
	}
	outputs := tx.OutputAccounts()
	if len(tx.Outputs) != 1 || len(outputs) != 1 {
		return domain.Rejectf(domain.RejectStructural, "Account creation produces exactly one account")
	}

	account := outputs[0]
	if account.Kind != kind {
		return domain.Rejectf(domain.RejectStructural,
			"Created account must be of type %s, got %s", kind, account.Kind)
	}
	if !account.Balance.IsZero() {
		return domain.Rejectf(domain.RejectStructural, "Created account must have a zero balance")
	}
	if account.Status != domain.AccountStatusPending {
		return domain.Rejectf(domain.RejectStructural, "Created account must be in status PENDING")
	}
	if account.OverdraftBalance != 0 || account.ApprovedOverdraftLimit != 0 {
		return domain.Rejectf(domain.RejectStructural, "Created account cannot carry an overdraft")
	}
	if kind == domain.AccountKindSavings {
		if account.SavingsPeriod <= 0 {
			return domain.Rejectf(domain.RejectStructural, "Savings account must have a positive savings period")
		}
		if account.SavingsEndDate.IsZero() {
			return domain.Rejectf(domain.RejectStructural, "Savings account must have a savings end date")
		}
	}
	if !tx.HasSigner(account.OwnerKey) {
		return domain.Rejectf(domain.RejectStructural, "The account owner must sign account creation")
	}
	return nil
}

func (e *Engine) verifyDeposit(tx domain.Transaction, cmd domain.DepositFunds) error {
	if err := e.requireSoleBankSigner(tx); err != nil {
		return err
	}
	in, out, err := singleAccountPair(tx)
	if err != nil {
		return err
	}
	if err := requireActive(in); err != nil {
		return err
	}
	if in.Kind == domain.AccountKindLoan {
		return domain.Rejectf(domain.RejectStructural,
			"A loan account cannot accept deposits, repay it with a transfer")
	}
	if !cmd.Amount.IsPositive() {
		return domain.Rejectf(domain.RejectStructural, "Deposit amount must be greater than zero")
	}
	if err := sameIdentity(in, out); err != nil {
		return err
	}
	if in.Status != out.Status {
		return domain.Rejectf(domain.RejectStructural, "Deposit must not change the account status")
	}
	if err := sameLimits(in, out); err != nil {
		return err
	}
	if err := sameOverdraft(in, out); err != nil {
		return err
	}
	if err := sameSavingsTerms(in, out); err != nil {
		return err
	}

	want, err := in.Deposit(cmd.Amount)
	if err != nil {
		return err
	}
	if !out.Balance.Equals(want.Balance) {
		return domain.Rejectf(domain.RejectStructural,
			"Output balance must equal %s, got %s", want.Balance.String(), out.Balance.String())
	}
	return nil
}

func (e *Engine) verifyWithdraw(tx domain.Transaction, cmd domain.WithdrawFunds) error {
	if err := e.requireSoleBankSigner(tx); err != nil {
		return err
	}
	in, out, err := singleAccountPair(tx)
	if err != nil {
		return err
	}
	if err := requireActive(in); err != nil {
		return err
	}
	if in.Kind == domain.AccountKindLoan {
		return domain.Rejectf(domain.RejectStructural, "A loan account cannot be withdrawn from")
	}
	if !cmd.Amount.IsPositive() {
		return domain.Rejectf(domain.RejectStructural, "Withdrawal amount must be greater than zero")
	}
	if in.Kind == domain.AccountKindSavings {
		window, err := windowStart(tx)
		if err != nil {
			return err
		}
		if in.SavingsLocked(*window.From) {
			return domain.Rejectf(domain.RejectSavingsLocked,
				"Savings account cannot be withdrawn from before %s", in.SavingsEndDate.Format("2006-01-02"))
		}
	}
	if in.WithdrawalDailyLimit != nil && cmd.Amount.MinorUnits > *in.WithdrawalDailyLimit {
		limit := domain.Money{MinorUnits: *in.WithdrawalDailyLimit, Currency: in.Balance.Currency}
		return domain.Rejectf(domain.RejectLimitExceeded,
			"Withdrawal of %s exceeds the daily limit of %s", cmd.Amount.String(), limit.String())
	}

	want, err := in.Withdraw(cmd.Amount)
	if err != nil {
		return err
	}
	if err := sameIdentity(in, out); err != nil {
		return err
	}
	if in.Status != out.Status {
		return domain.Rejectf(domain.RejectStructural, "Withdrawal must not change the account status")
	}
	if err := sameLimits(in, out); err != nil {
		return err
	}
	if err := sameSavingsTerms(in, out); err != nil {
		return err
	}
	if !out.Balance.Equals(want.Balance) || out.OverdraftBalance != want.OverdraftBalance {
		return domain.Rejectf(domain.RejectStructural,
			"Output balance must equal %s after withdrawal, got %s", want.Balance.String(), out.Balance.String())
	}
	if out.ApprovedOverdraftLimit != in.ApprovedOverdraftLimit {
		return domain.Rejectf(domain.RejectStructural, "Withdrawal must not change the approved overdraft limit")
	}
	return nil
}

func (e *Engine) verifyIntrabankPayment(tx domain.Transaction, cmd domain.CreateIntrabankPayment) error {
	inputs := tx.InputAccounts()
	outputs := tx.OutputAccounts()
	if len(tx.Inputs) != 2 || len(inputs) != 2 {
		return domain.Rejectf(domain.RejectStructural, "Intrabank payment consumes exactly two accounts")
	}
	if len(tx.Outputs) != 2 || len(outputs) != 2 {
		return domain.Rejectf(domain.RejectStructural, "Intrabank payment produces exactly two accounts")
	}

	from, to := inputs[0], inputs[1]
	if from.ID == to.ID {
		return domain.Rejectf(domain.RejectStructural, "Accounts should be different for a payment")
	}
	if from.Bank != to.Bank {
		return domain.Rejectf(domain.RejectStructural, "Banks should be the same for both accounts")
	}
	if err := requireActive(from); err != nil {
		return err
	}
	if err := requireActive(to); err != nil {
		return err
	}
	if !cmd.Amount.IsPositive() {
		return domain.Rejectf(domain.RejectStructural, "Payment amount must be greater than zero")
	}
	if from.Balance.Currency != cmd.Amount.Currency || to.Balance.Currency != cmd.Amount.Currency {
		return domain.Rejectf(domain.RejectCurrencyMismatch,
			"Cannot mix currencies %s and %s", from.Balance.Currency, cmd.Amount.Currency)
	}
	if !tx.HasSigner(from.OwnerKey) || !tx.HasSigner(to.OwnerKey) {
		return domain.Rejectf(domain.RejectStructural, "Both account owners must sign an intrabank payment")
	}
	if from.TransferDailyLimit != nil && cmd.Amount.MinorUnits > *from.TransferDailyLimit {
		limit := domain.Money{MinorUnits: *from.TransferDailyLimit, Currency: from.Balance.Currency}
		return domain.Rejectf(domain.RejectLimitExceeded,
			"Transfer of %s exceeds the daily limit of %s", cmd.Amount.String(), limit.String())
	}

	outFrom, err := outputAccountByID(outputs, from.ID)
	if err != nil {
		return err
	}
	outTo, err := outputAccountByID(outputs, to.ID)
	if err != nil {
		return err
	}

	wantFrom, err := from.Withdraw(cmd.Amount)
	if err != nil {
		return err
	}
	wantTo, err := creditedAccount(to, cmd.Amount)
	if err != nil {
		return err
	}

	if err := sameIdentity(from, outFrom); err != nil {
		return err
	}
	if err := sameIdentity(to, outTo); err != nil {
		return err
	}
	if !outFrom.Balance.Equals(wantFrom.Balance) || outFrom.OverdraftBalance != wantFrom.OverdraftBalance {
		return domain.Rejectf(domain.RejectStructural,
			"Source balance must equal %s after payment, got %s", wantFrom.Balance.String(), outFrom.Balance.String())
	}
	if !outTo.Balance.Equals(wantTo.Balance) {
		return domain.Rejectf(domain.RejectStructural,
			"Destination balance must equal %s after payment, got %s", wantTo.Balance.String(), outTo.Balance.String())
	}
	if from.Status != outFrom.Status || to.Status != outTo.Status {
		return domain.Rejectf(domain.RejectStructural, "Payment must not change account statuses")
	}
	return nil
}

func (e *Engine) verifyApproveOverdraft(tx domain.Transaction, cmd domain.ApproveOverdraft) error {
	if err := e.requireSoleBankSigner(tx); err != nil {
		return err
	}
	in, out, err := singleAccountPair(tx)
	if err != nil {
		return err
	}
	if in.Kind != domain.AccountKindCurrent {
		return domain.Rejectf(domain.RejectStructural, "Overdraft can only be approved on a current account")
	}
	if !cmd.Amount.IsPositive() {
		return domain.Rejectf(domain.RejectStructural, "Overdraft limit must be greater than zero")
	}
	if cmd.Amount.Currency != in.Balance.Currency {
		return domain.Rejectf(domain.RejectCurrencyMismatch,
			"Cannot mix currencies %s and %s", in.Balance.Currency, cmd.Amount.Currency)
	}
	if err := sameIdentity(in, out); err != nil {
		return err
	}
	if out.OverdraftBalance != 0 {
		return domain.Rejectf(domain.RejectStructural, "Approved overdraft must start with a zero drawn balance")
	}
	if out.ApprovedOverdraftLimit != cmd.Amount.MinorUnits {
		return domain.Rejectf(domain.RejectStructural,
			"Approved overdraft limit must equal %s", cmd.Amount.String())
	}
	if !in.Balance.Equals(out.Balance) || in.Status != out.Status {
		return domain.Rejectf(domain.RejectStructural, "Overdraft approval must not change balance or status")
	}
	if err := sameLimits(in, out); err != nil {
		return err
	}
	return nil
}

func (e *Engine) verifySetStatus(tx domain.Transaction, cmd domain.SetAccountStatus) error {
	if err := e.requireSoleBankSigner(tx); err != nil {
		return err
	}
	in, out, err := singleAccountPair(tx)
	if err != nil {
		return err
	}
	if err := sameIdentity(in, out); err != nil {
		return err
	}
	if !in.Balance.Equals(out.Balance) {
		return domain.Rejectf(domain.RejectStructural, "Status change must not change the balance")
	}
	if err := sameLimits(in, out); err != nil {
		return err
	}
	if err := sameOverdraft(in, out); err != nil {
		return err
	}
	if err := sameSavingsTerms(in, out); err != nil {
		return err
	}
	if !in.Status.CanProgressTo(cmd.Status) {
		return domain.Rejectf(domain.RejectInvalidStatusTransition,
			"Account cannot progress from status: %s to status %s", in.Status, cmd.Status)
	}
	if out.Status != cmd.Status {
		return domain.Rejectf(domain.RejectStructural,
			"Output status must equal %s, got %s", cmd.Status, out.Status)
	}
	return nil
}

func (e *Engine) verifySetLimits(tx domain.Transaction, cmd domain.SetLimits) error {
	if err := e.requireSoleBankSigner(tx); err != nil {
		return err
	}
	in, out, err := singleAccountPair(tx)
	if err != nil {
		return err
	}
	if in.Kind != domain.AccountKindCurrent {
		return domain.Rejectf(domain.RejectStructural, "Limits can only be set on a current account")
	}
	if err := validLimit(cmd.WithdrawalDailyLimit); err != nil {
		return err
	}
	if err := validLimit(cmd.TransferDailyLimit); err != nil {
		return err
	}
	if err := sameIdentity(in, out); err != nil {
		return err
	}
	if !in.Balance.Equals(out.Balance) || in.Status != out.Status {
		return domain.Rejectf(domain.RejectStructural, "Limit change must not change balance or status")
	}
	if err := sameOverdraft(in, out); err != nil {
		return err
	}

	want := in.WithLimits(cmd.WithdrawalDailyLimit, cmd.TransferDailyLimit)
	if !equalLimit(out.WithdrawalDailyLimit, want.WithdrawalDailyLimit) ||
		!equalLimit(out.TransferDailyLimit, want.TransferDailyLimit) {
		return domain.Rejectf(domain.RejectStructural, "Output limits must match the requested limits")
	}
	return nil
}

func validLimit(limit *int64) error {
	if limit != nil && *limit < 0 && *limit != domain.LimitReset {
		return domain.Rejectf(domain.RejectStructural, "Limit cannot be negative")
	}
	return nil
}

// creditedAccount applies an incoming payment amount: current and savings
// balances grow, while money sent to a loan account is a repayment and
// reduces the outstanding principal.
func creditedAccount(in domain.Account, amount domain.Money) (domain.Account, error) {
	if in.Kind == domain.AccountKindLoan {
		return in.Repay(amount)
	}
	return in.Deposit(amount)
}

func outputAccountByID(outputs []domain.Account, id string) (domain.Account, error) {
	for _, out := range outputs {
		if out.ID == id {
			return out, nil
		}
	}
	return domain.Account{}, domain.Rejectf(domain.RejectStructural,
		"Transaction must produce the updated state of account %s", id)
}
