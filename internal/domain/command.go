package domain

import "time"

type CommandType string

const (
	CmdCreateCurrentAccount    CommandType = "CreateCurrentAccount"
	CmdCreateSavingsAccount    CommandType = "CreateSavingsAccount"
	CmdDepositFunds            CommandType = "DepositFunds"
	CmdWithdrawFunds           CommandType = "WithdrawFunds"
	CmdCreateIntrabankPayment  CommandType = "CreateIntrabankPayment"
	CmdApproveOverdraft        CommandType = "ApproveOverdraft"
	CmdSetAccountStatus        CommandType = "SetAccountStatus"
	CmdSetLimits               CommandType = "SetLimits"
	CmdIssueLoan               CommandType = "IssueLoan"
	CmdCreateRecurringPayment  CommandType = "CreateRecurringPayment"
	CmdExecuteRecurringPayment CommandType = "ExecuteRecurringPayment"
	CmdCancelRecurringPayment  CommandType = "CancelRecurringPayment"
)

// Command declares the intent of a transaction and carries its parameters.
type Command interface {
	CommandType() CommandType
}

type CreateCurrentAccount struct{}

func (CreateCurrentAccount) CommandType() CommandType { return CmdCreateCurrentAccount }

type CreateSavingsAccount struct{}

func (CreateSavingsAccount) CommandType() CommandType { return CmdCreateSavingsAccount }

type DepositFunds struct {
	Amount Money
}

func (DepositFunds) CommandType() CommandType { return CmdDepositFunds }

type WithdrawFunds struct {
	Amount Money
}

func (WithdrawFunds) CommandType() CommandType { return CmdWithdrawFunds }

type CreateIntrabankPayment struct {
	Amount Money
}

func (CreateIntrabankPayment) CommandType() CommandType { return CmdCreateIntrabankPayment }

type ApproveOverdraft struct {
	Amount Money
}

func (ApproveOverdraft) CommandType() CommandType { return CmdApproveOverdraft }

type SetAccountStatus struct {
	Status AccountStatus
}

func (SetAccountStatus) CommandType() CommandType { return CmdSetAccountStatus }

type SetLimits struct {
	WithdrawalDailyLimit *int64
	TransferDailyLimit   *int64
}

func (SetLimits) CommandType() CommandType { return CmdSetLimits }

type IssueLoan struct {
	Amount    Money
	Assertion CreditRatingAssertion
}

func (IssueLoan) CommandType() CommandType { return CmdIssueLoan }

type CreateRecurringPaymentCmd struct {
	Amount    Money
	DateStart time.Time
	Period    time.Duration
}

func (CreateRecurringPaymentCmd) CommandType() CommandType { return CmdCreateRecurringPayment }

type ExecuteRecurringPayment struct{}

func (ExecuteRecurringPayment) CommandType() CommandType { return CmdExecuteRecurringPayment }

type CancelRecurringPayment struct{}

func (CancelRecurringPayment) CommandType() CommandType { return CmdCancelRecurringPayment }
