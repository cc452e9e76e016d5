package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecurringPayment is a scheduled repeating intrabank transfer. Like accounts
// it is an immutable ledger state: each execution consumes the current
// instance and, unless exhausted, produces the successor.
type RecurringPayment struct {
	ID            string        `json:"id"`
	Bank          string        `json:"bank"`
	AccountFromID string        `json:"accountFromId"`
	AccountToID   string        `json:"accountToId"`
	Amount        Money         `json:"amount"`
	DateStart     time.Time     `json:"dateStart"`
	Period        time.Duration `json:"period"`
	// IterationNum is the number of executions remaining; nil means infinite.
	IterationNum *int   `json:"iterationNum,omitempty"`
	Version      uint64 `json:"version"`
}

func NewRecurringPayment(bank, accountFromID, accountToID string, amount Money, dateStart time.Time, period time.Duration, iterationNum *int) RecurringPayment {
	var iterations *int
	if iterationNum != nil {
		v := *iterationNum
		iterations = &v
	}
	return RecurringPayment{
		ID:            uuid.NewString(),
		Bank:          bank,
		AccountFromID: accountFromID,
		AccountToID:   accountToID,
		Amount:        amount,
		DateStart:     dateStart,
		Period:        period,
		IterationNum:  iterations,
	}
}

func (p RecurringPayment) StateID() string {
	return p.ID
}

func (p RecurringPayment) StateVersion() uint64 {
	return p.Version
}

// Exhausted reports whether no further execution may produce a successor.
func (p RecurringPayment) Exhausted() bool {
	return p.IterationNum != nil && *p.IterationNum <= 0
}

// Next returns the successor instance for one execution. The new start date is
// the absolute DateStart + Period, so late triggers accumulate no drift. The
// second return is false when the instance is exhausted and nothing follows.
func (p RecurringPayment) Next() (RecurringPayment, bool) {
	if p.Exhausted() {
		return RecurringPayment{}, false
	}
	out := p
	out.DateStart = p.DateStart.Add(p.Period)
	if p.IterationNum != nil {
		remaining := *p.IterationNum - 1
		out.IterationNum = &remaining
	}
	return out, true
}

// RecurringExecution is one logged execution attempt. DedupID equals the
// consumed state reference, so a redelivered attempt maps onto the same row.
type RecurringExecution struct {
	DedupID    string    `json:"dedupId"`
	PaymentID  string    `json:"paymentId"`
	ExecutedAt time.Time `json:"executedAt"`
	Succeeded  bool      `json:"succeeded"`
	Error      string    `json:"error,omitempty"`
	TransferID string    `json:"transferId,omitempty"`
}
