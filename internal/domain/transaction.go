package domain

import (
	"fmt"
	"time"
)

// State is anything the ledger versions: accounts and recurring payments.
type State interface {
	StateID() string
	StateVersion() uint64
}

// StateRef names one exact version of a ledger state.
type StateRef struct {
	ID      string
	Version uint64
}

func RefOf(s State) StateRef {
	return StateRef{ID: s.StateID(), Version: s.StateVersion()}
}

// String is the canonical reference form, also used as execution dedup id.
func (r StateRef) String() string {
	return fmt.Sprintf("%s:%d", r.ID, r.Version)
}

// TimeWindow is the validity interval a transaction claims. Either bound may
// be open.
type TimeWindow struct {
	From *time.Time
	To   *time.Time
}

func WindowFrom(from time.Time) *TimeWindow {
	return &TimeWindow{From: &from}
}

func WindowBetween(from, to time.Time) *TimeWindow {
	return &TimeWindow{From: &from, To: &to}
}

// Transaction is an atomic proposed state change: consumed inputs, produced
// outputs, exactly one command, and the signer keys present on it.
type Transaction struct {
	ID         string
	Inputs     []State
	Outputs    []State
	Command    Command
	Signers    []string
	Referenced []State
	TimeWindow *TimeWindow
}

func (t Transaction) HasSigner(key string) bool {
	for _, s := range t.Signers {
		if s == key {
			return true
		}
	}
	return false
}

func (t Transaction) InputRefs() []StateRef {
	refs := make([]StateRef, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		refs = append(refs, RefOf(in))
	}
	return refs
}

// InputAccounts returns the inputs that are accounts, in order.
func (t Transaction) InputAccounts() []Account {
	out := make([]Account, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		if a, ok := in.(Account); ok {
			out = append(out, a)
		}
	}
	return out
}

// OutputAccounts returns the outputs that are accounts, in order.
func (t Transaction) OutputAccounts() []Account {
	out := make([]Account, 0, len(t.Outputs))
	for _, o := range t.Outputs {
		if a, ok := o.(Account); ok {
			out = append(out, a)
		}
	}
	return out
}
