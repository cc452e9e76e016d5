package memory

import (
	"context"
	"sync"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
)

type record struct {
	state    domain.State
	consumed bool
}

// LedgerStore is the in-memory versioned state store, used by tests and as a
// reference implementation of the append semantics.
type LedgerStore struct {
	mu     sync.Mutex
	states map[string]map[uint64]*record
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{states: make(map[string]map[uint64]*record)}
}

func (s *LedgerStore) Append(_ context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate before touching anything so a rejected append changes nothing.
	for _, ref := range tx.InputRefs() {
		versions, ok := s.states[ref.ID]
		if !ok {
			return commons.ErrRecordNotFound
		}
		rec, ok := versions[ref.Version]
		if !ok {
			return commons.ErrRecordNotFound
		}
		if rec.consumed {
			return commons.ErrStateConsumed
		}
	}
	for _, out := range tx.Outputs {
		if versions, ok := s.states[out.StateID()]; ok {
			if _, exists := versions[out.StateVersion()]; exists {
				return commons.ErrStateConsumed
			}
		}
	}

	for _, ref := range tx.InputRefs() {
		s.states[ref.ID][ref.Version].consumed = true
	}
	for _, out := range tx.Outputs {
		versions, ok := s.states[out.StateID()]
		if !ok {
			versions = make(map[uint64]*record)
			s.states[out.StateID()] = versions
		}
		versions[out.StateVersion()] = &record{state: out}
	}
	return nil
}

func (s *LedgerStore) GetAccount(_ context.Context, id string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.latestUnconsumed(id)
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	account, ok := rec.state.(domain.Account)
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (s *LedgerStore) GetRecurringPayment(_ context.Context, id string) (domain.RecurringPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.latestUnconsumed(id)
	if !ok {
		return domain.RecurringPayment{}, commons.ErrRecordNotFound
	}
	payment, ok := rec.state.(domain.RecurringPayment)
	if !ok {
		return domain.RecurringPayment{}, commons.ErrRecordNotFound
	}
	return payment, nil
}

func (s *LedgerStore) ListScheduledRecurringPayments(_ context.Context) ([]domain.RecurringPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.RecurringPayment
	for id := range s.states {
		rec, ok := s.latestUnconsumed(id)
		if !ok {
			continue
		}
		if payment, ok := rec.state.(domain.RecurringPayment); ok {
			out = append(out, payment)
		}
	}
	return out, nil
}

func (s *LedgerStore) latestUnconsumed(id string) (*record, bool) {
	versions, ok := s.states[id]
	if !ok {
		return nil, false
	}
	var best *record
	var bestVersion uint64
	for version, rec := range versions {
		if rec.consumed {
			continue
		}
		if best == nil || version > bestVersion {
			best = rec
			bestVersion = version
		}
	}
	return best, best != nil
}
