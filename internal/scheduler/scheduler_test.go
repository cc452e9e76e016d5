package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/core-ledger/internal/domain"
)

type stubStore struct {
	payments []domain.RecurringPayment
}

func (s *stubStore) Append(context.Context, domain.Transaction) error {
	return errors.New("not implemented")
}

func (s *stubStore) GetAccount(context.Context, string) (domain.Account, error) {
	return domain.Account{}, errors.New("not implemented")
}

func (s *stubStore) GetRecurringPayment(context.Context, string) (domain.RecurringPayment, error) {
	return domain.RecurringPayment{}, errors.New("not implemented")
}

func (s *stubStore) ListScheduledRecurringPayments(context.Context) ([]domain.RecurringPayment, error) {
	return s.payments, nil
}

type stubExecutor struct {
	mu       sync.Mutex
	executed []string
	next     time.Time
	hasNext  bool
	err      error
}

func (e *stubExecutor) ExecuteDue(_ context.Context, paymentID string) (time.Time, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, paymentID)
	return e.next, e.hasNext, e.err
}

func (e *stubExecutor) executions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.executed...)
}

func TestDueQueueOrdersByDueTime(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var q dueQueue
	heap.Push(&q, entry{paymentID: "late", dueAt: base.Add(time.Hour)})
	heap.Push(&q, entry{paymentID: "early", dueAt: base})
	heap.Push(&q, entry{paymentID: "middle", dueAt: base.Add(30 * time.Minute)})

	var order []string
	for q.Len() > 0 {
		order = append(order, heap.Pop(&q).(entry).paymentID)
	}
	want := []string{"early", "middle", "late"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected pop order %v, got %v", want, order)
		}
	}
}

func TestDispatchDueExecutesOnlyDueEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	executor := &stubExecutor{}
	s := New(&stubStore{}, executor, 2, time.Minute)
	s.now = func() time.Time { return now }

	s.Notify("due-1", now.Add(-time.Minute))
	s.Notify("due-2", now)
	s.Notify("future", now.Add(time.Hour))

	s.dispatchDue(context.Background())

	executed := executor.executions()
	if len(executed) != 2 {
		t.Fatalf("expected two executions, got %v", executed)
	}
	for _, id := range executed {
		if id == "future" {
			t.Fatal("future entry must not be executed")
		}
	}
}

func TestDispatchDueReEnqueuesSuccessor(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	next := now.Add(24 * time.Hour)
	executor := &stubExecutor{next: next, hasNext: true}
	s := New(&stubStore{}, executor, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.Notify("pay-1", now)
	s.dispatchDue(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) != 1 {
		t.Fatalf("expected the successor to be queued, got %d entries", len(s.queue))
	}
	if !s.queue[0].dueAt.Equal(next) {
		t.Fatalf("expected due time %s, got %s", next, s.queue[0].dueAt)
	}
}

func TestDispatchDueDropsTerminalPayments(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	executor := &stubExecutor{hasNext: false}
	s := New(&stubStore{}, executor, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.Notify("pay-1", now)
	s.dispatchDue(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) != 0 {
		t.Fatalf("expected an empty queue after a terminal execution, got %d entries", len(s.queue))
	}
}

func TestDispatchDueRetriesFailedDispatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	executor := &stubExecutor{err: errors.New("store unavailable")}
	s := New(&stubStore{}, executor, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.Notify("pay-1", now)
	s.dispatchDue(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) != 1 {
		t.Fatalf("expected a retry entry, got %d entries", len(s.queue))
	}
	if !s.queue[0].dueAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected retry at the next poll, got %s", s.queue[0].dueAt)
	}
}

func TestReseedReplacesQueueFromStore(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	amount, _ := domain.NewMoney(2500, "EUR")
	store := &stubStore{payments: []domain.RecurringPayment{
		domain.NewRecurringPayment("100100", "a", "b", amount, now.Add(time.Hour), 24*time.Hour, nil),
	}}
	s := New(store, &stubExecutor{}, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.Notify("stale", now.Add(-time.Hour))
	s.reseed(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) != 1 {
		t.Fatalf("expected one queued entry after reseed, got %d", len(s.queue))
	}
	if s.queue[0].paymentID == "stale" {
		t.Fatal("reseed must replace stale entries with ledger state")
	}
}
