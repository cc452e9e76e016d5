// Package scheduler triggers recurring payment executions when their start
// date is reached. It keeps a due-time priority queue seeded from the ledger
// and re-enqueues the successor occurrence after each execution, so late
// firing never accumulates drift: the next due time is always the absolute
// dateStart + period carried by the ledger state itself.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-ledger/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Executor runs a single due execution. It returns the next due time for the
// payment, or ok=false when the schedule is terminal (exhausted or cancelled).
type Executor interface {
	ExecuteDue(ctx context.Context, paymentID string) (time.Time, bool, error)
}

type Scheduler struct {
	store        repo_interfaces.LedgerStore
	executor     Executor
	concurrency  int
	pollInterval time.Duration
	now          func() time.Time

	mu    sync.Mutex
	queue dueQueue
	wake  chan struct{}
}

func New(store repo_interfaces.LedgerStore, executor Executor, concurrency int, pollInterval time.Duration) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Scheduler{
		store:        store,
		executor:     executor,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		now:          time.Now,
		wake:         make(chan struct{}, 1),
	}
}

// Notify enqueues a newly created payment without waiting for the next poll.
func (s *Scheduler) Notify(paymentID string, dueAt time.Time) {
	s.mu.Lock()
	heap.Push(&s.queue, entry{paymentID: paymentID, dueAt: dueAt})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, dispatching due executions as their
// start dates pass. Execution failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.reseed(ctx)

	timer := time.NewTimer(s.untilNext())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		case <-timer.C:
			s.reseed(ctx)
		}

		s.dispatchDue(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.untilNext())
	}
}

// reseed reloads every scheduled payment from the ledger. Entries already in
// the queue are replaced wholesale; the queue is a cache of durable state,
// not the source of truth.
func (s *Scheduler) reseed(ctx context.Context) {
	payments, err := s.store.ListScheduledRecurringPayments(ctx)
	if err != nil {
		logger.Error("scheduler reseed failed", err, nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = s.queue[:0]
	for _, p := range payments {
		s.queue = append(s.queue, entry{paymentID: p.ID, dueAt: p.DateStart})
	}
	heap.Init(&s.queue)
}

func (s *Scheduler) untilNext() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return s.pollInterval
	}
	wait := s.queue[0].dueAt.Sub(s.now())
	if wait < 0 {
		return 0
	}
	if wait > s.pollInterval {
		return s.pollInterval
	}
	return wait
}

// dispatchDue pops every entry whose due time has passed and executes them
// with bounded concurrency. Successors are re-enqueued for their next
// occurrence.
func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []entry
	for len(s.queue) > 0 && !s.queue[0].dueAt.After(now) {
		due = append(due, heap.Pop(&s.queue).(entry))
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, item := range due {
		item := item
		g.Go(func() error {
			next, ok, err := s.executor.ExecuteDue(gctx, item.paymentID)
			if err != nil {
				logger.Error("scheduler execution attempt failed", err, logger.Fields{
					"paymentId": item.paymentID,
				})
				// Retry the dispatch itself at the next poll; business
				// failures inside the execution advance the schedule on
				// their own and never surface here.
				s.Notify(item.paymentID, s.now().Add(s.pollInterval))
				return nil
			}
			if ok {
				s.Notify(item.paymentID, next)
			}
			return nil
		})
	}
	_ = g.Wait()
}
