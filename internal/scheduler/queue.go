package scheduler

import "time"

type entry struct {
	paymentID string
	dueAt     time.Time
}

// dueQueue is a min-heap ordered by due time.
type dueQueue []entry

func (q dueQueue) Len() int { return len(q) }

func (q dueQueue) Less(i, j int) bool { return q[i].dueAt.Before(q[j].dueAt) }

func (q dueQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *dueQueue) Push(x any) {
	*q = append(*q, x.(entry))
}

func (q *dueQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
