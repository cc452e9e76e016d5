package domain

import (
	"testing"
	"time"
)

func TestRecurringPaymentNextAdvancesAbsoluteDate(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	amount, _ := NewMoney(2500, "EUR")
	payment := NewRecurringPayment("100100", "acc-from", "acc-to", amount, start, 24*time.Hour, nil)

	next, ok := payment.Next()
	if !ok {
		t.Fatal("expected an open-ended payment to always have a successor")
	}
	if !next.DateStart.Equal(start.Add(24 * time.Hour)) {
		t.Fatalf("expected start %s, got %s", start.Add(24*time.Hour), next.DateStart)
	}
	if next.IterationNum != nil {
		t.Fatal("open-ended payment must keep a nil iteration count")
	}
}

func TestRecurringPaymentIterationCountdown(t *testing.T) {
	iterations := 2
	amount, _ := NewMoney(2500, "EUR")
	payment := NewRecurringPayment("100100", "acc-from", "acc-to", amount,
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 24*time.Hour, &iterations)

	next, ok := payment.Next()
	if !ok || next.IterationNum == nil || *next.IterationNum != 1 {
		t.Fatalf("expected iteration count 1, got %+v ok=%v", next.IterationNum, ok)
	}

	last, ok := next.Next()
	if !ok || last.IterationNum == nil || *last.IterationNum != 0 {
		t.Fatalf("expected iteration count 0, got %+v ok=%v", last.IterationNum, ok)
	}
	if !last.Exhausted() {
		t.Fatal("expected the zero-iteration instance to be exhausted")
	}

	if _, ok := last.Next(); ok {
		t.Fatal("an exhausted payment must not produce a successor")
	}
}

func TestNewRecurringPaymentCopiesIterationPointer(t *testing.T) {
	iterations := 5
	amount, _ := NewMoney(2500, "EUR")
	payment := NewRecurringPayment("100100", "acc-from", "acc-to", amount,
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 24*time.Hour, &iterations)

	iterations = 99
	if *payment.IterationNum != 5 {
		t.Fatalf("expected a defensive copy of the iteration count, got %d", *payment.IterationNum)
	}
}
