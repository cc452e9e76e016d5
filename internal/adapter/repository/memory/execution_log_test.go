package memory

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
)

func TestExecutionLogFirstDeliveryWins(t *testing.T) {
	log := NewExecutionLog()
	first := domain.RecurringExecution{
		DedupID:    "pay-1:0",
		PaymentID:  "pay-1",
		ExecutedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Succeeded:  true,
		TransferID: "tx-1",
	}
	if err := log.Record(context.Background(), first); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	duplicate := first
	duplicate.Succeeded = false
	duplicate.Error = "redelivered"
	if err := log.Record(context.Background(), duplicate); err != nil {
		t.Fatalf("duplicate record failed: %v", err)
	}

	entries, err := log.ListByPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	if !entries[0].Succeeded || entries[0].TransferID != "tx-1" {
		t.Fatal("expected the first delivery to win")
	}
}

func TestExecutionLogGetByDedupID(t *testing.T) {
	log := NewExecutionLog()
	entry := domain.RecurringExecution{
		DedupID:    "pay-1:0",
		PaymentID:  "pay-1",
		Succeeded:  true,
		TransferID: "tx-1",
	}
	if err := log.Record(context.Background(), entry); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got, err := log.Get(context.Background(), "pay-1:0")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.TransferID != "tx-1" {
		t.Fatalf("unexpected entry: %+v", got)
	}

	if _, err := log.Get(context.Background(), "pay-1:1"); err != commons.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestExecutionLogListFiltersByPayment(t *testing.T) {
	log := NewExecutionLog()
	for _, entry := range []domain.RecurringExecution{
		{DedupID: "pay-1:0", PaymentID: "pay-1"},
		{DedupID: "pay-1:1", PaymentID: "pay-1"},
		{DedupID: "pay-2:0", PaymentID: "pay-2"},
	} {
		if err := log.Record(context.Background(), entry); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	entries, err := log.ListByPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
}
