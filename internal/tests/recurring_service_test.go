package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/usecase/services"

	"github.com/shopspring/decimal"
)

func TestRecurringServiceCreateValidationError(t *testing.T) {
	svc := services.NewRecurringService(nil, nil, nil, nil)

	_, err := svc.CreateRecurringPayment(context.Background(), models.CreateRecurringPaymentRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty recurring payment request")
	}
}

func TestRecurringServiceCreateAndCancelFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fromID := env.newActiveAccount(t, "Ada", "100.00")
	toID := env.newActiveAccount(t, "Grace", "")
	svc := env.newRecurringService()

	var notifiedID string
	svc.SetScheduleNotifier(func(paymentID string, _ time.Time) {
		notifiedID = paymentID
	})

	iterations := 3
	response, err := svc.CreateRecurringPayment(ctx, models.CreateRecurringPaymentRequest{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        decimal.RequireFromString("25.00"),
		Currency:      "EUR",
		DateStart:     time.Now().UTC().Add(time.Hour),
		Period:        "24h",
		IterationNum:  &iterations,
	})
	if err != nil {
		t.Fatalf("create recurring payment failed: %v", err)
	}
	if notifiedID != response.Data.ID {
		t.Fatal("expected the scheduler to be notified of the new payment")
	}

	if _, err := svc.CancelRecurringPayment(ctx, models.CancelRecurringPaymentRequest{
		PaymentID: response.Data.ID,
	}); err != nil {
		t.Fatalf("cancel recurring payment failed: %v", err)
	}

	if _, err := env.ledger.GetRecurringPayment(ctx, response.Data.ID); err != commons.ErrRecordNotFound {
		t.Fatalf("expected the cancelled payment to be consumed, got %v", err)
	}
}

func TestRecurringServiceCreateRejectsPastStartDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fromID := env.newActiveAccount(t, "Ada", "100.00")
	toID := env.newActiveAccount(t, "Grace", "")
	svc := env.newRecurringService()

	_, err := svc.CreateRecurringPayment(ctx, models.CreateRecurringPaymentRequest{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        decimal.RequireFromString("25.00"),
		Currency:      "EUR",
		DateStart:     time.Now().UTC().Add(-time.Hour),
		Period:        "24h",
	})
	if err == nil {
		t.Fatal("expected rejection for a start date in the past")
	}
}

// seedDuePayment plants a recurring payment whose start date already passed,
// as if it had been created earlier.
func (env *testEnv) seedDuePayment(t *testing.T, fromID, toID string, amount string, iterations *int) domain.RecurringPayment {
	t.Helper()
	money, err := domain.MoneyFromDecimal(decimal.RequireFromString(amount), "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payment := domain.NewRecurringPayment(testBankCode, fromID, toID, money,
		time.Now().UTC().Add(-time.Minute), 24*time.Hour, iterations)
	if err := env.ledger.Append(context.Background(), domain.Transaction{
		ID:      "seed-" + payment.ID,
		Outputs: []domain.State{payment},
	}); err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}
	return payment
}

func TestRecurringServiceExecuteDueTransfersAndAdvances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fromID := env.newActiveAccount(t, "Ada", "100.00")
	toID := env.newActiveAccount(t, "Grace", "")
	svc := env.newRecurringService()

	iterations := 2
	payment := env.seedDuePayment(t, fromID, toID, "25.00", &iterations)

	next, ok, err := svc.ExecuteDue(ctx, payment.ID)
	if err != nil {
		t.Fatalf("execute due failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a successor occurrence")
	}
	if !next.Equal(payment.DateStart.Add(24 * time.Hour)) {
		t.Fatalf("expected next due %s, got %s", payment.DateStart.Add(24*time.Hour), next)
	}

	to, err := env.accounts.GetAccount(ctx, toID)
	if err != nil {
		t.Fatalf("get destination failed: %v", err)
	}
	if to.Data.Balance != "25.00" {
		t.Fatalf("expected destination balance 25.00, got %s", to.Data.Balance)
	}

	entries, err := svc.GetExecutionLog(ctx, payment.ID)
	if err != nil {
		t.Fatalf("get execution log failed: %v", err)
	}
	log := *entries.Data
	if len(log) != 1 || !log[0].Succeeded {
		t.Fatalf("expected one successful log entry, got %+v", log)
	}

	advanced, err := env.ledger.GetRecurringPayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("get advanced payment failed: %v", err)
	}
	if advanced.IterationNum == nil || *advanced.IterationNum != 1 {
		t.Fatalf("expected one remaining iteration, got %+v", advanced.IterationNum)
	}
}

func TestRecurringServiceFailedTransferStillAdvances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fromID := env.newActiveAccount(t, "Ada", "10.00")
	toID := env.newActiveAccount(t, "Grace", "")
	svc := env.newRecurringService()

	payment := env.seedDuePayment(t, fromID, toID, "25.00", nil)

	_, ok, err := svc.ExecuteDue(ctx, payment.ID)
	if err != nil {
		t.Fatalf("execute due failed: %v", err)
	}
	if !ok {
		t.Fatal("an open-ended schedule must keep going after a failed transfer")
	}

	to, err := env.accounts.GetAccount(ctx, toID)
	if err != nil {
		t.Fatalf("get destination failed: %v", err)
	}
	if to.Data.Balance != "0.00" {
		t.Fatalf("expected untouched destination balance, got %s", to.Data.Balance)
	}

	entries, err := svc.GetExecutionLog(ctx, payment.ID)
	if err != nil {
		t.Fatalf("get execution log failed: %v", err)
	}
	log := *entries.Data
	if len(log) != 1 || log[0].Succeeded {
		t.Fatalf("expected one failed log entry, got %+v", log)
	}
	if log[0].Error != "Insufficient balance, missing 15.00 EUR" {
		t.Fatalf("unexpected error message: %q", log[0].Error)
	}
}

func TestRecurringServiceRedeliveredExecutionDoesNotPayTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fromID := env.newActiveAccount(t, "Ada", "100.00")
	toID := env.newActiveAccount(t, "Grace", "")
	svc := env.newRecurringService()

	payment := env.seedDuePayment(t, fromID, toID, "25.00", nil)

	// As if a first delivery crashed after its transfer and log entry
	// committed but before the schedule advanced.
	if err := env.executionLog.Record(ctx, domain.RecurringExecution{
		DedupID:    domain.RefOf(payment).String(),
		PaymentID:  payment.ID,
		ExecutedAt: time.Now().UTC(),
		Succeeded:  true,
		TransferID: "transfer-earlier",
	}); err != nil {
		t.Fatalf("seed execution log failed: %v", err)
	}

	next, ok, err := svc.ExecuteDue(ctx, payment.ID)
	if err != nil {
		t.Fatalf("execute due failed: %v", err)
	}
	if !ok || !next.Equal(payment.DateStart.Add(24*time.Hour)) {
		t.Fatalf("expected the schedule to advance, got ok=%v next=%s", ok, next)
	}

	to, err := env.accounts.GetAccount(ctx, toID)
	if err != nil {
		t.Fatalf("get destination failed: %v", err)
	}
	if to.Data.Balance != "0.00" {
		t.Fatalf("expected no second transfer, got balance %s", to.Data.Balance)
	}

	entries, err := svc.GetExecutionLog(ctx, payment.ID)
	if err != nil {
		t.Fatalf("get execution log failed: %v", err)
	}
	log := *entries.Data
	if len(log) != 1 || log[0].TransferID != "transfer-earlier" {
		t.Fatalf("expected only the original log entry, got %+v", log)
	}
}

func TestRecurringServiceExhaustedScheduleTerminates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fromID := env.newActiveAccount(t, "Ada", "100.00")
	toID := env.newActiveAccount(t, "Grace", "")
	svc := env.newRecurringService()

	iterations := 1
	payment := env.seedDuePayment(t, fromID, toID, "25.00", &iterations)

	_, ok, err := svc.ExecuteDue(ctx, payment.ID)
	if err != nil {
		t.Fatalf("first execute failed: %v", err)
	}
	if !ok {
		t.Fatal("expected the exhausted marker instance to follow")
	}

	// The successor carries zero remaining iterations; executing it consumes
	// the schedule for good without another transfer.
	_, ok, err = svc.ExecuteDue(ctx, payment.ID)
	if err != nil {
		t.Fatalf("terminal execute failed: %v", err)
	}
	if ok {
		t.Fatal("expected the schedule to terminate")
	}

	if _, err := env.ledger.GetRecurringPayment(ctx, payment.ID); err != commons.ErrRecordNotFound {
		t.Fatalf("expected the schedule to be fully consumed, got %v", err)
	}

	to, err := env.accounts.GetAccount(ctx, toID)
	if err != nil {
		t.Fatalf("get destination failed: %v", err)
	}
	if to.Data.Balance != "25.00" {
		t.Fatalf("expected exactly one transfer, got balance %s", to.Data.Balance)
	}
}

func TestRecurringServiceExecuteDueOnCancelledPayment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.newRecurringService()

	_, ok, err := svc.ExecuteDue(context.Background(), "no-such-payment")
	if err != nil {
		t.Fatalf("execute due failed: %v", err)
	}
	if ok {
		t.Fatal("a cancelled payment must not be rescheduled")
	}
}
