package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/engine"
	"github.com/api-sage/core-ledger/internal/logger"
	"github.com/api-sage/core-ledger/internal/usecase/service_interfaces"

	"github.com/google/uuid"
)

type RecurringService struct {
	ledger          repo_interfaces.LedgerStore
	executionLog    repo_interfaces.RecurringExecutionLog
	transferService service_interfaces.TransferService
	engine          *engine.Engine
	now             func() time.Time
	notify          func(paymentID string, dueAt time.Time)
}

func NewRecurringService(
	ledger repo_interfaces.LedgerStore,
	executionLog repo_interfaces.RecurringExecutionLog,
	transferService service_interfaces.TransferService,
	eng *engine.Engine,
) *RecurringService {
	return &RecurringService{
		ledger:          ledger,
		executionLog:    executionLog,
		transferService: transferService,
		engine:          eng,
		now:             time.Now,
	}
}

// SetScheduleNotifier lets the scheduler learn about new payments without
// waiting for its next reseed.
func (s *RecurringService) SetScheduleNotifier(notify func(paymentID string, dueAt time.Time)) {
	s.notify = notify
}

func (s *RecurringService) CreateRecurringPayment(ctx context.Context, req models.CreateRecurringPaymentRequest) (commons.Response[models.RecurringPaymentResponse], error) {
	logger.Info("recurring service create payment request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.RecurringPaymentResponse]("validation failed", err.Error()), err
	}

	amount, err := domain.MoneyFromDecimal(req.Amount, req.Currency)
	if err != nil {
		return commons.ErrorResponse[models.RecurringPaymentResponse]("validation failed", err.Error()), err
	}

	from, to, response, err := s.loadAccountPair(ctx, strings.TrimSpace(req.FromAccountID), strings.TrimSpace(req.ToAccountID))
	if err != nil {
		return response, err
	}

	now := s.now().UTC()
	period, _ := time.ParseDuration(strings.TrimSpace(req.Period))
	payment := domain.NewRecurringPayment(from.Bank, from.ID, to.ID, amount, req.DateStart.UTC(), period, req.IterationNum)

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Outputs:    []domain.State{payment},
		Command:    domain.CreateRecurringPaymentCmd{Amount: amount, DateStart: payment.DateStart, Period: period},
		Signers:    []string{from.OwnerKey, to.OwnerKey},
		Referenced: []domain.State{from, to},
		TimeWindow: domain.WindowFrom(now),
	}

	if err := s.commit(ctx, tx); err != nil {
		return rejectionResponse[models.RecurringPaymentResponse](err, "failed to create recurring payment")
	}
	if s.notify != nil {
		s.notify(payment.ID, payment.DateStart)
	}

	logger.Info("recurring service create payment success", logger.Fields{
		"paymentId":     payment.ID,
		"fromAccountId": payment.AccountFromID,
		"toAccountId":   payment.AccountToID,
		"dateStart":     payment.DateStart,
	})
	return commons.SuccessResponse("recurring payment created successfully", mapRecurringToResponse(payment)), nil
}

func (s *RecurringService) CancelRecurringPayment(ctx context.Context, req models.CancelRecurringPaymentRequest) (commons.Response[models.RecurringPaymentResponse], error) {
	logger.Info("recurring service cancel payment request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.RecurringPaymentResponse]("validation failed", err.Error()), err
	}

	payment, err := s.ledger.GetRecurringPayment(ctx, strings.TrimSpace(req.PaymentID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.RecurringPaymentResponse]("Recurring payment not found"), err
		}
		return commons.ErrorResponse[models.RecurringPaymentResponse]("failed to cancel recurring payment", "Unable to cancel right now"), err
	}

	from, to, response, err := s.loadAccountPair(ctx, payment.AccountFromID, payment.AccountToID)
	if err != nil {
		return response, err
	}

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Inputs:     []domain.State{payment},
		Command:    domain.CancelRecurringPayment{},
		Signers:    []string{from.OwnerKey, to.OwnerKey},
		Referenced: []domain.State{from, to},
		TimeWindow: domain.WindowFrom(s.now().UTC()),
	}

	if err := s.commit(ctx, tx); err != nil {
		return rejectionResponse[models.RecurringPaymentResponse](err, "failed to cancel recurring payment")
	}

	logger.Info("recurring service cancel payment success", logger.Fields{
		"paymentId": payment.ID,
	})
	return commons.SuccessResponse("recurring payment cancelled successfully", mapRecurringToResponse(payment)), nil
}

func (s *RecurringService) GetExecutionLog(ctx context.Context, paymentID string) (commons.Response[[]models.ExecutionLogEntry], error) {
	if strings.TrimSpace(paymentID) == "" {
		err := errors.New("paymentId is required")
		return commons.ErrorResponse[[]models.ExecutionLogEntry]("validation failed", err.Error()), err
	}

	entries, err := s.executionLog.ListByPayment(ctx, strings.TrimSpace(paymentID))
	if err != nil {
		return commons.ErrorResponse[[]models.ExecutionLogEntry]("failed to fetch execution log", "Unable to fetch execution log right now"), err
	}

	out := make([]models.ExecutionLogEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.ExecutionLogEntry{
			DedupID:    entry.DedupID,
			ExecutedAt: entry.ExecutedAt,
			Succeeded:  entry.Succeeded,
			Error:      entry.Error,
			TransferID: entry.TransferID,
		})
	}
	return commons.SuccessResponse("execution log fetched successfully", out), nil
}

// ExecuteDue runs one execution of the payment: it attempts the underlying
// intrabank transfer, logs the attempt, then advances the schedule regardless
// of the transfer's outcome. A failed transfer is logged, not retried; the
// next scheduled occurrence is the retry. A redelivery whose attempt is
// already logged under this instance's dedup id skips the transfer and only
// advances the schedule. Returns the next due time, or ok=false when the
// schedule is terminal.
func (s *RecurringService) ExecuteDue(ctx context.Context, paymentID string) (time.Time, bool, error) {
	payment, err := s.ledger.GetRecurringPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			// Cancelled or already executed away; nothing to schedule.
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	now := s.now().UTC()
	if now.Before(payment.DateStart) {
		return payment.DateStart, true, nil
	}

	dedupID := domain.RefOf(payment).String()

	// A logged attempt under this dedup id means the transfer side already
	// committed and only the schedule advance is missing; paying again would
	// double-charge the source account.
	alreadyExecuted := true
	if _, err := s.executionLog.Get(ctx, dedupID); err != nil {
		if !errors.Is(err, commons.ErrRecordNotFound) {
			return time.Time{}, false, err
		}
		alreadyExecuted = false
	}

	if !alreadyExecuted {
		var transferID string
		var transferErr error
		if !payment.Exhausted() {
			transferID, transferErr = s.transferService.ExecuteRecurringTransfer(ctx, payment.AccountFromID, payment.AccountToID, payment.Amount)
			if transferErr != nil {
				logger.Error("recurring service transfer failed, schedule advances", transferErr, logger.Fields{
					"paymentId": payment.ID,
					"dedupId":   dedupID,
				})
			}
		}

		// The attempt is logged before the schedule advances so that a
		// redelivery of this instance finds it and skips the transfer.
		entry := domain.RecurringExecution{
			DedupID:    dedupID,
			PaymentID:  payment.ID,
			ExecutedAt: now,
			Succeeded:  transferErr == nil && !payment.Exhausted(),
			TransferID: transferID,
		}
		if transferErr != nil {
			entry.Error = transferErr.Error()
		}
		if err := s.executionLog.Record(ctx, entry); err != nil {
			logger.Error("recurring service execution log write failed", err, logger.Fields{
				"dedupId": dedupID,
			})
		}
	}

	next, hasNext, err := s.advanceSchedule(ctx, payment)
	if err != nil {
		if errors.Is(err, commons.ErrStateConsumed) {
			// A concurrent delivery already advanced this instance; its
			// successor is picked up at the next reseed. The dedup id keeps
			// the log to one entry per instance.
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	if !hasNext {
		return time.Time{}, false, nil
	}
	return next.DateStart, true, nil
}

// advanceSchedule consumes the current instance and produces its successor,
// or nothing when the instance is exhausted.
func (s *RecurringService) advanceSchedule(ctx context.Context, payment domain.RecurringPayment) (domain.RecurringPayment, bool, error) {
	from, err := s.ledger.GetAccount(ctx, payment.AccountFromID)
	if err != nil {
		return domain.RecurringPayment{}, false, err
	}
	to, err := s.ledger.GetAccount(ctx, payment.AccountToID)
	if err != nil {
		return domain.RecurringPayment{}, false, err
	}

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Inputs:     []domain.State{payment},
		Command:    domain.ExecuteRecurringPayment{},
		Signers:    []string{from.OwnerKey, to.OwnerKey},
		Referenced: []domain.State{from, to},
		TimeWindow: domain.WindowFrom(s.now().UTC()),
	}

	next, hasNext := payment.Next()
	if hasNext {
		next.Version = payment.Version + 1
		tx.Outputs = []domain.State{next}
	}

	if err := s.commit(ctx, tx); err != nil {
		return domain.RecurringPayment{}, false, err
	}
	return next, hasNext, nil
}

func (s *RecurringService) loadAccountPair(ctx context.Context, fromID, toID string) (domain.Account, domain.Account, commons.Response[models.RecurringPaymentResponse], error) {
	from, err := s.ledger.GetAccount(ctx, fromID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, domain.Account{}, commons.ErrorResponse[models.RecurringPaymentResponse]("Source account not found"), err
		}
		return domain.Account{}, domain.Account{}, commons.ErrorResponse[models.RecurringPaymentResponse]("failed to process request", "Unable to process request right now"), err
	}
	to, err := s.ledger.GetAccount(ctx, toID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, domain.Account{}, commons.ErrorResponse[models.RecurringPaymentResponse]("Destination account not found"), err
		}
		return domain.Account{}, domain.Account{}, commons.ErrorResponse[models.RecurringPaymentResponse]("failed to process request", "Unable to process request right now"), err
	}
	return from, to, commons.Response[models.RecurringPaymentResponse]{}, nil
}

func (s *RecurringService) commit(ctx context.Context, tx domain.Transaction) error {
	if err := s.engine.Verify(tx); err != nil {
		logger.Error("recurring service transaction rejected", err, logger.Fields{
			"transactionId": tx.ID,
			"command":       string(tx.Command.CommandType()),
		})
		return err
	}
	return s.ledger.Append(ctx, tx)
}

func mapRecurringToResponse(payment domain.RecurringPayment) models.RecurringPaymentResponse {
	return models.RecurringPaymentResponse{
		ID:            payment.ID,
		FromAccountID: payment.AccountFromID,
		ToAccountID:   payment.AccountToID,
		Amount:        payment.Amount.Decimal().StringFixed(2),
		Currency:      payment.Amount.Currency,
		DateStart:     payment.DateStart,
		Period:        payment.Period.String(),
		IterationNum:  payment.IterationNum,
	}
}
