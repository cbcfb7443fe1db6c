package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
)

// Service drives the order saga: record a PENDING transaction, charge the
// payment, settle the transaction's terminal status, and only after a
// successful charge fan out the fulfillment side effects.
type Service struct {
	ledger    TransactionLedger
	gateway   PaymentGateway
	inventory InventoryStore
	delivery  DeliveryStore
	log       *slog.Logger
	tracer    trace.Tracer
}

func NewService(log *slog.Logger, ledger TransactionLedger, gateway PaymentGateway, inventory InventoryStore, delivery DeliveryStore) *Service {
	return &Service{
		ledger:    ledger,
		gateway:   gateway,
		inventory: inventory,
		delivery:  delivery,
		log:       log,
		tracer:    otel.Tracer("order-service"),
	}
}

// ProcessOrder runs one order end to end. The returned error is either the
// ledger-create failure (nothing was charged, nothing exists to mark FAILED)
// or an *OrderError carrying the caller-visible reason. Once the charge has
// succeeded no later failure downgrades the result: the order is reported as
// placed.
func (s *Service) ProcessOrder(ctx context.Context, req domain.OrderRequest) (domain.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "ProcessOrder")
	defer span.End()

	tx := domain.NewTransaction(uuid.NewString(), req)

	if err := s.ledger.Create(ctx, tx); err != nil {
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	outcome, err := s.gateway.Charge(ctx, domain.ChargeRequest{
		Amount:        req.Total,
		CardNumber:    req.Payment.CardNumber,
		Expiry:        req.Payment.Expiry,
		CVC:           req.Payment.CVC,
		CardHolder:    req.Payment.CardHolder,
		CustomerEmail: req.Customer.Email,
		Installments:  req.Payment.Installments,
	})
	if err != nil {
		// Transport-level fault, not a decline reported by the provider.
		s.log.Error("charge attempt faulted", "transaction_id", tx.ID, "err", err)
		s.failTransaction(ctx, tx.ID, faultPayload(err))
		return domain.Transaction{}, &OrderError{Message: faultMessage(err)}
	}

	if !outcome.Success {
		s.failTransaction(ctx, tx.ID, outcome.Diagnostic)
		return domain.Transaction{}, &OrderError{
			Message:    diagnosticMessage(outcome.Diagnostic, msgPaymentFailed),
			Diagnostic: outcome.Diagnostic,
		}
	}

	if err := s.ledger.UpdateStatus(ctx, tx.ID, domain.StatusCompleted, outcome.Diagnostic); err != nil {
		// Money has moved; the order stays placed even if the status write
		// did not land.
		s.log.Error("failed to record completed status", "transaction_id", tx.ID, "err", err)
	}

	// Fulfillment does not gate the response. It runs on a context detached
	// from the caller so sending the reply cannot cancel it.
	go s.fulfill(context.WithoutCancel(ctx), tx.ID, req.Items)

	tx.Status = domain.StatusCompleted
	tx.GatewayRef = outcome.GatewayRef
	tx.Result = outcome.Diagnostic
	return tx, nil
}

// failTransaction marks the ledger entry FAILED. Best-effort: an update
// failure here must never surface a secondary error that masks the one being
// reported to the caller.
func (s *Service) failTransaction(ctx context.Context, id string, result json.RawMessage) {
	if err := s.ledger.UpdateStatus(ctx, id, domain.StatusFailed, result); err != nil {
		s.log.Error("failed to record failed status", "transaction_id", id, "err", err)
	}
}

// fulfill runs delivery assignment and stock decrement as two independent
// tasks joined wait-for-both-to-settle. Ignoring their failures is the policy,
// not an accident: a charged order is never rolled back because fulfillment
// bookkeeping hit a transient error. Operators observe failures through the
// log stream and the outbox events.
func (s *Service) fulfill(ctx context.Context, transactionID string, items []domain.OrderItem) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := s.delivery.AssignToCustomer(ctx, transactionID, items); err != nil {
			s.log.Error("delivery assignment failed", "transaction_id", transactionID, "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.inventory.DecreaseStock(ctx, items); err != nil {
			s.log.Error("stock decrement failed", "transaction_id", transactionID, "err", err)
		}
	}()

	wg.Wait()
	s.log.Info("fulfillment settled", "transaction_id", transactionID)
}
