package application

import (
	"context"
	"encoding/json"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
)

// TransactionLedger is the durable store for transaction records. The
// orchestrator is the only writer; the ledger never originates status
// changes on its own.
type TransactionLedger interface {
	Create(ctx context.Context, tx domain.Transaction) error
	UpdateStatus(ctx context.Context, id string, status domain.Status, result json.RawMessage) error
}

// PaymentGateway charges a payment instrument. An ordinary decline comes back
// as Success=false, never as an error; an error means a transport-level fault
// (unreachable endpoint, timeout, malformed response).
type PaymentGateway interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeOutcome, error)
}

// InventoryStore decrements stock independently per item. A failure on one
// item does not roll back the others.
type InventoryStore interface {
	DecreaseStock(ctx context.Context, items []domain.OrderItem) error
}

// DeliveryStore records which items are committed to which order, one
// fulfillment record per item.
type DeliveryStore interface {
	AssignToCustomer(ctx context.Context, orderID string, items []domain.OrderItem) error
}
