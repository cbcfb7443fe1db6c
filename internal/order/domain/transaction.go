package domain

import (
	"encoding/json"
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

var (
	ErrNoItems         = errors.New("order has no items")
	ErrBadItem         = errors.New("order item needs a product id and a positive quantity")
	ErrBadTotal        = errors.New("order total must be positive")
	ErrMissingCard     = errors.New("payment card number is required")
	ErrMissingCustomer = errors.New("customer name and email are required")
)

type Customer struct {
	Name    string
	Address string
	City    string
	Email   string
}

// PaymentCard is the raw payment instrument as supplied by the caller. It is
// forwarded to the payment gateway and never persisted or logged; only the
// CardSnapshot form may leave the request scope.
type PaymentCard struct {
	CardNumber   string
	Expiry       string
	CVC          string
	CardHolder   string
	Installments int
}

// CardSnapshot is the display-safe payment summary stored on a transaction.
type CardSnapshot struct {
	MaskedCard string `json:"maskedCard"`
	Expiry     string `json:"expiry"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the caller-supplied order. Total is the amount owed as
// computed by the caller; it is deliberately not verified against catalog
// prices here.
type OrderRequest struct {
	Customer Customer
	Payment  PaymentCard
	Items    []OrderItem
	Total    int64
}

// Validate checks the request's shape, not its pricing.
func (r OrderRequest) Validate() error {
	if r.Customer.Name == "" || r.Customer.Email == "" {
		return ErrMissingCustomer
	}
	if r.Payment.CardNumber == "" {
		return ErrMissingCard
	}
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range r.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return ErrBadItem
		}
	}
	if r.Total <= 0 {
		return ErrBadTotal
	}
	return nil
}

// Transaction is the durable record of one processed order. The orchestrator
// is its sole writer: it is created once in PENDING and moved to a terminal
// status exactly once. Result holds the opaque diagnostic blob of the last
// status-changing operation.
type Transaction struct {
	ID         string
	Customer   Customer
	Payment    CardSnapshot
	Items      []OrderItem
	Total      int64
	Status     Status
	GatewayRef string
	Result     json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTransaction builds the PENDING transaction for an order request. The raw
// card number is reduced to its masked form here; CVC and card holder are
// dropped entirely.
func NewTransaction(id string, req OrderRequest) Transaction {
	now := time.Now().UTC()
	return Transaction{
		ID:       id,
		Customer: req.Customer,
		Payment: CardSnapshot{
			MaskedCard: MaskCard(req.Payment.CardNumber),
			Expiry:     req.Payment.Expiry,
		},
		Items:     req.Items,
		Total:     req.Total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
