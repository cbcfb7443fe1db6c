package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/application"
	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("storefront-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/healthz", h.health)
	return r
}

type customerDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Email   string `json:"email"`
}

type paymentDTO struct {
	CardNumber   string `json:"cardNumber"`
	Expiry       string `json:"expiry"`
	CVC          string `json:"cvc"`
	CardHolder   string `json:"cardHolder"`
	Installments int    `json:"installments"`
}

type itemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	Customer customerDTO `json:"customer"`
	Payment  paymentDTO  `json:"payment"`
	Items    []itemDTO   `json:"items"`
	Total    int64       `json:"total"`
}

// transactionResponse is the caller-facing transaction. Only the masked card
// form ever leaves the service.
type transactionResponse struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Customer   customerDTO     `json:"customer"`
	MaskedCard string          `json:"maskedCard"`
	Expiry     string          `json:"expiry"`
	Items      []itemDTO       `json:"items"`
	Total      int64           `json:"total"`
	GatewayRef string          `json:"gatewayRef,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	order := req.toDomain()
	if err := order.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.service.ProcessOrder(ctx, order)
	if err != nil {
		var oe *application.OrderError
		if errors.As(err, &oe) {
			writeError(w, http.StatusPaymentRequired, oe.Message)
			return
		}
		// Ledger-write failure before any charge: reported verbatim.
		h.log.Error("order processing failed before charge", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r createOrderReq) toDomain() domain.OrderRequest {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return domain.OrderRequest{
		Customer: domain.Customer{
			Name:    r.Customer.Name,
			Address: r.Customer.Address,
			City:    r.Customer.City,
			Email:   r.Customer.Email,
		},
		Payment: domain.PaymentCard{
			CardNumber:   r.Payment.CardNumber,
			Expiry:       r.Payment.Expiry,
			CVC:          r.Payment.CVC,
			CardHolder:   r.Payment.CardHolder,
			Installments: r.Payment.Installments,
		},
		Items: items,
		Total: r.Total,
	}
}

func toResponse(tx domain.Transaction) transactionResponse {
	items := make([]itemDTO, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, itemDTO{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return transactionResponse{
		ID:     tx.ID,
		Status: string(tx.Status),
		Customer: customerDTO{
			Name:    tx.Customer.Name,
			Address: tx.Customer.Address,
			City:    tx.Customer.City,
			Email:   tx.Customer.Email,
		},
		MaskedCard: tx.Payment.MaskedCard,
		Expiry:     tx.Payment.Expiry,
		Items:      items,
		Total:      tx.Total,
		GatewayRef: tx.GatewayRef,
		Result:     tx.Result,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
