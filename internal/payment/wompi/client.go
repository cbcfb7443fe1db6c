// Package wompi implements the payment-gateway port against the Wompi HTTP
// API. A charge is a three-step exchange: fetch the merchant's presigned
// acceptance token, tokenize the card, then create the transaction with an
// integrity signature over reference, amount and currency.
package wompi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Carl0sL0pez03/backend-ecommerce/internal/order/domain"
)

const (
	currency       = "COP"
	defaultTimeout = 15 * time.Second
)

// Config carries the provider credentials. PublicKey authenticates API calls;
// IntegritySecret only ever feeds the transaction signature.
type Config struct {
	BaseURL         string
	PublicKey       string
	IntegritySecret string
}

type Client struct {
	log  *slog.Logger
	http *http.Client
	cfg  Config
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	return &Client{
		log:  log,
		http: &http.Client{Timeout: defaultTimeout},
		cfg:  cfg,
	}
}

// Charge runs the provider exchange for one payment. Declines, including
// HTTP error statuses carrying a provider payload, come back as
// Success=false outcomes; only transport-level failures (unreachable
// endpoint, timeout, malformed body) return an error. Card number, CVC and
// the integrity secret are never logged.
func (c *Client) Charge(ctx context.Context, p domain.ChargeRequest) (domain.ChargeOutcome, error) {
	status, raw, err := c.doJSON(ctx, http.MethodGet, c.cfg.BaseURL+"/merchants/"+c.cfg.PublicKey, false, nil)
	if err != nil {
		return domain.ChargeOutcome{}, fmt.Errorf("acceptance token request: %w", err)
	}
	if status >= http.StatusBadRequest {
		return decline(raw), nil
	}
	var acceptanceRes struct {
		Data struct {
			PresignedAcceptance struct {
				AcceptanceToken string `json:"acceptance_token"`
			} `json:"presigned_acceptance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &acceptanceRes); err != nil {
		return domain.ChargeOutcome{}, fmt.Errorf("decode acceptance response: %w", err)
	}
	acceptanceToken := acceptanceRes.Data.PresignedAcceptance.AcceptanceToken
	if acceptanceToken == "" {
		return declineText("No acceptance token returned"), nil
	}

	expMonth, expYear, _ := strings.Cut(p.Expiry, "/")
	holder := p.CardHolder
	if holder == "" {
		holder = "test"
	}
	status, raw, err = c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+"/tokens/cards", true, map[string]any{
		"number":      p.CardNumber,
		"cvc":         p.CVC,
		"exp_month":   expMonth,
		"exp_year":    expYear,
		"card_holder": holder,
	})
	if err != nil {
		return domain.ChargeOutcome{}, fmt.Errorf("card tokenization request: %w", err)
	}
	if status >= http.StatusBadRequest {
		return decline(raw), nil
	}
	var tokenRes struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &tokenRes); err != nil {
		return domain.ChargeOutcome{}, fmt.Errorf("decode tokenization response: %w", err)
	}
	if tokenRes.Data.ID == "" {
		return declineText("Failed to retrieve card token"), nil
	}

	amountInCents := p.Amount * 100
	reference := "order_ref_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	installments := p.Installments
	if installments <= 0 {
		installments = 1
	}
	status, raw, err = c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+"/transactions", true, map[string]any{
		"amount_in_cents": amountInCents,
		"currency":        currency,
		"customer_email":  p.CustomerEmail,
		"payment_method": map[string]any{
			"type":         "CARD",
			"token":        tokenRes.Data.ID,
			"installments": installments,
		},
		"reference":        reference,
		"acceptance_token": acceptanceToken,
		"signature":        Signature(reference, amountInCents, currency, c.cfg.IntegritySecret),
	})
	if err != nil {
		return domain.ChargeOutcome{}, fmt.Errorf("transaction request: %w", err)
	}
	if status >= http.StatusBadRequest {
		c.log.Warn("charge declined by provider",
			"reference", reference, "status", status, "amount_in_cents", amountInCents)
		return decline(raw), nil
	}
	var txRes struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &txRes); err != nil {
		return domain.ChargeOutcome{}, fmt.Errorf("decode transaction response: %w", err)
	}

	c.log.Info("charge submitted",
		"reference", reference, "gateway_ref", txRes.Data.ID, "amount_in_cents", amountInCents)
	return domain.ChargeOutcome{
		Success:    true,
		GatewayRef: txRes.Data.ID,
		Diagnostic: json.RawMessage(raw),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, auth bool, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

// decline wraps a provider response body as a failed outcome, keeping the
// payload opaque for the orchestrator.
func decline(raw []byte) domain.ChargeOutcome {
	return domain.ChargeOutcome{Success: false, Diagnostic: json.RawMessage(raw)}
}

func declineText(msg string) domain.ChargeOutcome {
	b, _ := json.Marshal(msg)
	return domain.ChargeOutcome{Success: false, Diagnostic: b}
}
