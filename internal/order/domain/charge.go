package domain

import "encoding/json"

// ChargeRequest is derived from an order per charge attempt and never stored.
type ChargeRequest struct {
	Amount        int64
	CardNumber    string
	Expiry        string
	CVC           string
	CardHolder    string
	CustomerEmail string
	Installments  int
}

// ChargeOutcome reports the result of a charge attempt. A decline is a normal
// outcome with Success=false, not an error. Diagnostic is the provider's
// payload, passed through opaque on both paths.
type ChargeOutcome struct {
	Success    bool
	GatewayRef string
	Diagnostic json.RawMessage
}
