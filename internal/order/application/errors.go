package application

import "encoding/json"

const (
	msgPaymentFailed   = "payment failed"
	msgUnexpectedError = "unexpected error processing transaction"
)

// OrderError is the caller-visible failure of an order. Message is either the
// provider's diagnostic rendered as text or a human-readable fallback, never
// a raw internal fault object. Diagnostic carries the provider payload
// verbatim when one exists.
type OrderError struct {
	Message    string
	Diagnostic json.RawMessage
}

func (e *OrderError) Error() string { return e.Message }

// diagnosticMessage renders an opaque provider payload as caller-facing text.
// A JSON string unquotes cleanly; any other payload is forwarded as-is.
func diagnosticMessage(d json.RawMessage, fallback string) string {
	if len(d) == 0 {
		return fallback
	}
	var s string
	if err := json.Unmarshal(d, &s); err == nil && s != "" {
		return s
	}
	return string(d)
}

func faultMessage(err error) string {
	if err == nil || err.Error() == "" {
		return msgUnexpectedError
	}
	return err.Error()
}

// faultPayload shapes an unexpected fault into the diagnostic blob persisted
// with a FAILED transaction.
func faultPayload(err error) json.RawMessage {
	p, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		return nil
	}
	return p
}
