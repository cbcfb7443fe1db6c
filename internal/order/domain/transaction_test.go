package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() OrderRequest {
	return OrderRequest{
		Customer: Customer{Name: "Test", Address: "Street", City: "City", Email: "a@b.com"},
		Payment: PaymentCard{
			CardNumber:   "4111111111111111",
			Expiry:       "12/25",
			CVC:          "123",
			CardHolder:   "John Doe",
			Installments: 1,
		},
		Items: []OrderItem{{ProductID: "p1", Quantity: 1}},
		Total: 1000,
	}
}

func TestNewTransactionSnapshotsPayment(t *testing.T) {
	tx := NewTransaction("tx-1", testRequest())

	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, StatusPending, tx.Status)
	assert.Equal(t, "************1111", tx.Payment.MaskedCard)
	assert.Equal(t, "12/25", tx.Payment.Expiry)
	assert.Equal(t, int64(1000), tx.Total)
	assert.Equal(t, []OrderItem{{ProductID: "p1", Quantity: 1}}, tx.Items)
	assert.False(t, tx.CreatedAt.IsZero())

	// The persisted shape must never leak the raw card, CVC or holder.
	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "4111111111111111"))
	assert.False(t, strings.Contains(string(raw), "123\""))
	assert.False(t, strings.Contains(string(raw), "John Doe"))
}

func TestOrderRequestValidate(t *testing.T) {
	assert.NoError(t, testRequest().Validate())

	noCustomer := testRequest()
	noCustomer.Customer.Email = ""
	assert.ErrorIs(t, noCustomer.Validate(), ErrMissingCustomer)

	noCard := testRequest()
	noCard.Payment.CardNumber = ""
	assert.ErrorIs(t, noCard.Validate(), ErrMissingCard)

	noItems := testRequest()
	noItems.Items = nil
	assert.ErrorIs(t, noItems.Validate(), ErrNoItems)

	badItem := testRequest()
	badItem.Items = []OrderItem{{ProductID: "p1", Quantity: 0}}
	assert.ErrorIs(t, badItem.Validate(), ErrBadItem)

	blankProduct := testRequest()
	blankProduct.Items = []OrderItem{{ProductID: "", Quantity: 2}}
	assert.ErrorIs(t, blankProduct.Validate(), ErrBadItem)

	badTotal := testRequest()
	badTotal.Total = 0
	assert.ErrorIs(t, badTotal.Validate(), ErrBadTotal)
}
