package payvault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec-test"
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)

	t.Run("Valid Signature", func(t *testing.T) {
		sig := ComputeSignature(payload, secret)
		assert.True(t, VerifySignature(payload, sig, secret))
	})

	t.Run("Tampered Body", func(t *testing.T) {
		sig := ComputeSignature(payload, secret)
		tampered := []byte(`{"id":"evt_999","type":"invoice.paid"}`)
		assert.False(t, VerifySignature(tampered, sig, secret))
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		sig := ComputeSignature(payload, "other-secret")
		assert.False(t, VerifySignature(payload, sig, secret))
	})

	t.Run("Missing Signature", func(t *testing.T) {
		assert.False(t, VerifySignature(payload, "", secret))
	})

	t.Run("Missing Secret", func(t *testing.T) {
		sig := ComputeSignature(payload, secret)
		assert.False(t, VerifySignature(payload, sig, ""))
	})
}

func TestParseEventKeepsRawBytes(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","amount_total":9900,"currency":"usd"}}}`)

	ev, err := ParseEvent(payload)
	assert.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, int64(9900), ev.Data.Object.AmountTotal)
	assert.Equal(t, payload, []byte(ev.Raw))
}

func TestParseEventRejectsMalformedJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestAddressDisplayString(t *testing.T) {
	t.Run("Joins Non Empty Components", func(t *testing.T) {
		addr := &Address{
			Line1:      "123 Main St",
			City:       "Austin",
			State:      "TX",
			PostalCode: "73301",
			Country:    "US",
		}
		assert.Equal(t, "123 Main St, Austin, TX, 73301, US", addr.DisplayString())
	})

	t.Run("Nil Address", func(t *testing.T) {
		var addr *Address
		assert.Equal(t, "", addr.DisplayString())
	})

	t.Run("All Empty", func(t *testing.T) {
		assert.Equal(t, "", (&Address{}).DisplayString())
	})
}

func TestLineItemDataPrefersLineItems(t *testing.T) {
	obj := EventObject{
		LineItems: LineItemList{Data: []LineItem{{Description: "checkout"}}},
		Lines:     LineItemList{Data: []LineItem{{Description: "invoice"}}},
	}
	assert.Equal(t, "checkout", obj.LineItemData()[0].Description)

	invoiceObj := EventObject{
		Lines: LineItemList{Data: []LineItem{{Description: "invoice"}}},
	}
	assert.Equal(t, "invoice", invoiceObj.LineItemData()[0].Description)
}
