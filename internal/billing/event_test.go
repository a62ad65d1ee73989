package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventKind(t *testing.T) {
	tests := []struct {
		name  string
		event string
		want  EventKind
	}{
		{"paid", "billing.paid", EventBillingPaid},
		{"created", "billing.created", EventBillingCreated},
		{"canceled", "billing.canceled", EventBillingCanceled},
		{"failed", "billing.failed", EventBillingFailed},
		{"unrecognized", "billing.refunded", EventUnknown},
		{"empty", "", EventUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEventKind(tt.event))
		})
	}
}

func TestBillingProfessionalID_MetadataWins(t *testing.T) {
	b := Billing{
		Customer: BillingCustomer{Metadata: CustomerMetadata{ExternalID: "pro-from-metadata"}},
		Products: []BillingProduct{{ExternalID: "prod-pro-from-product"}},
	}

	id, ok := b.ProfessionalID()
	require.True(t, ok)
	assert.Equal(t, "pro-from-metadata", id)
}

func TestBillingProfessionalID_ProductFallback(t *testing.T) {
	b := Billing{Products: []BillingProduct{{ExternalID: "prod-abc-123"}}}

	id, ok := b.ProfessionalID()
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)
}

func TestBillingProfessionalID_Unresolvable(t *testing.T) {
	tests := []struct {
		name string
		b    Billing
	}{
		{"no metadata, no products", Billing{}},
		{"product without prefix", Billing{Products: []BillingProduct{{ExternalID: "sku-123"}}}},
		{"product with bare prefix", Billing{Products: []BillingProduct{{ExternalID: "prod-"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.b.ProfessionalID()
			assert.False(t, ok)
		})
	}
}

func TestEnvelopeDecoding(t *testing.T) {
	payload := `{
		"event": "billing.paid",
		"data": {
			"billing": {
				"amount": 1999,
				"customer": {
					"id": "cust_abc",
					"metadata": {"externalId": "pro-1", "name": "Maria", "email": "maria@example.com"}
				},
				"products": [{"externalId": "prod-pro-1"}]
			}
		}
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	assert.Equal(t, EventBillingPaid, env.Kind())
	assert.Equal(t, int64(1999), env.Data.Billing.Amount)
	assert.Equal(t, "pro-1", env.Data.Billing.Customer.Metadata.ExternalID)
	assert.Equal(t, "prod-pro-1", env.Data.Billing.Products[0].ExternalID)
}
