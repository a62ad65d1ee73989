package billing

import "strings"

// EventKind is the closed set of payment lifecycle events the engine
// understands. Anything else maps to EventUnknown, which is accepted
// and ignored so new provider event types never break the endpoint.
type EventKind string

const (
	EventBillingCreated  EventKind = "billing.created"
	EventBillingPaid     EventKind = "billing.paid"
	EventBillingCanceled EventKind = "billing.canceled"
	EventBillingFailed   EventKind = "billing.failed"
	EventUnknown         EventKind = "unknown"
)

func ParseEventKind(name string) EventKind {
	switch EventKind(name) {
	case EventBillingCreated, EventBillingPaid, EventBillingCanceled, EventBillingFailed:
		return EventKind(name)
	}
	return EventUnknown
}

// Envelope is the webhook payload shape AbacatePay delivers.
type Envelope struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Billing Billing `json:"billing"`
}

type Billing struct {
	Amount   int64            `json:"amount"`
	Customer BillingCustomer  `json:"customer"`
	Products []BillingProduct `json:"products"`
}

type BillingCustomer struct {
	ID       string           `json:"id"`
	Metadata CustomerMetadata `json:"metadata"`
}

type CustomerMetadata struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type BillingProduct struct {
	ExternalID string `json:"externalId"`
}

// productIDPrefix ties a billing line item back to the professional it
// was created for (see CreateSubscription).
const productIDPrefix = "prod-"

func (e Envelope) Kind() EventKind {
	return ParseEventKind(e.Event)
}

// ProfessionalIDFromMetadata resolves the professional from the customer
// metadata only. Cancel and fail events use this strict form.
func (b Billing) ProfessionalIDFromMetadata() (string, bool) {
	id := b.Customer.Metadata.ExternalID
	return id, id != ""
}

// ProfessionalID resolves the professional from the customer metadata,
// falling back to the first product's prod-<id> external id. The paid
// path uses the fallback because some provider payloads omit customer
// metadata.
func (b Billing) ProfessionalID() (string, bool) {
	if id, ok := b.ProfessionalIDFromMetadata(); ok {
		return id, true
	}

	if len(b.Products) > 0 {
		externalID := b.Products[0].ExternalID
		if strings.HasPrefix(externalID, productIDPrefix) {
			id := strings.TrimPrefix(externalID, productIDPrefix)
			return id, id != ""
		}
	}

	return "", false
}
