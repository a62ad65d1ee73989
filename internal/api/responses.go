package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type WebhookAckResponse struct {
	Received bool `json:"received" example:"true"`
}

type ExpireResponse struct {
	Message      string `json:"message" example:"expired subscriptions processed"`
	ExpiredCount int    `json:"expiredCount" example:"2"`
}

type PaymentLinkResponse struct {
	PaymentURL string `json:"paymentUrl" example:"https://pay.abacatepay.com/bill_123"`
}
