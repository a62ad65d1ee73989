// Package abacatepay wraps the AbacatePay REST endpoints the billing
// flow needs: customer creation and hosted billing links.
package abacatepay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	FrequencyOneTime = "ONE_TIME"
	MethodPix        = "PIX"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type CustomerMetadata struct {
	ExternalID string `json:"externalId"`
}

type Customer struct {
	Name      string           `json:"name"`
	Cellphone string           `json:"cellphone"`
	Email     string           `json:"email"`
	TaxID     string           `json:"taxId"`
	Metadata  CustomerMetadata `json:"metadata"`
}

type Product struct {
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

type CreateBillingRequest struct {
	Frequency     string    `json:"frequency"`
	Methods       []string  `json:"methods"`
	Products      []Product `json:"products"`
	ReturnURL     string    `json:"returnUrl"`
	CompletionURL string    `json:"completionUrl"`
	CustomerID    string    `json:"customerId"`
	Customer      Customer  `json:"customer"`
}

type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type customerData struct {
	ID string `json:"id"`
}

type billingData struct {
	URL string `json:"url"`
}

// CreateCustomer registers a billing customer and returns the provider's
// customer id. Callers persist the id and never create a second customer
// for the same professional.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (string, error) {
	raw, err := c.post(ctx, "/customer/create", customer)
	if err != nil {
		return "", err
	}

	var data customerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("abacatepay: decode customer response: %w", err)
	}
	if data.ID == "" {
		return "", fmt.Errorf("abacatepay: customer response missing id")
	}

	return data.ID, nil
}

// CreateBilling requests a hosted payment page and returns its URL.
func (c *Client) CreateBilling(ctx context.Context, req CreateBillingRequest) (string, error) {
	raw, err := c.post(ctx, "/billing/create", req)
	if err != nil {
		return "", err
	}

	var data billingData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("abacatepay: decode billing response: %w", err)
	}
	if data.URL == "" {
		return "", fmt.Errorf("abacatepay: billing response missing url")
	}

	return data.URL, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("abacatepay: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("abacatepay: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("abacatepay: %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("abacatepay: read response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("abacatepay: %s returned status %d", path, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if envelope.Error != "" {
			return nil, fmt.Errorf("abacatepay: %s: %s", path, envelope.Error)
		}
		return nil, fmt.Errorf("abacatepay: %s returned status %d", path, resp.StatusCode)
	}

	return envelope.Data, nil
}
