package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Intent is the gateway's answer to create-payment: where to send the
// customer and the correlation id all later webhooks carry.
type Intent struct {
	CorrelationID string
	RedirectURL   string
}

// HTTPGateway talks to the external payment gateway.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway creates a payment gateway client with a bounded timeout.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type createPaymentRequest struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
}

type createPaymentResponse struct {
	CorrelationID string `json:"correlation_id"`
	RedirectURL   string `json:"redirect_url"`
}

// CreatePayment registers the charge and returns the redirect URL plus the
// correlation id. Checkout fails closed if this call fails.
func (g *HTTPGateway) CreatePayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, method string) (*Intent, error) {
	body, err := json.Marshal(createPaymentRequest{
		OrderID: orderID.String(),
		Amount:  amount,
		Method:  method,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway: unexpected status %d", resp.StatusCode)
	}

	var dto createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("payment gateway: decode: %w", err)
	}
	if dto.CorrelationID == "" {
		return nil, fmt.Errorf("payment gateway: empty correlation id")
	}
	return &Intent{CorrelationID: dto.CorrelationID, RedirectURL: dto.RedirectURL}, nil
}
