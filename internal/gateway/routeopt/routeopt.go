package routeopt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/feiralivre/fulfillment/internal/domain"
)

// Stop is one delivery stop submitted for optimization, keyed by order code.
type Stop struct {
	OrderCode  string  `json:"order_code"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
}

// HTTPGateway talks to the external route optimization service. The optimizer
// is untrusted: callers must treat its answer as a suggestion and merge
// defensively.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a route optimizer client with a bounded timeout.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type optimizeRequest struct {
	Origin *domain.Coordinates `json:"origin,omitempty"`
	Stops  []Stop              `json:"stops"`
}

type optimizeResponse struct {
	OrderCodes []string `json:"order_codes"`
}

// Optimize submits the stop list and returns the suggested visit order as a
// list of order codes, possibly a subset or superset of what was sent.
func (g *HTTPGateway) Optimize(ctx context.Context, stops []Stop, origin *domain.Coordinates) ([]string, error) {
	body, err := json.Marshal(optimizeRequest{Origin: origin, Stops: stops})
	if err != nil {
		return nil, fmt.Errorf("routeopt gateway: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/optimize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("routeopt gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routeopt gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routeopt gateway: unexpected status %d", resp.StatusCode)
	}

	var dto optimizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("routeopt gateway: decode: %w", err)
	}
	return dto.OrderCodes, nil
}
