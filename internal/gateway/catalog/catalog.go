package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog's current view of a product. Fulfillment snapshots
// name and price into the order at creation and never reads them live again.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// HTTPGateway reads products from the catalog collaborator.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a catalog client with a bounded timeout.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type productDTO struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Product fetches a product by id. Returns nil when the catalog does not know it.
func (g *HTTPGateway) Product(ctx context.Context, productID string) (*Product, error) {
	u := g.baseURL + "/products/" + url.PathEscape(productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog gateway: unexpected status %d", resp.StatusCode)
	}

	var dto productDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("catalog gateway: decode: %w", err)
	}
	return &Product{ID: dto.ID, Name: dto.Name, Price: dto.Price, Stock: dto.Stock}, nil
}
