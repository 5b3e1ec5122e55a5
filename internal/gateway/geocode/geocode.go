package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Location is a resolved postal code.
type Location struct {
	Lat   float64
	Lng   float64
	City  string
	State string
}

// HTTPGateway resolves postal codes through the geocoding collaborator.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a geocoding gateway with a bounded timeout.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type locationDTO struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	City  string  `json:"city"`
	State string  `json:"state"`
}

// Resolve maps a postal code to coordinates and city/state. Returns nil when
// the postal code is unknown.
func (g *HTTPGateway) Resolve(ctx context.Context, postalCode string) (*Location, error) {
	u := fmt.Sprintf("%s/geocode?postal_code=%s", g.baseURL, url.QueryEscape(postalCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var dto locationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("geocode gateway: decode: %w", err)
	}
	return &Location{Lat: dto.Lat, Lng: dto.Lng, City: dto.City, State: dto.State}, nil
}

// StatusError carries a non-OK upstream HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocode gateway: unexpected status %d", e.Code)
}
