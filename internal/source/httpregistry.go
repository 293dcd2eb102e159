package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// HTTPRegistry implements DriverRegistry against a fleet-service HTTP
// API: GET {base}/drivers?location=X&min_capacity_kg=Y returning a
// JSON array of candidates.
type HTTPRegistry struct {
	baseURL string
}

// NewHTTPRegistry creates a registry client rooted at baseURL.
func NewHTTPRegistry(baseURL string) *HTTPRegistry {
	return &HTTPRegistry{baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the data source name.
func (r *HTTPRegistry) Name() string { return "Fleet Service" }

// Query fetches candidates from the fleet service. Transport errors
// surface as ErrUnavailable; the pipeline substitutes an empty list
// and flags the stage as degraded.
func (r *HTTPRegistry) Query(ctx context.Context, location string, minCapacityKG float64) ([]models.DriverCandidate, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("min_capacity_kg", fmt.Sprintf("%.0f", minCapacityKG))

	body, _, err := doGet(ctx, r.baseURL+"/drivers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read fleet response: %v", ErrUnavailable, err)
	}

	var out []models.DriverCandidate
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode fleet response: %v", ErrUnavailable, err)
	}
	return out, nil
}

// HealthCheck probes the fleet service health endpoint.
func (r *HTTPRegistry) HealthCheck(ctx context.Context) error {
	body, _, err := doGet(ctx, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return body.Close()
}
