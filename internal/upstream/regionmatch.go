package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
)

// RegionEndpoint is the serving-pool descriptor the CDN manager returns for
// a region.
type RegionEndpoint struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Path     string `json:"path"`
	MediaURL string `json:"media_url"`
}

// RegionMatcher maps a requested geography to the serving endpoint of the
// nearest pool.
type RegionMatcher interface {
	// MatchRegion returns the endpoint descriptor serving the region.
	// Returns ErrUnavailable when the collaborator is unreachable or refuses.
	MatchRegion(ctx context.Context, region string) (*RegionEndpoint, error)
}

// HTTPRegionMatcher calls the CDN manager over HTTP.
type HTTPRegionMatcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRegionMatcher creates a region matcher against the given base URL.
func NewHTTPRegionMatcher(baseURL string, timeout time.Duration) *HTTPRegionMatcher {
	return &HTTPRegionMatcher{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

var _ RegionMatcher = (*HTTPRegionMatcher)(nil)

// MatchRegion resolves a region tag to its serving endpoint.
func (m *HTTPRegionMatcher) MatchRegion(ctx context.Context, region string) (*RegionEndpoint, error) {
	reqURL := fmt.Sprintf("%s/match_region/%s", m.baseURL, url.PathEscape(region))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build region match request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamRegionMatch, metrics.StatusError).Inc()
		return nil, fmt.Errorf("%w: region match: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamRegionMatch, metrics.StatusError).Inc()
		return nil, fmt.Errorf("%w: region match status %d", ErrUnavailable, resp.StatusCode)
	}

	var endpoint RegionEndpoint
	if err := json.NewDecoder(resp.Body).Decode(&endpoint); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamRegionMatch, metrics.StatusError).Inc()
		return nil, fmt.Errorf("%w: decode region match response: %v", ErrUnavailable, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamRegionMatch, metrics.StatusSuccess).Inc()
	return &endpoint, nil
}
