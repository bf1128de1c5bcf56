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

// KeyMatcher resolves an opaque ingest key into a creator identity.
type KeyMatcher interface {
	// MatchKey returns the creator the key belongs to.
	// Returns ErrKeyRejected when the collaborator refuses the key and
	// ErrUnavailable when it cannot be reached.
	MatchKey(ctx context.Context, key string) (string, error)
}

// HTTPKeyMatcher calls the key-matching service over HTTP.
type HTTPKeyMatcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPKeyMatcher creates a key matcher against the given base URL.
func NewHTTPKeyMatcher(baseURL string, timeout time.Duration) *HTTPKeyMatcher {
	return &HTTPKeyMatcher{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

var _ KeyMatcher = (*HTTPKeyMatcher)(nil)

// matchKeyResponse mirrors the collaborator's wire format: the resolved
// creator identity arrives in the "value" field.
type matchKeyResponse struct {
	Value string `json:"value"`
}

// MatchKey resolves an ingest key to a creator identity.
func (m *HTTPKeyMatcher) MatchKey(ctx context.Context, key string) (string, error) {
	reqURL := fmt.Sprintf("%s/match_key/%s", m.baseURL, url.PathEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build key match request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamKeyMatch, metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: key match: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamKeyMatch, metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: status %d", ErrKeyRejected, resp.StatusCode)
	}

	var body matchKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamKeyMatch, metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: decode key match response: %v", ErrUnavailable, err)
	}
	if body.Value == "" {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamKeyMatch, metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: empty creator in response", ErrUnavailable)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamKeyMatch, metrics.StatusSuccess).Inc()
	return body.Value, nil
}
