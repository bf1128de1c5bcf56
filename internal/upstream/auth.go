package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
)

// Authorizer checks that the acting user holds a valid session. Session
// credentials travel as forwarded cookies, the way the frontend presents
// them to the directory.
type Authorizer interface {
	// Authorize returns nil when the user is authenticated, ErrUnauthorized
	// when the collaborator rejects the session, ErrUnavailable otherwise.
	Authorize(ctx context.Context, username string, cookies []*http.Cookie) error
}

// HTTPAuthorizer calls the authentication service over HTTP.
type HTTPAuthorizer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthorizer creates an authorizer against the given base URL.
func NewHTTPAuthorizer(baseURL string, timeout time.Duration) *HTTPAuthorizer {
	return &HTTPAuthorizer{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

var _ Authorizer = (*HTTPAuthorizer)(nil)

// Authorize forwards the session cookies to the authentication collaborator.
// Only a 200 means authorized; every other status is a rejection.
func (a *HTTPAuthorizer) Authorize(ctx context.Context, username string, cookies []*http.Cookie) error {
	reqURL := fmt.Sprintf("%s/is_authenticated/%s", a.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build auth request: %w", err)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamAuth, metrics.StatusError).Inc()
		return fmt.Errorf("%w: auth: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamAuth, metrics.StatusError).Inc()
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamAuth, metrics.StatusSuccess).Inc()
	return nil
}
