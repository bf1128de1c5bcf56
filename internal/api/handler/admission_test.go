package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hszk-dev/streamdir/internal/upstream"
	"github.com/hszk-dev/streamdir/internal/usecase"
)

func postForm(t *testing.T, h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestAdmissionHandler_Start(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		setupMock      func(m *mockAdmissionService)
		wantStatusCode int
		wantLocation   string
	}{
		{
			name: "successful admission redirects to the creator",
			form: url.Values{"name": {"key-alice"}, "addr": {"10.0.0.1"}},
			setupMock: func(m *mockAdmissionService) {
				m.startStreamFn = func(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
					if ingestKey != "key-alice" {
						t.Errorf("ingestKey = %q, want key-alice", ingestKey)
					}
					if sourceAddr != "10.0.0.1" {
						t.Errorf("sourceAddr = %q, want 10.0.0.1", sourceAddr)
					}
					return "alice", nil
				}
			},
			wantStatusCode: http.StatusFound,
			wantLocation:   "alice",
		},
		{
			name:           "missing stream key",
			form:           url.Values{"addr": {"10.0.0.1"}},
			setupMock:      func(m *mockAdmissionService) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown stream key",
			form: url.Values{"name": {"bogus"}},
			setupMock: func(m *mockAdmissionService) {
				m.startStreamFn = func(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
					return "", upstream.ErrKeyRejected
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "creator already live",
			form: url.Values{"name": {"key-alice"}},
			setupMock: func(m *mockAdmissionService) {
				m.startStreamFn = func(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
					return "", usecase.ErrAlreadyLive
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "key matcher unreachable",
			form: url.Values{"name": {"key-alice"}},
			setupMock: func(m *mockAdmissionService) {
				m.startStreamFn = func(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
					return "", upstream.ErrUnavailable
				}
			},
			wantStatusCode: http.StatusBadGateway,
		},
		{
			name: "unexpected failure",
			form: url.Values{"name": {"key-alice"}},
			setupMock: func(m *mockAdmissionService) {
				m.startStreamFn = func(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
					return "", errors.New("boom")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAdmissionService{}
			tt.setupMock(mock)
			h := NewAdmissionHandler(mock)

			rec := postForm(t, h.Start, "/v1/ingest/start", tt.form)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d", tt.wantStatusCode, rec.Code)
			}
			if tt.wantLocation != "" {
				if got := rec.Header().Get("Location"); got != tt.wantLocation {
					t.Errorf("Location = %q, want %q", got, tt.wantLocation)
				}
			}
		})
	}
}

func TestAdmissionHandler_Stop(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		setupMock      func(m *mockAdmissionService)
		wantStatusCode int
	}{
		{
			name: "successful stop",
			form: url.Values{"name": {"key-alice"}},
			setupMock: func(m *mockAdmissionService) {
				m.stopStreamFn = func(ctx context.Context, ingestKey string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "already stopped is still OK",
			form: url.Values{"name": {"key-alice"}},
			setupMock: func(m *mockAdmissionService) {
				// The service already swallows the redundant stop.
				m.stopStreamFn = func(ctx context.Context, ingestKey string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing stream key",
			form:           url.Values{},
			setupMock:      func(m *mockAdmissionService) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unexpected failure",
			form: url.Values{"name": {"key-alice"}},
			setupMock: func(m *mockAdmissionService) {
				m.stopStreamFn = func(ctx context.Context, ingestKey string) error {
					return errors.New("boom")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAdmissionService{}
			tt.setupMock(mock)
			h := NewAdmissionHandler(mock)

			rec := postForm(t, h.Stop, "/v1/ingest/stop", tt.form)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d", tt.wantStatusCode, rec.Code)
			}
		})
	}
}
