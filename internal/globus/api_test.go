package globus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient wires a RealClient to a test server for one service.
func testClient(t *testing.T, service string, handler http.Handler) *RealClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewRealClient(configAuthForTest())
	httpClient, err := httpClientFor(context.Background(), c.auth, service)
	require.NoError(t, err)
	c.clients[service] = &restClient{
		service: service,
		baseURL: srv.URL,
		http:    httpClient,
	}
	return c
}

func TestRestClientParsesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":       "EndpointNotFound",
			"message":    "no such endpoint",
			"request_id": "abc123",
		})
	}))
	defer srv.Close()

	rc := &restClient{service: ServiceTransfer, baseURL: srv.URL, http: srv.Client()}
	_, err := rc.get(context.Background(), "/endpoint/xyz", nil)
	require.Error(t, err)

	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "EndpointNotFound")
	assert.Contains(t, err.Error(), "abc123")
}

func TestRestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	rc := &restClient{service: ServiceAuth, baseURL: srv.URL, http: srv.Client()}
	doc, err := rc.get(context.Background(), "/ping", nil)
	require.NoError(t, err)
	assert.True(t, doc.Get("ok").Bool())
	assert.Equal(t, int32(3), calls.Load())
}

func TestRestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": "BadRequest", "message": "nope"})
	}))
	defer srv.Close()

	rc := &restClient{service: ServiceAuth, baseURL: srv.URL, http: srv.Client()}
	_, err := rc.get(context.Background(), "/ping", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAPIErrorAuthEnvelope(t *testing.T) {
	body := []byte(`{"errors": [{"code": "FORBIDDEN", "detail": "session required", "title": "Forbidden"}]}`)
	apiErr := newAPIError(ServiceAuth, http.StatusForbidden, body)

	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "session required", apiErr.Message)
	assert.True(t, IsHighAssurance(apiErr))
}

func TestIsHighAssurance(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want bool
	}{
		{
			name: "403 mentioning high assurance",
			err:  &APIError{StatusCode: 403, Message: "High Assurance session required"},
			want: true,
		},
		{
			name: "403 mentioning mfa",
			err:  &APIError{StatusCode: 403, Code: "MFA_REQUIRED"},
			want: true,
		},
		{
			name: "plain 403",
			err:  &APIError{StatusCode: 403, Message: "not an admin"},
			want: false,
		},
		{
			name: "401 mentioning session",
			err:  &APIError{StatusCode: 401, Message: "session expired"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHighAssurance(tt.err))
		})
	}
}
