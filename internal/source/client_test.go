package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(nil, WithBackoff(time.Millisecond), WithMaxRetries(3), WithTimeout(time.Second))
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	body, err := newTestClient().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_StatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"client error fails at once", http.StatusNotFound, 1},
		{"server error is retried", http.StatusBadGateway, 3},
		{"rate limit exhausts retries", http.StatusTooManyRequests, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient().Get(context.Background(), srv.URL)
			assert.Error(t, err)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(nil, WithBackoff(time.Hour)).Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
