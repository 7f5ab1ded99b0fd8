package webclient

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

func TestGetSetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "agent/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(5*time.Second, "agent/1.0")
	status, body, err := c.Get(context.Background(), srv.URL, "application/json")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))
}

func TestGetWithRetryRecovers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	status, body, err := c.GetWithRetry(context.Background(), srv.URL, "", 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetWithRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	status, _, err := c.GetWithRetry(context.Background(), srv.URL, "", 2, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
