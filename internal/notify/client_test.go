package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/internal/platform/config"
	dErrors "carecompliance/pkg/domain-errors"
)

func testConfig(url string) config.EmailConfig {
	return config.EmailConfig{
		BaseURL:    url,
		APIKey:     "key-1",
		From:       "compliance@example.org",
		Timeout:    2 * time.Second,
		RetryCount: 2,
	}
}

func TestClient_Send(t *testing.T) {
	t.Run("posts the message with the bearer key", func(t *testing.T) {
		var got sendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"msg-1"}`))
		}))
		defer srv.Close()

		id, err := NewClient(testConfig(srv.URL)).Send(context.Background(), Message{To: "g@example.org", Subject: "Hi", HTML: "<p>x</p>"})
		require.NoError(t, err)
		assert.Equal(t, "msg-1", id)
		assert.Equal(t, "compliance@example.org", got.From)
		assert.Equal(t, "g@example.org", got.To)
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"msg-2"}`))
		}))
		defer srv.Close()

		id, err := NewClient(testConfig(srv.URL)).Send(context.Background(), Message{To: "g@example.org"})
		require.NoError(t, err)
		assert.Equal(t, "msg-2", id)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are external service errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"bad recipient"}`))
		}))
		defer srv.Close()

		_, err := NewClient(testConfig(srv.URL)).Send(context.Background(), Message{To: "g@example.org"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExternalService))
		assert.Contains(t, err.Error(), "bad recipient")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("open breaker short-circuits", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.RetryCount = 0
		client := NewClient(cfg)
		for range 5 {
			_, err := client.Send(context.Background(), Message{To: "g@example.org"})
			require.Error(t, err)
		}
		_, err := client.Send(context.Background(), Message{To: "g@example.org"})
		require.Error(t, err)
		assert.Equal(t, int32(5), calls.Load())
	})
}
