package ratelimit

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/pkg/platform/httputil"
	"carecompliance/pkg/testutil"
)

func TestMiddleware(t *testing.T) {
	l := NewLimiter(NewInMemoryStore(), Limit{Requests: 1, Window: time.Minute})
	h := Middleware(l, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/checklists/form/tok", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := request("192.0.2.1:5000")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	// Same host on a different port shares the window.
	second := request("192.0.2.1:5001")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	body := testutil.UnmarshalResponse[httputil.ErrorResponse](t, second)
	assert.Equal(t, "rate_limit_exceeded", body.Error)

	other := request("192.0.2.2:5000")
	assert.Equal(t, http.StatusNoContent, other.Code)
}
