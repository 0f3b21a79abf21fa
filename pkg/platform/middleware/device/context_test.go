package device

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"carecompliance/pkg/requestcontext"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.DeviceID(r.Context())
	}))

	t.Run("explicit header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderDeviceID, "tablet-alpha-2")
		req.Header.Set("User-Agent", chromeOnWindows)
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "tablet-alpha-2", seen)
	})

	t.Run("falls back to user agent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", chromeOnWindows)
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, strings.HasPrefix(seen, "Chrome/"), seen)
	})
}

func TestLabelFromUserAgent_Empty(t *testing.T) {
	assert.Equal(t, "unknown", LabelFromUserAgent(""))
}
