// Package device labels the client device recorded on audit records.
package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"carecompliance/pkg/requestcontext"
)

// HeaderDeviceID lets managed devices (facility tablets) identify themselves.
const HeaderDeviceID = "X-Device-ID"

const maxDeviceIDLength = 64

// Middleware stores a device label in the request context: the X-Device-ID
// header when present, else a coarse label derived from the User-Agent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label := strings.TrimSpace(r.Header.Get(HeaderDeviceID))
		if label == "" || len(label) > maxDeviceIDLength {
			label = LabelFromUserAgent(r.Header.Get("User-Agent"))
		}
		ctx := requestcontext.WithDeviceID(r.Context(), label)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LabelFromUserAgent returns "<browser>/<os>", with "mobile-" prefixed for
// mobile clients. Versions are dropped so the label is not a fingerprint.
func LabelFromUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "unknown"
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "unknown"
	}
	os := ua.OSInfo().Name
	if os == "" {
		os = "unknown"
	}
	label := browser + "/" + os
	if ua.Mobile() {
		label = "mobile-" + label
	}
	return label
}
