// Package email normalizes and masks email addresses.
package email

import (
	"net/mail"
	"strings"

	dErrors "carecompliance/pkg/domain-errors"
)

// Normalize validates a bare address and lowercases its domain. Display-name
// forms ("Name <a@b>") are rejected.
func Normalize(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 || !strings.Contains(addr[at+1:], ".") {
		return "", dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	return addr[:at] + "@" + strings.ToLower(addr[at+1:]), nil
}

// Mask keeps the first rune of the local part and the domain, for logs.
func Mask(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return "***"
	}
	local := []rune(addr[:at])
	return string(local[0]) + "***" + addr[at:]
}
