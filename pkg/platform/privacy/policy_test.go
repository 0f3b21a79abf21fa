package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy_Check(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		class PatternClass
		found bool
	}{
		{name: "ssn-like digit groups", text: "ref 123-45-6789 on file", class: ClassIdentifier, found: true},
		{name: "unseparated identifier", text: "id 123456789", class: ClassIdentifier, found: true},
		{name: "phone with dashes", text: "call 555-123-4567 after 5", class: ClassPhone, found: true},
		{name: "phone with parens", text: "(555) 123 4567", class: ClassPhone, found: true},
		{name: "email address", text: "send to guardian@example.org", class: ClassEmail, found: true},
		{name: "iso date is clean", text: "reviewed on 2026-10-14 with team", found: false},
		{name: "plain note is clean", text: "Updated mobility goals", found: false},
		{name: "uuid is clean", text: "file 3f2b6d1e-4a5c-4e8b-9c1d-2a3b4c5d6e7f", found: false},
		{name: "blank is clean", text: "   ", found: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			finding, found := Default().Check(tc.text)
			assert.Equal(t, tc.found, found)
			if tc.found {
				assert.Equal(t, tc.class, finding.Class)
			}
		})
	}
}

func TestDefaultPolicy_Sanitize(t *testing.T) {
	out := Default().SanitizeMap(map[string]string{
		"reason":  "guardian at guardian@example.org asked",
		"file_id": "isp-42",
	})
	assert.Equal(t, "guardian at [redacted] asked", out["reason"])
	assert.Equal(t, "isp-42", out["file_id"])
}
