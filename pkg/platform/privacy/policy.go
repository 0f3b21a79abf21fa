// Package privacy screens human-entered free text for identifying content.
//
// There is one policy for the whole service: an ordered list of forbidden
// pattern classes. Note fields, checklist comments and audit details all go
// through it, so a pattern added here applies everywhere at once.
package privacy

import (
	"regexp"
	"strings"
)

// PatternClass names a kind of identifying content.
type PatternClass string

const (
	ClassIdentifier PatternClass = "identifier"
	ClassPhone      PatternClass = "phone"
	ClassEmail      PatternClass = "email"
)

// Redacted replaces matched values when text is sanitized rather than rejected.
const Redacted = "[redacted]"

type rule struct {
	class   PatternClass
	pattern *regexp.Regexp
}

// Policy is an ordered set of forbidden pattern classes. The zero value is not
// usable; use Default or NewPolicy.
type Policy struct {
	rules []rule
}

// Finding reports the first class that matched.
type Finding struct {
	Class PatternClass
}

var defaultPolicy = NewPolicy(
	// SSN-like 3-2-4 digit groups.
	ClassIdentifier, `\b\d{3}[- ]?\d{2}[- ]?\d{4}\b`,
	// 3-3-4 phone groups with optional country prefix.
	ClassPhone, `(?:\+\d{1,2}[\s.-]?)?\(?\b\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`,
	ClassEmail, `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
)

// Default returns the service-wide policy.
func Default() *Policy {
	return defaultPolicy
}

// NewPolicy builds a policy from (class, expression) pairs evaluated in order.
// It panics on an invalid expression; policies are built at init time.
func NewPolicy(pairs ...any) *Policy {
	if len(pairs)%2 != 0 {
		panic("privacy: NewPolicy needs class/expression pairs")
	}
	p := &Policy{}
	for i := 0; i < len(pairs); i += 2 {
		class := pairs[i].(PatternClass)
		expr := pairs[i+1].(string)
		p.rules = append(p.rules, rule{class: class, pattern: regexp.MustCompile(expr)})
	}
	return p
}

// Check returns the first matching class, or ok=false when text is clean.
func (p *Policy) Check(text string) (Finding, bool) {
	if strings.TrimSpace(text) == "" {
		return Finding{}, false
	}
	for _, r := range p.rules {
		if r.pattern.MatchString(text) {
			return Finding{Class: r.class}, true
		}
	}
	return Finding{}, false
}

// Sanitize replaces every match of every class with Redacted.
func (p *Policy) Sanitize(text string) string {
	for _, r := range p.rules {
		text = r.pattern.ReplaceAllString(text, Redacted)
	}
	return text
}

// SanitizeMap returns a copy of details with every value sanitized.
func (p *Policy) SanitizeMap(details map[string]string) map[string]string {
	if len(details) == 0 {
		return details
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		out[k] = p.Sanitize(v)
	}
	return out
}
