package models

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/privacy"
)

const (
	// DefaultLinkTTL is how long a sent or resent link stays open.
	DefaultLinkTTL = 14 * 24 * time.Hour

	tokenBytes      = 32
	maxCommentRunes = 1000
)

// Status is derived from the link state and the current time.
type Status string

const (
	StatusSent      Status = "sent"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// TemplateItem is one acknowledgement prompt.
type TemplateItem struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// Template is a named list of items a guardian acknowledges.
type Template struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Items []TemplateItem `json:"items"`
}

func (t *Template) HasItem(id string) bool {
	for _, item := range t.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Response is a guardian's answer to one template item.
type Response struct {
	ItemID       string `json:"item_id"`
	Acknowledged bool   `json:"acknowledged"`
	Comment      string `json:"comment,omitempty"`
}

// Link is a tokenized checklist sent to a guardian.
//
// Invariants:
//   - Token never changes once issued; resend only moves ExpiresAt
//   - Completed is terminal
type Link struct {
	ID            uuid.UUID  `json:"id"`
	ResidentID    string     `json:"resident_id"`
	TemplateID    string     `json:"template_id"`
	GuardianEmail string     `json:"guardian_email"`
	Token         string     `json:"-"`
	SentAt        time.Time  `json:"sent_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Responses     []Response `json:"responses,omitempty"`
}

// NewLink issues a link with a fresh random token.
func NewLink(residentID, templateID, guardianEmail string, now time.Time, ttl time.Duration) (*Link, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	return &Link{
		ID:            uuid.New(),
		ResidentID:    residentID,
		TemplateID:    templateID,
		GuardianEmail: guardianEmail,
		Token:         token,
		SentAt:        now,
		ExpiresAt:     now.Add(ttl),
	}, nil
}

// NewToken returns a URL-safe random token.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsExpired is true strictly after ExpiresAt.
func (l *Link) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

func (l *Link) Status(now time.Time) Status {
	switch {
	case l.Completed:
		return StatusCompleted
	case l.IsExpired(now):
		return StatusExpired
	default:
		return StatusSent
	}
}

func (l *Link) CanSubmit(now time.Time) error {
	if l.Completed {
		return dErrors.New(dErrors.CodeInvalidState, "checklist already completed")
	}
	if l.IsExpired(now) {
		return dErrors.New(dErrors.CodeInvalidState, "checklist link has expired")
	}
	return nil
}

func (l *Link) ApplySubmit(responses []Response, now time.Time) {
	l.Completed = true
	l.CompletedAt = &now
	l.Responses = responses
}

func (l *Link) CanResend() error {
	if l.Completed {
		return dErrors.New(dErrors.CodeInvalidState, "checklist already completed")
	}
	return nil
}

// ApplyResend reopens the link for another ttl. The token is kept.
func (l *Link) ApplyResend(now time.Time, ttl time.Duration) {
	l.ExpiresAt = now.Add(ttl)
}

func (l *Link) Clone() *Link {
	c := *l
	if l.CompletedAt != nil {
		t := *l.CompletedAt
		c.CompletedAt = &t
	}
	if l.Responses != nil {
		c.Responses = append([]Response(nil), l.Responses...)
	}
	return &c
}

// ValidateResponses checks every response against the template and screens
// comments. It returns trimmed copies.
func ValidateResponses(t *Template, responses []Response) ([]Response, error) {
	if len(responses) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one response is required")
	}
	seen := make(map[string]bool, len(responses))
	out := make([]Response, 0, len(responses))
	for _, r := range responses {
		r.ItemID = strings.TrimSpace(r.ItemID)
		r.Comment = strings.TrimSpace(r.Comment)
		if !t.HasItem(r.ItemID) {
			return nil, dErrors.New(dErrors.CodeValidation, "response item "+r.ItemID+" is not part of the checklist")
		}
		if seen[r.ItemID] {
			return nil, dErrors.New(dErrors.CodeValidation, "response item "+r.ItemID+" answered twice")
		}
		seen[r.ItemID] = true
		if len([]rune(r.Comment)) > maxCommentRunes {
			return nil, dErrors.New(dErrors.CodeValidation, "comment is too long")
		}
		if finding, found := privacy.Default().Check(r.Comment); found {
			return nil, dErrors.New(dErrors.CodeValidation, "comment must not contain identifying information ("+string(finding.Class)+")")
		}
		out = append(out, r)
	}
	return out, nil
}

// LinkSummary is the overview row for one link.
type LinkSummary struct {
	LinkID        uuid.UUID `json:"link_id"`
	ResidentID    string    `json:"resident_id"`
	Location      string    `json:"location"`
	TemplateID    string    `json:"template_id"`
	TemplateName  string    `json:"template_name"`
	GuardianEmail string    `json:"guardian_email"`
	SentAt        time.Time `json:"sent_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Status        Status    `json:"status"`
	Expired       bool      `json:"expired"`
}
