package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carecompliance/pkg/domain-errors"
)

type fakeSender struct {
	fail map[string]bool
	sent []Message
}

func (f *fakeSender) Send(_ context.Context, msg Message) (string, error) {
	if f.fail[msg.To] {
		return "", errors.New("smtp relay refused")
	}
	f.sent = append(f.sent, msg)
	return "id-" + msg.To, nil
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("partial failure keeps going", func(t *testing.T) {
		sender := &fakeSender{fail: map[string]bool{"b@example.org": true}}
		results := NewDispatcher(sender).Dispatch(context.Background(), []Message{
			{To: "a@example.org"}, {To: "b@example.org"}, {To: "c@example.org"},
		})

		require.Len(t, results, 3)
		assert.True(t, results[0].OK())
		assert.Equal(t, "id-a@example.org", results[0].MessageID)
		assert.False(t, results[1].OK())
		assert.True(t, dErrors.HasCode(results[1].Err, dErrors.CodeExternalService))
		assert.True(t, results[2].OK())
		assert.Len(t, sender.sent, 2)
	})

	t.Run("empty recipient fails without sending", func(t *testing.T) {
		sender := &fakeSender{}
		results := NewDispatcher(sender).Dispatch(context.Background(), []Message{{To: " "}})
		require.Len(t, results, 1)
		assert.False(t, results[0].OK())
		assert.Empty(t, sender.sent)
	})

	t.Run("cancelled context fails remaining", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sender := &fakeSender{}
		results := NewDispatcher(sender).Dispatch(ctx, []Message{{To: "a@example.org"}})
		require.Len(t, results, 1)
		assert.True(t, dErrors.HasCode(results[0].Err, dErrors.CodeExternalService))
		assert.Empty(t, sender.sent)
	})
}

func TestRenderTemplates(t *testing.T) {
	t.Run("reminder lists items and escapes", func(t *testing.T) {
		msg, err := RenderReminder("s@example.org", ReminderData{Items: []ReminderItem{
			{Type: "isp", Location: "<Alpha>", DueAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Status: "due-soon", DaysUntilDue: 12},
		}})
		require.NoError(t, err)
		assert.Equal(t, "s@example.org", msg.To)
		assert.Contains(t, msg.HTML, "2026-07-01")
		assert.Contains(t, msg.HTML, "&lt;Alpha&gt;")
		assert.False(t, strings.Contains(msg.HTML, "<Alpha>"))
	})

	t.Run("checklist invite carries the link", func(t *testing.T) {
		msg, err := RenderChecklistInvite("g@example.org", ChecklistInviteData{
			TemplateName: "Annual consent",
			Link:         "https://care.example.org/checklists/tok123",
			ExpiresAt:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "Please review: Annual consent", msg.Subject)
		assert.Contains(t, msg.HTML, "https://care.example.org/checklists/tok123")
		assert.Contains(t, msg.HTML, "2026-02-14")
	})
}
