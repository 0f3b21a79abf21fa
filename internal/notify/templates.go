package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}).ParseFS(templateFS, "templates/*.html"))

// ReminderItem is one overdue or due-soon obligation in a reminder email.
type ReminderItem struct {
	Type         string
	Location     string
	DueAt        time.Time
	Status       string
	DaysUntilDue int
}

type ReminderData struct {
	Items []ReminderItem
}

type ChecklistInviteData struct {
	TemplateName string
	Link         string
	ExpiresAt    time.Time
}

// RenderReminder builds the reminder email for one recipient.
func RenderReminder(to string, data ReminderData) (Message, error) {
	body, err := render("reminder.html", data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Compliance items need attention", HTML: body}, nil
}

// RenderChecklistInvite builds the guardian checklist invitation.
func RenderChecklistInvite(to string, data ChecklistInviteData) (Message, error) {
	body, err := render("checklist_invite.html", data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Please review: " + data.TemplateName, HTML: body}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
