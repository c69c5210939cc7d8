package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/routinely/tracker/internal/core/domain"
)

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Hi {{.Name}},</p>
  <h2>{{.Heading}}</h2>
  <p><strong>{{.Title}}</strong>{{if .When}} at {{.When}}{{end}}</p>
  {{- if .Description}}
  <p>{{.Description}}</p>
  {{- end}}
  {{- if .Priority}}
  <p>Priority: {{.Priority}}</p>
  {{- end}}
  <p style="color: #888; font-size: 12px;">You receive this email because notifications are enabled in your profile.</p>
</body>
</html>
`))

type emailView struct {
	Name        string
	Heading     string
	Title       string
	When        string
	Description string
	Priority    domain.Priority
}

// renderEmail builds the email for a routine due now or a task due today.
func renderEmail(user *domain.User, n domain.Notification) (domain.EmailMessage, error) {
	view := emailView{
		Name:        user.DisplayName,
		Title:       n.Title,
		Description: n.Description,
	}
	var subject string
	switch n.Kind {
	case domain.KindRoutine:
		subject = "Routine reminder: " + n.Title
		view.Heading = "It's time for your routine"
		view.When = n.Schedule
	default:
		subject = "Task due today: " + n.Title
		view.Heading = "A task is due today"
		view.Priority = n.Priority
	}

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, view); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render email: %w", err)
	}
	return domain.EmailMessage{
		NotificationID: n.ID,
		To:             user.Email,
		Subject:        subject,
		HTMLBody:       body.String(),
	}, nil
}
