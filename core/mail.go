package core

import (
	"bytes"
	"net/mail"
	"text/template"
)

type (
	EmailMessage struct {
		To      []mail.Address
		ReplyTo *mail.Address
		Subject string

		// templated content
		TemplateName string
		TemplateData interface{}
		TextContent  string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "welcome"}}Hi {{.Email}},

Your {{.Role}} account is ready. Sign in at {{.LoginURL}} to get started.
{{end}}
{{define "new_submission"}}Hi {{.TeacherEmail}},

{{.StudentEmail}} just submitted "{{.AssignmentTitle}}".
Review the submissions at {{.SubmissionsURL}}.
{{end}}
`))

// Render executes the message template (if any) into TextContent.
func (msg *EmailMessage) Render() error {
	if msg.TemplateName == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, msg.TemplateName, msg.TemplateData); err != nil {
		return err
	}
	msg.TextContent = buf.String()
	return nil
}

func (msg *EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0
}

func (msg *EmailMessage) HasContent() bool {
	return msg.TextContent != ""
}
