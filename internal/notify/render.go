package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// EventContext carries the consistent snapshot of state captured at trigger
// time. Templates render against it; recipients and mentions derive from it.
type EventContext struct {
	Ticket      *domain.Ticket
	Company     *domain.Company
	Actor       *domain.User
	TargetUser  *domain.User
	MentionUser *domain.User
	Reply       *domain.Reply

	TicketURL string
	Extra     map[string]string
}

// templateData flattens the context into the map rendered by templates.
func (ec EventContext) templateData() map[string]any {
	data := map[string]any{
		"TicketURL": ec.TicketURL,
	}
	if ec.Ticket != nil {
		data["Ticket"] = ec.Ticket
	}
	if ec.Company != nil {
		data["Company"] = ec.Company
	}
	if ec.Actor != nil {
		data["Actor"] = ec.Actor
	}
	if ec.Reply != nil {
		data["Reply"] = ec.Reply
	}
	for k, v := range ec.Extra {
		data[k] = v
	}
	return data
}

// Render substitutes context variables into the template's subject and body.
func Render(tpl domain.NotificationTemplate, ec EventContext) (subject, body string, err error) {
	data := ec.templateData()
	subject, err = renderOne(tpl.Name+":subject", tpl.SubjectTemplate, data)
	if err != nil {
		return "", "", err
	}
	body, err = renderOne(tpl.Name+":body", tpl.BodyTemplate, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func renderOne(name, text string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
