package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

func TestRenderSubstitutesContext(t *testing.T) {
	ec := EventContext{
		Ticket: &domain.Ticket{
			Slug:  "TK-20260301-abc12345",
			Title: "Cannot export project",
		},
		Company:   &domain.Company{Name: "Acme Translations"},
		TicketURL: "https://support.example.com/tickets/TK-20260301-abc12345",
	}
	template := domain.NotificationTemplate{
		Name:            "ticket-created-email",
		SubjectTemplate: "[{{.Ticket.Slug}}] {{.Ticket.Title}}",
		BodyTemplate:    "New ticket from {{.Company.Name}}: {{.TicketURL}}",
	}

	subject, body, err := Render(template, ec)
	require.NoError(t, err)
	assert.Equal(t, "[TK-20260301-abc12345] Cannot export project", subject)
	assert.Equal(t, "New ticket from Acme Translations: https://support.example.com/tickets/TK-20260301-abc12345", body)
}

func TestRenderExtraValues(t *testing.T) {
	ec := EventContext{
		Ticket: &domain.Ticket{Title: "t"},
		Extra:  map[string]string{"EventType": "ticket_paused"},
	}
	template := domain.NotificationTemplate{
		SubjectTemplate: "{{.EventType}}",
		BodyTemplate:    "-",
	}

	subject, _, err := Render(template, ec)
	require.NoError(t, err)
	assert.Equal(t, "ticket_paused", subject)
}

func TestRenderBadTemplate(t *testing.T) {
	template := domain.NotificationTemplate{
		SubjectTemplate: "{{.Ticket.Title",
		BodyTemplate:    "-",
	}
	_, _, err := Render(template, EventContext{})
	assert.Error(t, err)
}
