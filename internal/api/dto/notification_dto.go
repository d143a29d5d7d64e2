package dto

import (
	"time"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// TemplateResponse response.
type TemplateResponse struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	CompanyID       *int64           `json:"company_id"`
	EventType       domain.EventType `json:"event_type"`
	Channel         domain.Channel   `json:"channel"`
	IsActive        bool             `json:"is_active"`
	SubjectTemplate string           `json:"subject_template"`
	BodyTemplate    string           `json:"body_template"`
}

// NotificationLogResponse response.
type NotificationLogResponse struct {
	ID            int64          `json:"id"`
	UserID        *int64         `json:"user_id"`
	CompanyID     *int64         `json:"company_id"`
	TicketID      int64          `json:"ticket_id"`
	Channel       domain.Channel `json:"channel"`
	RecipientInfo string         `json:"recipient_info"`
	Subject       string         `json:"subject"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	SentAt        *time.Time     `json:"sent_at"`
	ResponseInfo  *string        `json:"response_info"`
}
