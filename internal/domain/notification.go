package domain

import "time"

// Channel enumerates notification delivery media.
type Channel string

const (
	ChannelEmail            Channel = "email"
	ChannelFeishu           Channel = "feishu"
	ChannelEnterpriseWechat Channel = "enterprise_wechat"
	ChannelWebhook          Channel = "webhook"
)

// EventType identifies a notifiable domain event.
type EventType string

const (
	EventTicketCreated               EventType = "ticket_created"
	EventTicketStatusChanged         EventType = "ticket_status_changed"
	EventTicketRepliedBySupport      EventType = "ticket_replied_by_support"
	EventTicketRepliedByCustomer     EventType = "ticket_replied_by_customer"
	EventTicketAssigned              EventType = "ticket_assigned"
	EventTicketTransferred           EventType = "ticket_transferred"
	EventTicketPaused                EventType = "ticket_paused"
	EventTicketRated                 EventType = "ticket_rated"
	EventTicketSLAIRWarning          EventType = "ticket_sla_ir_warning"
	EventTicketSLAIRMissed           EventType = "ticket_sla_ir_missed"
	EventTicketSLAResolutionWarning  EventType = "ticket_sla_resolution_warning"
	EventTicketSLAResolutionMissed   EventType = "ticket_sla_resolution_missed"
	EventTicketIdleWarning           EventType = "ticket_idle_warning"
)

// NotificationTemplate holds renderable subject/body text for one
// (event type, channel) pair. A nil CompanyID marks a global template;
// company-specific templates override global ones per channel.
type NotificationTemplate struct {
	ID              int64
	Name            string
	CompanyID       *int64
	EventType       EventType
	Channel         Channel
	IsActive        bool
	SubjectTemplate string
	BodyTemplate    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NotificationStatus is the delivery outcome of one dispatch attempt.
type NotificationStatus string

const (
	NotificationPending     NotificationStatus = "pending"
	NotificationSent        NotificationStatus = "sent"
	NotificationFailed      NotificationStatus = "failed"
	NotificationRetryFailed NotificationStatus = "retry_failed"
)

// NotificationLog is the append-only audit row for one delivery attempt.
// Written as pending before the attempt, then moved to a terminal status.
type NotificationLog struct {
	ID            int64
	UserID        *int64
	CompanyID     *int64
	TicketID      int64
	Channel       Channel
	RecipientInfo string
	Subject       string
	Status        NotificationStatus
	RetryAttempts int
	CreatedAt     time.Time
	SentAt        *time.Time
	ResponseInfo  *string
}
