package events

import (
	"time"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// Event is a domain event emitted by a lifecycle transition. Transitions
// return these explicitly instead of relying on persistence hooks, so side
// effects stay visible and testable.
type Event struct {
	ID         string           `json:"id"`
	Type       domain.EventType `json:"type"`
	TicketID   int64            `json:"ticket_id"`
	CompanyID  int64            `json:"company_id"`
	ActorID    *int64           `json:"actor_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    any              `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string  `json:"title"`
	Urgency  int     `json:"urgency"`
	Priority int     `json:"priority"`
	Slug     string  `json:"slug"`
	TypeID   *int64  `json:"ticket_type_id,omitempty"`
	Category *string `json:"category,omitempty"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// ReplyAddedPayload payload.
type ReplyAddedPayload struct {
	ReplyID    int64  `json:"reply_id"`
	ByRole     string `json:"by_role"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// AssignedPayload payload.
type AssignedPayload struct {
	AssigneeID int64 `json:"assignee_id"`
	AutoMoved  bool  `json:"auto_moved_in_progress"`
}

// TransferredPayload payload.
type TransferredPayload struct {
	FromUserID *int64 `json:"from_user_id,omitempty"`
	ToUserID   int64  `json:"to_user_id"`
	Reason     string `json:"reason"`
}

// PausedPayload payload.
type PausedPayload struct {
	Reason string `json:"reason"`
}

// RatedPayload payload.
type RatedPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// SLAAlertPayload payload for monitoring-driven warning/missed events.
type SLAAlertPayload struct {
	Deadline       *time.Time `json:"deadline,omitempty"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}
