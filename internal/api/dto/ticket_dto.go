package dto

import (
	"time"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	CompanyID     *int64   `json:"company_id"`
	Urgency       int      `json:"urgency"`
	Category      *string  `json:"category"`
	Subcategory   *string  `json:"subcategory"`
	ContactMethod string   `json:"contact_method"`
	ContactInfo   *string  `json:"contact_info"`
	TicketTypeID  *int64   `json:"ticket_type_id"`
	Labels        []string `json:"labels"`
	SubmittedByID *int64   `json:"submitted_by_id"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID int64 `json:"assignee_id"`
}

// TransferTicketRequest payload.
type TransferTicketRequest struct {
	ToUserID int64  `json:"to_user_id"`
	Reason   string `json:"reason"`
}

// ReplyRequest payload.
type ReplyRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// PauseTicketRequest payload.
type PauseTicketRequest struct {
	Reason string `json:"reason"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status              string  `json:"status"`
	Reason              *string `json:"reason"`
	ClosingReasonType   *string `json:"closing_reason_type"`
	ClosingReasonDetail *string `json:"closing_reason_detail"`
}

// RateTicketRequest payload.
type RateTicketRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                 int64               `json:"id"`
	Slug               string              `json:"slug"`
	Title              string              `json:"title"`
	CompanyID          int64               `json:"company_id"`
	AssignedToID       *int64              `json:"assigned_to_id"`
	Status             domain.TicketStatus `json:"status"`
	Priority           int                 `json:"priority"`
	Urgency            int                 `json:"urgency"`
	CreatedAt          time.Time           `json:"created_at"`
	LastActivityAt     time.Time           `json:"last_activity_at"`
	IRDeadline         *time.Time          `json:"sla_ir_deadline"`
	ResolutionDeadline *time.Time          `json:"sla_resolution_deadline"`
	IRSLAMissed        bool                `json:"is_ir_sla_missed"`
	ResolutionMissed   bool                `json:"is_resolution_sla_missed"`
}

// TicketDetail response.
type TicketDetail struct {
	TicketSummary
	Description         string               `json:"description"`
	CreatedByID         *int64               `json:"created_by_id"`
	SubmittedByID       *int64               `json:"submitted_by_id"`
	Category            *string              `json:"category"`
	Subcategory         *string              `json:"subcategory"`
	ContactMethod       domain.ContactMethod `json:"contact_method"`
	ContactInfo         *string              `json:"contact_info"`
	TicketTypeID        *int64               `json:"ticket_type_id"`
	Labels              []string             `json:"labels"`
	FirstRepliedAt      *time.Time           `json:"first_replied_at"`
	LastCustomerReplyAt *time.Time           `json:"last_customer_reply_at"`
	LastSupportReplyAt  *time.Time           `json:"last_support_reply_at"`
	ResolvedAt          *time.Time           `json:"resolved_at"`
	ClosedAt            *time.Time           `json:"closed_at"`
	PausedAt            *time.Time           `json:"paused_at"`
	PauseReason         *string              `json:"pause_reason"`
	ClosingReasonType   *string              `json:"closing_reason_type"`
	ClosingReasonDetail *string              `json:"closing_reason_detail"`
}

// ReplyResponse response.
type ReplyResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	UserID     *int64    `json:"user_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusHistoryResponse response.
type StatusHistoryResponse struct {
	ID          int64     `json:"id"`
	ChangedByID *int64    `json:"changed_by_id"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	Reason      *string   `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransferHistoryResponse response.
type TransferHistoryResponse struct {
	ID              int64     `json:"id"`
	TransferredByID *int64    `json:"transferred_by_id"`
	FromUserID      *int64    `json:"from_user_id"`
	ToUserID        *int64    `json:"to_user_id"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}

// RatingResponse response.
type RatingResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	RatedByID *int64    `json:"rated_by_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
