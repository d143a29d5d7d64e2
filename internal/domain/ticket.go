package domain

import (
	"time"

	"github.com/iridescentding/memoq-tickets-system/internal/sla"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	StatusNewIssue           TicketStatus = "new_issue"
	StatusPendingAssignment  TicketStatus = "pending_assignment"
	StatusInProgress         TicketStatus = "in_progress"
	StatusWaitingForCustomer TicketStatus = "waiting_for_customer"
	StatusCustomerFollowUp   TicketStatus = "customer_follow_up"
	StatusResolved           TicketStatus = "resolved"
	StatusClosed             TicketStatus = "closed"
	StatusPaused             TicketStatus = "paused"
)

// Terminal reports whether the status ends active work on a ticket.
func (s TicketStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// MonitoringExemptStatuses lists the states with no SLA or idle pressure:
// the terminal ones plus paused, whose clocks are suspended.
var MonitoringExemptStatuses = []TicketStatus{StatusClosed, StatusResolved, StatusPaused}

// UnderMonitoring reports whether SLA and idle scans apply to the status.
func (s TicketStatus) UnderMonitoring() bool {
	for _, exempt := range MonitoringExemptStatuses {
		if s == exempt {
			return false
		}
	}
	return true
}

// ContactMethod enumerates how the submitter wants to be reached.
type ContactMethod string

const (
	ContactEmail            ContactMethod = "email"
	ContactWechat           ContactMethod = "wechat"
	ContactEnterpriseWechat ContactMethod = "enterprise_wechat"
	ContactFeishu           ContactMethod = "feishu"
	ContactPhone            ContactMethod = "phone"
)

// ClosingReason enumerates why a ticket was closed.
type ClosingReason string

const (
	ClosingCustomerCompleted ClosingReason = "customer_completed"
	ClosingOnHold            ClosingReason = "on_hold"
	ClosingBugReport         ClosingReason = "bug_report"
	ClosingFeatureRequest    ClosingReason = "feature_request"
	ClosingOther             ClosingReason = "other"
)

// Urgency bounds for the user-assigned urgency field (1 = most urgent).
const (
	UrgencyMin = 1
	UrgencyMax = 4
)

// Ticket is the central aggregate.
type Ticket struct {
	ID            int64
	Slug          string
	Title         string
	Description   string
	CompanyID     int64
	CreatedByID   *int64
	SubmittedByID *int64
	AssignedToID  *int64
	Status        TicketStatus
	Priority      int
	Urgency       int
	Category      *string
	Subcategory   *string
	ContactMethod ContactMethod
	ContactInfo   *string
	TicketTypeID  *int64
	Labels        []string
	FollowerIDs   []int64

	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastActivityAt      time.Time
	FirstRepliedAt      *time.Time
	LastCustomerReplyAt *time.Time
	LastSupportReplyAt  *time.Time
	ResolvedAt          *time.Time
	ClosedAt            *time.Time

	PausedAt    *time.Time
	PauseReason *string

	ClosingReasonType   *ClosingReason
	ClosingReasonDetail *string

	// Deadlines are computed once at creation from the company SLA
	// config snapshot and never recomputed.
	IRDeadline         *time.Time
	ResolutionDeadline *time.Time
}

// IRSLAMissed reports whether the initial-response deadline was missed as of now.
func (t *Ticket) IRSLAMissed(now time.Time) bool {
	return sla.Missed(t.FirstRepliedAt, t.IRDeadline, now)
}

// ResolutionSLAMissed reports whether the resolution deadline was missed as of now.
func (t *Ticket) ResolutionSLAMissed(now time.Time) bool {
	return sla.Missed(t.ResolvedAt, t.ResolutionDeadline, now)
}

// IsFollower reports whether the user follows the ticket.
func (t *Ticket) IsFollower(userID int64) bool {
	for _, id := range t.FollowerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
