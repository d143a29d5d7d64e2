package domain

import "time"

// StatusHistory is an append-only record of a status transition.
type StatusHistory struct {
	ID          int64
	TicketID    int64
	ChangedByID *int64
	OldStatus   TicketStatus
	NewStatus   TicketStatus
	Reason      *string
	CreatedAt   time.Time
}

// TransferHistory is an append-only record of an assignment or transfer.
type TransferHistory struct {
	ID              int64
	TicketID        int64
	TransferredByID *int64
	FromUserID      *int64
	ToUserID        *int64
	Reason          string
	CreatedAt       time.Time
}
