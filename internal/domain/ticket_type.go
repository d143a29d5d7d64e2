package domain

import "time"

// TicketType is a node in the ticket-type hierarchy (adjacency list with a
// cached depth). Only leaf nodes are assignable to tickets; the invariant is
// enforced at assignment time by the lifecycle engine.
type TicketType struct {
	ID          int64
	Name        string
	Description *string
	ParentID    *int64
	Depth       int
	IsActive    bool
	CreatedByID *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
