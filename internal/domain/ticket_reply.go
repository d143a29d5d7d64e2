package domain

import "time"

// Reply is a message on a ticket. Internal replies stay staff-only.
type Reply struct {
	ID          int64
	TicketID    int64
	UserID      *int64
	Content     string
	IsInternal  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Attachments []Attachment
}

// Attachment references an uploaded file stored by a storage backend.
type Attachment struct {
	ID           int64
	TicketID     int64
	ReplyID      *int64
	FileName     string
	FileType     string
	SizeBytes    int64
	StorageKey   string
	UploadedByID *int64
	CreatedAt    time.Time
}

// SatisfactionRating is the single post-resolution rating on a ticket.
type SatisfactionRating struct {
	ID        int64
	TicketID  int64
	RatedByID *int64
	Rating    int
	Comment   *string
	CreatedAt time.Time
}
