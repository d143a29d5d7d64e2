package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTicketSlug builds a short public identifier for a ticket, e.g.
// TK-20260831-1a2b3c4d. The random suffix makes collisions on one day
// practically impossible; the unique index on tickets.slug backstops it.
func NewTicketSlug(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TK-%s-%s", now.Format("20060102"), suffix)
}
