package notify

import (
	"context"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// Delivery is a single rendered message bound for one channel endpoint.
type Delivery struct {
	Recipient string
	Subject   string
	Body      string

	// Mentions holds channel-native user identifiers to tag in the message.
	Mentions []string

	// SMTP, when set, replaces the global relay for this message. Only the
	// email sender consults it.
	SMTP *domain.SMTPOverride
}

// Sender delivers a rendered message over one channel. Implementations treat
// a provider-level rejection (returned in a 200 body) the same as a transport
// failure: a non-nil error.
type Sender interface {
	Channel() domain.Channel
	Deliver(ctx context.Context, d Delivery) error
}
