package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/events"
	"github.com/iridescentding/memoq-tickets-system/internal/notify"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/internal/worker"
)

// TaskQueue accepts notification tasks for asynchronous dispatch.
type TaskQueue interface {
	Enqueue(task worker.Task) bool
}

// NotificationService subscribes to lifecycle events, captures a consistent
// snapshot of ticket/company/user state at trigger time and hands the result
// to the dispatch queue. It never fails the triggering operation.
type NotificationService struct {
	tickets   repository.TicketRepository
	users     repository.UserRepository
	companies repository.CompanyRepository
	queue     TaskQueue
	logger    *zap.Logger

	frontendBaseURL string
}

func NewNotificationService(
	tickets repository.TicketRepository,
	users repository.UserRepository,
	companies repository.CompanyRepository,
	queue TaskQueue,
	logger *zap.Logger,
	frontendBaseURL string,
) *NotificationService {
	return &NotificationService{
		tickets:         tickets,
		users:           users,
		companies:       companies,
		queue:           queue,
		logger:          logger,
		frontendBaseURL: frontendBaseURL,
	}
}

var subscribedEvents = []domain.EventType{
	domain.EventTicketCreated,
	domain.EventTicketStatusChanged,
	domain.EventTicketRepliedBySupport,
	domain.EventTicketRepliedByCustomer,
	domain.EventTicketAssigned,
	domain.EventTicketTransferred,
	domain.EventTicketPaused,
	domain.EventTicketRated,
	domain.EventTicketSLAIRWarning,
	domain.EventTicketSLAIRMissed,
	domain.EventTicketSLAResolutionWarning,
	domain.EventTicketSLAResolutionMissed,
	domain.EventTicketIdleWarning,
}

// Register attaches the service to every notifiable event type.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	for _, eventType := range subscribedEvents {
		dispatcher.Subscribe(eventType, s.Handle)
	}
}

// Handle snapshots state for one event and enqueues the dispatch task.
func (s *NotificationService) Handle(ctx context.Context, event events.Event) error {
	ec, err := s.buildContext(ctx, event)
	if err != nil {
		s.logger.Warn("notification context build failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
		return nil
	}
	s.queue.Enqueue(worker.Task{EventType: event.Type, Context: ec})
	return nil
}

func (s *NotificationService) buildContext(ctx context.Context, event events.Event) (notify.EventContext, error) {
	var ec notify.EventContext

	ticket, err := s.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return ec, fmt.Errorf("load ticket %d: %w", event.TicketID, err)
	}
	company, err := s.companies.GetByID(ctx, event.CompanyID)
	if err != nil {
		return ec, fmt.Errorf("load company %d: %w", event.CompanyID, err)
	}

	ec.Ticket = ticket
	ec.Company = company
	ec.TicketURL = fmt.Sprintf("%s/tickets/%s", s.frontendBaseURL, ticket.Slug)
	ec.Extra = map[string]string{
		"EventType": string(event.Type),
	}

	if event.ActorID != nil {
		if actor, err := s.users.GetByID(ctx, *event.ActorID); err == nil {
			ec.Actor = actor
		}
	}

	target, mention := s.recipients(ctx, event, ticket)
	ec.TargetUser = target
	ec.MentionUser = mention
	return ec, nil
}

// recipients applies per-event recipient rules: who gets the email and who
// gets tagged in group-chat channels.
func (s *NotificationService) recipients(ctx context.Context, event events.Event, ticket *domain.Ticket) (target, mention *domain.User) {
	switch event.Type {
	case domain.EventTicketAssigned, domain.EventTicketTransferred,
		domain.EventTicketRepliedByCustomer, domain.EventTicketRated,
		domain.EventTicketSLAIRWarning, domain.EventTicketSLAIRMissed,
		domain.EventTicketSLAResolutionWarning, domain.EventTicketSLAResolutionMissed,
		domain.EventTicketIdleWarning:
		assignee := s.loadUser(ctx, ticket.AssignedToID)
		return assignee, assignee

	case domain.EventTicketRepliedBySupport, domain.EventTicketStatusChanged,
		domain.EventTicketPaused:
		creator := s.loadUser(ctx, ticket.CreatedByID)
		if creator == nil {
			creator = s.loadUser(ctx, ticket.SubmittedByID)
		}
		return creator, creator

	default:
		// ticket_created fans out to operator channels; email falls back to
		// the default recipient.
		return nil, nil
	}
}

func (s *NotificationService) loadUser(ctx context.Context, id *int64) *domain.User {
	if id == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, *id)
	if err != nil || user.IsDeleted || !user.IsActive {
		return nil
	}
	return user
}
