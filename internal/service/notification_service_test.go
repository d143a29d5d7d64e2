package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/events"
	"github.com/iridescentding/memoq-tickets-system/internal/worker"
)

type captureQueue struct {
	tasks []worker.Task
	full  bool
}

func (q *captureQueue) Enqueue(task worker.Task) bool {
	if q.full {
		return false
	}
	q.tasks = append(q.tasks, task)
	return true
}

func newNotificationFixture(ticket *domain.Ticket, users ...*domain.User) (*NotificationService, *captureQueue) {
	userRepo := &mockUserRepo{users: map[int64]*domain.User{}}
	for _, u := range users {
		userRepo.users[u.ID] = u
	}
	queue := &captureQueue{}
	svc := NewNotificationService(
		newMockTicketRepo(ticket),
		userRepo,
		&mockSLACompanyRepo{company: &domain.Company{ID: 3, Name: "Acme", IsActive: true}},
		queue,
		zap.NewNop(),
		"https://support.example.com",
	)
	return svc, queue
}

func TestHandleSnapshotsTicketState(t *testing.T) {
	tk := openTicket(10)
	creator := customer(1)
	svc, queue := newNotificationFixture(tk, creator)

	err := svc.Handle(context.Background(), events.Event{
		ID:        "e1",
		Type:      domain.EventTicketCreated,
		TicketID:  10,
		CompanyID: 3,
		ActorID:   ptr(int64(1)),
	})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	task := queue.tasks[0]
	assert.Equal(t, domain.EventTicketCreated, task.EventType)
	require.NotNil(t, task.Context.Ticket)
	assert.Equal(t, int64(10), task.Context.Ticket.ID)
	assert.Equal(t, "https://support.example.com/tickets/"+tk.Slug, task.Context.TicketURL)
	assert.Equal(t, "ticket_created", task.Context.Extra["EventType"])
	require.NotNil(t, task.Context.Actor)
	assert.Equal(t, int64(1), task.Context.Actor.ID)

	// Creation fans out to operator channels, not a specific user.
	assert.Nil(t, task.Context.TargetUser)
	assert.Nil(t, task.Context.MentionUser)
}

func TestHandleRoutesAssigneeEvents(t *testing.T) {
	tk := openTicket(10)
	tk.AssignedToID = ptr(int64(8))
	assignee := supportUser(8)
	svc, queue := newNotificationFixture(tk, assignee)

	err := svc.Handle(context.Background(), events.Event{
		ID: "e1", Type: domain.EventTicketRepliedByCustomer, TicketID: 10, CompanyID: 3,
	})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	require.NotNil(t, queue.tasks[0].Context.TargetUser)
	assert.Equal(t, int64(8), queue.tasks[0].Context.TargetUser.ID)
	assert.Equal(t, queue.tasks[0].Context.TargetUser, queue.tasks[0].Context.MentionUser)
}

func TestHandleRoutesCreatorEvents(t *testing.T) {
	tk := openTicket(10)
	creator := customer(1)
	svc, queue := newNotificationFixture(tk, creator)

	err := svc.Handle(context.Background(), events.Event{
		ID: "e1", Type: domain.EventTicketRepliedBySupport, TicketID: 10, CompanyID: 3,
	})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	require.NotNil(t, queue.tasks[0].Context.TargetUser)
	assert.Equal(t, int64(1), queue.tasks[0].Context.TargetUser.ID)
}

func TestHandleSkipsDeactivatedRecipients(t *testing.T) {
	tk := openTicket(10)
	gone := customer(1)
	gone.IsActive = false
	svc, queue := newNotificationFixture(tk, gone)

	err := svc.Handle(context.Background(), events.Event{
		ID: "e1", Type: domain.EventTicketPaused, TicketID: 10, CompanyID: 3,
	})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	assert.Nil(t, queue.tasks[0].Context.TargetUser)
}

func TestHandleMissingTicketDoesNotEnqueueOrFail(t *testing.T) {
	svc, queue := newNotificationFixture(openTicket(10))

	err := svc.Handle(context.Background(), events.Event{
		ID: "e1", Type: domain.EventTicketCreated, TicketID: 404, CompanyID: 3,
	})
	require.NoError(t, err)
	assert.Empty(t, queue.tasks)
}

func TestRegisterSubscribesAllEventTypes(t *testing.T) {
	svc, _ := newNotificationFixture(openTicket(10))

	bus := &subscriberCountingDispatcher{subscriptions: map[domain.EventType]int{}}
	svc.Register(bus)

	assert.Len(t, bus.subscriptions, len(subscribedEvents))
	for _, eventType := range subscribedEvents {
		assert.Equal(t, 1, bus.subscriptions[eventType], string(eventType))
	}
}

type subscriberCountingDispatcher struct {
	subscriptions map[domain.EventType]int
}

func (d *subscriberCountingDispatcher) Publish(context.Context, events.Event) error { return nil }

func (d *subscriberCountingDispatcher) Subscribe(eventType domain.EventType, _ events.Handler) {
	d.subscriptions[eventType]++
}
