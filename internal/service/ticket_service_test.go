package service

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/events"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type mockTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64
	updated int
}

func newMockTicketRepo(tickets ...*domain.Ticket) *mockTicketRepo {
	m := &mockTicketRepo{tickets: map[int64]*domain.Ticket{}, nextID: 100}
	for _, t := range tickets {
		m.tickets[t.ID] = t
	}
	return m
}

func (m *mockTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.nextID++
	ticket.ID = m.nextID
	ticket.CreatedAt = fixedNow
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *mockTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	m.updated++
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *mockTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTicketRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTicketRepo) GetBySlug(_ context.Context, slug string) (*domain.Ticket, error) {
	for _, t := range m.tickets {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockTicketRepo) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) ListPendingAssignment(context.Context, int) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) ListApproachingIR(context.Context, time.Time, time.Duration, int) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) ListMissedIR(context.Context, time.Time, int) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) ListApproachingResolution(context.Context, time.Time, time.Duration, int) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) ListMissedResolution(context.Context, time.Time, int) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) ListIdle(context.Context, time.Time, int) ([]domain.Ticket, error) {
	return nil, nil
}

type mockStatusHistoryRepo struct {
	entries   []domain.StatusHistory
	lastPause *domain.StatusHistory
}

func (m *mockStatusHistoryRepo) Create(_ context.Context, entry *domain.StatusHistory) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockStatusHistoryRepo) ListByTicket(context.Context, int64) ([]domain.StatusHistory, error) {
	return m.entries, nil
}

func (m *mockStatusHistoryRepo) LastPauseEntry(context.Context, int64) (*domain.StatusHistory, error) {
	return m.lastPause, nil
}

type mockTransferHistoryRepo struct {
	entries []domain.TransferHistory
}

func (m *mockTransferHistoryRepo) Create(_ context.Context, entry *domain.TransferHistory) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockTransferHistoryRepo) ListByTicket(context.Context, int64) ([]domain.TransferHistory, error) {
	return m.entries, nil
}

type mockReplyRepo struct {
	replies []domain.Reply
}

func (m *mockReplyRepo) Create(_ context.Context, reply *domain.Reply) error {
	reply.ID = int64(len(m.replies) + 1)
	m.replies = append(m.replies, *reply)
	return nil
}

func (m *mockReplyRepo) ListByTicket(context.Context, int64) ([]domain.Reply, error) {
	return m.replies, nil
}

type mockRatingRepo struct {
	existing *domain.SatisfactionRating
	created  []domain.SatisfactionRating
}

func (m *mockRatingRepo) Create(_ context.Context, rating *domain.SatisfactionRating) error {
	rating.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *rating)
	return nil
}

func (m *mockRatingRepo) GetByTicket(context.Context, int64) (*domain.SatisfactionRating, error) {
	return m.existing, nil
}

type mockUserRepo struct {
	users map[int64]*domain.User
}

func (m *mockUserRepo) Create(context.Context, *domain.User) error { return nil }

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

type mockSLACompanyRepo struct {
	company *domain.Company
	slaCfg  *domain.SLAConfig
}

func (m *mockSLACompanyRepo) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	if m.company == nil || m.company.ID != id {
		return nil, pgx.ErrNoRows
	}
	return m.company, nil
}

func (m *mockSLACompanyRepo) GetSLAConfig(context.Context, int64) (*domain.SLAConfig, error) {
	return m.slaCfg, nil
}

func (m *mockSLACompanyRepo) GetChannelConfig(context.Context, int64, domain.Channel) (*domain.ChannelConfig, error) {
	return nil, nil
}

type mockTicketTypeRepo struct {
	types       map[int64]*domain.TicketType
	hasChildren bool
}

func (m *mockTicketTypeRepo) GetByID(_ context.Context, id int64) (*domain.TicketType, error) {
	tt, ok := m.types[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tt, nil
}

func (m *mockTicketTypeRepo) HasChildren(context.Context, int64) (bool, error) {
	return m.hasChildren, nil
}

func (m *mockTicketTypeRepo) ListChildren(context.Context, *int64) ([]domain.TicketType, error) {
	return nil, nil
}

// passthroughTx runs the closure directly, no transaction semantics.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(domain.EventType, events.Handler) {}

type ticketFixture struct {
	tickets   *mockTicketRepo
	status    *mockStatusHistoryRepo
	transfers *mockTransferHistoryRepo
	replies   *mockReplyRepo
	ratings   *mockRatingRepo
	users     *mockUserRepo
	companies *mockSLACompanyRepo
	types     *mockTicketTypeRepo
	bus       *recordingDispatcher
	svc       *TicketService
}

func newTicketFixture(tickets ...*domain.Ticket) *ticketFixture {
	f := &ticketFixture{
		tickets:   newMockTicketRepo(tickets...),
		status:    &mockStatusHistoryRepo{},
		transfers: &mockTransferHistoryRepo{},
		replies:   &mockReplyRepo{},
		ratings:   &mockRatingRepo{},
		users:     &mockUserRepo{users: map[int64]*domain.User{}},
		companies: &mockSLACompanyRepo{company: &domain.Company{ID: 3, Name: "Acme", IsActive: true}},
		types:     &mockTicketTypeRepo{types: map[int64]*domain.TicketType{}},
		bus:       &recordingDispatcher{},
	}
	f.svc = NewTicketService(
		f.tickets, f.status, f.transfers, f.replies, f.ratings,
		f.users, f.companies, f.types, passthroughTx{}, f.bus, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func customer(id int64) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleCustomer, CompanyID: ptr(int64(3)), IsActive: true}
}

func supportUser(id int64) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleSupport, IsActive: true}
}

func adminUser(id int64) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleTechnicalSupportAdmin, IsActive: true}
}

func openTicket(id int64) *domain.Ticket {
	return &domain.Ticket{
		ID:             id,
		Slug:           "TK-20260301-abcdef01",
		Title:          "printer on fire",
		CompanyID:      3,
		CreatedByID:    ptr(int64(1)),
		SubmittedByID:  ptr(int64(1)),
		Status:         domain.StatusNewIssue,
		Priority:       3,
		Urgency:        2,
		LastActivityAt: fixedNow.Add(-time.Hour),
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	require.NotNil(t, domainErr)
	return domainErr.Code
}

func TestCreateComputesDeadlinesFromSLA(t *testing.T) {
	f := newTicketFixture()
	f.companies.slaCfg = &domain.SLAConfig{
		CompanyID:         3,
		ResponseMinutes:   ptr(240),
		ResolutionMinutes: ptr(2880),
		PriorityLevel:     2,
	}

	ticket, err := f.svc.Create(context.Background(), customer(1), CreateTicketInput{
		Title:   "vpn down",
		Urgency: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNewIssue, ticket.Status)
	assert.Equal(t, 2, ticket.Priority)
	require.NotNil(t, ticket.IRDeadline)
	require.NotNil(t, ticket.ResolutionDeadline)
	assert.Equal(t, fixedNow.Add(4*time.Hour), *ticket.IRDeadline)
	assert.Equal(t, fixedNow.Add(48*time.Hour), *ticket.ResolutionDeadline)
	assert.Regexp(t, `^TK-\d{8}-[0-9a-f]{8}$`, ticket.Slug)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, domain.EventTicketCreated, f.bus.published[0].Type)
	assert.Equal(t, ticket.ID, f.bus.published[0].TicketID)
}

func TestCreateWithoutSLAConfigLeavesDeadlinesNull(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.svc.Create(context.Background(), customer(1), CreateTicketInput{
		Title:   "no contract",
		Urgency: 3,
	})
	require.NoError(t, err)

	assert.Nil(t, ticket.IRDeadline)
	assert.Nil(t, ticket.ResolutionDeadline)
	assert.Equal(t, 3, ticket.Priority)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateTicketInput
	}{
		{"missing title", CreateTicketInput{Urgency: 2}},
		{"urgency too low", CreateTicketInput{Title: "x", Urgency: 0}},
		{"urgency too high", CreateTicketInput{Title: "x", Urgency: 5}},
		{"unknown contact method", CreateTicketInput{Title: "x", Urgency: 2, ContactMethod: "pigeon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTicketFixture()
			_, err := f.svc.Create(context.Background(), customer(1), tt.input)
			assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
		})
	}
}

func TestCreateCustomerIsScopedToOwnCompany(t *testing.T) {
	f := newTicketFixture()

	// An explicit company_id from a customer is ignored.
	ticket, err := f.svc.Create(context.Background(), customer(1), CreateTicketInput{
		Title:     "scoped",
		Urgency:   2,
		CompanyID: ptr(int64(99)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), ticket.CompanyID)
}

func TestCreateStaffRequiresExplicitCompany(t *testing.T) {
	f := newTicketFixture()

	_, err := f.svc.Create(context.Background(), supportUser(8), CreateTicketInput{
		Title:   "on behalf",
		Urgency: 2,
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestCreateRejectsInactiveCompany(t *testing.T) {
	f := newTicketFixture()
	f.companies.company.IsActive = false

	_, err := f.svc.Create(context.Background(), customer(1), CreateTicketInput{
		Title:   "late",
		Urgency: 2,
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestCreateRejectsNonLeafTicketType(t *testing.T) {
	f := newTicketFixture()
	f.types.types[5] = &domain.TicketType{ID: 5, Name: "hardware", IsActive: true}
	f.types.hasChildren = true

	_, err := f.svc.Create(context.Background(), customer(1), CreateTicketInput{
		Title:        "typed",
		Urgency:      2,
		TicketTypeID: ptr(int64(5)),
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestAssignAutoMovesNewTicket(t *testing.T) {
	f := newTicketFixture(openTicket(10))
	f.users.users[8] = supportUser(8)

	ticket, err := f.svc.Assign(context.Background(), adminUser(2), 10, 8)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInProgress, ticket.Status)
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, int64(8), *ticket.AssignedToID)

	require.Len(t, f.status.entries, 1)
	assert.Equal(t, domain.StatusNewIssue, f.status.entries[0].OldStatus)
	assert.Equal(t, domain.StatusInProgress, f.status.entries[0].NewStatus)

	require.Len(t, f.transfers.entries, 1)
	assert.Equal(t, "assignment", f.transfers.entries[0].Reason)
	assert.Nil(t, f.transfers.entries[0].FromUserID)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, domain.EventTicketAssigned, f.bus.published[0].Type)
	payload := f.bus.published[0].Payload.(events.AssignedPayload)
	assert.True(t, payload.AutoMoved)
}

func TestAssignKeepsStatusWhenAlreadyWorked(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusCustomerFollowUp
	tk.AssignedToID = ptr(int64(7))
	f := newTicketFixture(tk)
	f.users.users[8] = supportUser(8)

	ticket, err := f.svc.Assign(context.Background(), adminUser(2), 10, 8)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCustomerFollowUp, ticket.Status)
	assert.Empty(t, f.status.entries)
	require.Len(t, f.transfers.entries, 1)
	require.NotNil(t, f.transfers.entries[0].FromUserID)
	assert.Equal(t, int64(7), *f.transfers.entries[0].FromUserID)
}

func TestAssignSameUserIsSilentNoOp(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	tk.AssignedToID = ptr(int64(8))
	f := newTicketFixture(tk)
	f.users.users[8] = supportUser(8)

	_, err := f.svc.Assign(context.Background(), adminUser(2), 10, 8)
	require.NoError(t, err)

	assert.Empty(t, f.status.entries)
	assert.Empty(t, f.transfers.entries)
	assert.Empty(t, f.bus.published)
}

func TestAssignAuthz(t *testing.T) {
	f := newTicketFixture(openTicket(10))
	f.users.users[1] = customer(1)
	f.users.users[8] = supportUser(8)

	_, err := f.svc.Assign(context.Background(), supportUser(8), 10, 8)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = f.svc.Assign(context.Background(), adminUser(2), 10, 1)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestTransferRecordsHistoryAndEvent(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	tk.AssignedToID = ptr(int64(8))
	f := newTicketFixture(tk)
	f.users.users[9] = supportUser(9)

	ticket, err := f.svc.Transfer(context.Background(), supportUser(8), 10, 9, "going on leave")
	require.NoError(t, err)

	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, int64(9), *ticket.AssignedToID)
	require.Len(t, f.transfers.entries, 1)
	assert.Equal(t, "going on leave", f.transfers.entries[0].Reason)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, domain.EventTicketTransferred, f.bus.published[0].Type)
}

func TestTransferRejections(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	tk.AssignedToID = ptr(int64(8))

	t.Run("missing reason", func(t *testing.T) {
		f := newTicketFixture(tk)
		_, err := f.svc.Transfer(context.Background(), supportUser(8), 10, 9, "")
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("same target", func(t *testing.T) {
		f := newTicketFixture(tk)
		f.users.users[8] = supportUser(8)
		_, err := f.svc.Transfer(context.Background(), supportUser(8), 10, 8, "re-route")
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("non-assignee support", func(t *testing.T) {
		f := newTicketFixture(tk)
		f.users.users[9] = supportUser(9)
		_, err := f.svc.Transfer(context.Background(), supportUser(7), 10, 9, "grabbing it")
		assert.Equal(t, "FORBIDDEN", errCode(t, err))
	})

	t.Run("admin overrides assignee check", func(t *testing.T) {
		f := newTicketFixture(tk)
		f.users.users[9] = supportUser(9)
		_, err := f.svc.Transfer(context.Background(), adminUser(2), 10, 9, "rebalancing")
		assert.NoError(t, err)
	})
}

func TestAddReplyCustomerMovesWaitingToFollowUp(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusWaitingForCustomer
	f := newTicketFixture(tk)

	_, err := f.svc.AddReply(context.Background(), customer(1), 10, AddReplyInput{Content: "still broken"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCustomerFollowUp, tk.Status)
	require.NotNil(t, tk.LastCustomerReplyAt)
	assert.Equal(t, fixedNow, *tk.LastCustomerReplyAt)
	require.Len(t, f.status.entries, 1)
	assert.Equal(t, domain.StatusWaitingForCustomer, f.status.entries[0].OldStatus)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, domain.EventTicketRepliedByCustomer, f.bus.published[0].Type)
}

func TestAddReplyCustomerOnTerminalRejected(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusClosed
	f := newTicketFixture(tk)

	_, err := f.svc.AddReply(context.Background(), customer(1), 10, AddReplyInput{Content: "reopen please"})
	assert.Equal(t, "CONFLICT", errCode(t, err))
	assert.Empty(t, f.replies.replies)
}

func TestAddReplySupportOnTerminalAllowed(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusResolved
	f := newTicketFixture(tk)

	_, err := f.svc.AddReply(context.Background(), supportUser(8), 10, AddReplyInput{Content: "root cause was DNS"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, tk.Status)
}

func TestAddReplyFirstSupportReplyStopsResponseClock(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	f := newTicketFixture(tk)

	_, err := f.svc.AddReply(context.Background(), supportUser(8), 10, AddReplyInput{Content: "looking into it"})
	require.NoError(t, err)
	require.NotNil(t, tk.FirstRepliedAt)
	assert.Equal(t, fixedNow, *tk.FirstRepliedAt)

	// A later reply does not move the first-response timestamp.
	first := *tk.FirstRepliedAt
	f.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_, err = f.svc.AddReply(context.Background(), supportUser(8), 10, AddReplyInput{Content: "found it"})
	require.NoError(t, err)
	assert.Equal(t, first, *tk.FirstRepliedAt)
}

func TestAddReplyInternalNoteStopsResponseClockWithoutNotifying(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	f := newTicketFixture(tk)

	_, err := f.svc.AddReply(context.Background(), supportUser(8), 10, AddReplyInput{Content: "escalate to L2", IsInternal: true})
	require.NoError(t, err)

	// An internal note is still a support reply for SLA purposes, it just
	// never reaches the customer.
	require.NotNil(t, tk.FirstRepliedAt)
	assert.Equal(t, fixedNow, *tk.FirstRepliedAt)
	require.NotNil(t, tk.LastSupportReplyAt)
	assert.Equal(t, fixedNow, *tk.LastSupportReplyAt)
	assert.Empty(t, f.bus.published)
}

func TestAddReplyCustomerCannotPostInternal(t *testing.T) {
	f := newTicketFixture(openTicket(10))
	_, err := f.svc.AddReply(context.Background(), customer(1), 10, AddReplyInput{Content: "hi", IsInternal: true})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestPauseWritesHistoryAndFields(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	f := newTicketFixture(tk)

	ticket, err := f.svc.Pause(context.Background(), supportUser(8), 10, "waiting for vendor")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaused, ticket.Status)
	require.NotNil(t, ticket.PausedAt)
	require.NotNil(t, ticket.PauseReason)
	assert.Equal(t, "waiting for vendor", *ticket.PauseReason)

	require.Len(t, f.status.entries, 1)
	assert.Equal(t, domain.StatusInProgress, f.status.entries[0].OldStatus)
	assert.Equal(t, domain.StatusPaused, f.status.entries[0].NewStatus)
	require.NotNil(t, f.status.entries[0].Reason)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, domain.EventTicketPaused, f.bus.published[0].Type)
}

func TestPauseRejections(t *testing.T) {
	t.Run("missing reason", func(t *testing.T) {
		f := newTicketFixture(openTicket(10))
		_, err := f.svc.Pause(context.Background(), supportUser(8), 10, "")
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("already paused", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusPaused
		f := newTicketFixture(tk)
		_, err := f.svc.Pause(context.Background(), supportUser(8), 10, "again")
		assert.Equal(t, "CONFLICT", errCode(t, err))
	})

	t.Run("terminal", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusClosed
		f := newTicketFixture(tk)
		_, err := f.svc.Pause(context.Background(), supportUser(8), 10, "too late")
		assert.Equal(t, "CONFLICT", errCode(t, err))
	})

	t.Run("unrelated customer", func(t *testing.T) {
		tk := openTicket(10)
		f := newTicketFixture(tk)
		_, err := f.svc.Pause(context.Background(), customer(99), 10, "not mine")
		assert.Equal(t, "FORBIDDEN", errCode(t, err))
	})
}

func TestResumeRestoresStatusFromPauseHistory(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusPaused
	tk.PausedAt = ptr(fixedNow.Add(-time.Hour))
	tk.PauseReason = ptr("vendor")
	tk.AssignedToID = ptr(int64(8))
	f := newTicketFixture(tk)
	f.status.lastPause = &domain.StatusHistory{
		TicketID:  10,
		OldStatus: domain.StatusWaitingForCustomer,
		NewStatus: domain.StatusPaused,
	}

	ticket, err := f.svc.Resume(context.Background(), supportUser(8), 10)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusWaitingForCustomer, ticket.Status)
	assert.Nil(t, ticket.PausedAt)
	assert.Nil(t, ticket.PauseReason)

	require.Len(t, f.bus.published, 1)
	payload := f.bus.published[0].Payload.(events.StatusChangedPayload)
	assert.Equal(t, domain.StatusPaused, payload.OldStatus)
	assert.Equal(t, domain.StatusWaitingForCustomer, payload.NewStatus)
}

func TestResumeFallbackWithoutPauseHistory(t *testing.T) {
	t.Run("assigned goes in_progress", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusPaused
		tk.AssignedToID = ptr(int64(8))
		f := newTicketFixture(tk)

		ticket, err := f.svc.Resume(context.Background(), supportUser(8), 10)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, ticket.Status)
	})

	t.Run("unassigned goes pending_assignment", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusPaused
		f := newTicketFixture(tk)

		ticket, err := f.svc.Resume(context.Background(), supportUser(8), 10)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingAssignment, ticket.Status)
	})
}

func TestResumeRequiresPausedTicket(t *testing.T) {
	f := newTicketFixture(openTicket(10))
	_, err := f.svc.Resume(context.Background(), supportUser(8), 10)
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestChangeStatusResolveAndClose(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress
	f := newTicketFixture(tk)

	ticket, err := f.svc.ChangeStatus(context.Background(), supportUser(8), 10, ChangeStatusInput{
		NewStatus: domain.StatusResolved,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, fixedNow, *ticket.ResolvedAt)

	ticket, err = f.svc.ChangeStatus(context.Background(), supportUser(8), 10, ChangeStatusInput{
		NewStatus:           domain.StatusClosed,
		ClosingReasonType:   ptr(domain.ClosingCustomerCompleted),
		ClosingReasonDetail: ptr("confirmed by phone"),
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.ClosedAt)
	require.NotNil(t, ticket.ClosingReasonType)
	assert.Equal(t, domain.ClosingCustomerCompleted, *ticket.ClosingReasonType)

	assert.Len(t, f.status.entries, 2)
	assert.Len(t, f.bus.published, 2)
}

func TestChangeStatusRejections(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusInProgress

	t.Run("paused not reachable directly", func(t *testing.T) {
		f := newTicketFixture(tk)
		_, err := f.svc.ChangeStatus(context.Background(), supportUser(8), 10, ChangeStatusInput{
			NewStatus: domain.StatusPaused,
		})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("same status", func(t *testing.T) {
		f := newTicketFixture(tk)
		_, err := f.svc.ChangeStatus(context.Background(), supportUser(8), 10, ChangeStatusInput{
			NewStatus: domain.StatusInProgress,
		})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("customer forbidden", func(t *testing.T) {
		f := newTicketFixture(tk)
		_, err := f.svc.ChangeStatus(context.Background(), customer(1), 10, ChangeStatusInput{
			NewStatus: domain.StatusResolved,
		})
		assert.Equal(t, "FORBIDDEN", errCode(t, err))
	})
}

func TestRateHappyPath(t *testing.T) {
	tk := openTicket(10)
	tk.Status = domain.StatusResolved
	f := newTicketFixture(tk)

	rating, err := f.svc.Rate(context.Background(), customer(1), 10, 5, ptr("quick fix"))
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Rating)
	require.Len(t, f.ratings.created, 1)

	require.Len(t, f.bus.published, 1)
	assert.Equal(t, domain.EventTicketRated, f.bus.published[0].Type)
	payload := f.bus.published[0].Payload.(events.RatedPayload)
	assert.Equal(t, "quick fix", payload.Comment)
}

func TestRateRejections(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		f := newTicketFixture()
		_, err := f.svc.Rate(context.Background(), customer(1), 10, 0, nil)
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
		_, err = f.svc.Rate(context.Background(), customer(1), 10, 6, nil)
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("not the creator", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusClosed
		f := newTicketFixture(tk)
		_, err := f.svc.Rate(context.Background(), customer(42), 10, 4, nil)
		assert.Equal(t, "FORBIDDEN", errCode(t, err))
	})

	t.Run("not terminal", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusInProgress
		f := newTicketFixture(tk)
		_, err := f.svc.Rate(context.Background(), customer(1), 10, 4, nil)
		assert.Equal(t, "CONFLICT", errCode(t, err))
	})

	t.Run("already rated", func(t *testing.T) {
		tk := openTicket(10)
		tk.Status = domain.StatusClosed
		f := newTicketFixture(tk)
		f.ratings.existing = &domain.SatisfactionRating{ID: 1, TicketID: 10, Rating: 3}
		_, err := f.svc.Rate(context.Background(), customer(1), 10, 4, nil)
		assert.Equal(t, "CONFLICT", errCode(t, err))
		assert.Empty(t, f.ratings.created)
		assert.Empty(t, f.bus.published)
	})
}

func TestRepliesFiltersInternalForCustomers(t *testing.T) {
	f := newTicketFixture(openTicket(10))
	f.replies.replies = []domain.Reply{
		{ID: 1, TicketID: 10, Content: "public answer"},
		{ID: 2, TicketID: 10, Content: "internal note", IsInternal: true},
		{ID: 3, TicketID: 10, Content: "follow-up"},
	}

	all, err := f.svc.Replies(context.Background(), supportUser(8), 10)
	require.NoError(t, err)
	require.Len(t, all, 3)

	visible, err := f.svc.Replies(context.Background(), customer(1), 10)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, int64(1), visible[0].ID)
	assert.Equal(t, int64(3), visible[1].ID)
}

func TestGetByIDEnforcesCompanyScope(t *testing.T) {
	f := newTicketFixture(openTicket(10))

	outsider := &domain.User{ID: 50, Role: domain.RoleCustomer, CompanyID: ptr(int64(7))}
	_, err := f.svc.GetByID(context.Background(), outsider, 10)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = f.svc.GetByID(context.Background(), customer(1), 10)
	assert.NoError(t, err)
}

func TestGetByIDAllowsCrossCompanyFollower(t *testing.T) {
	tk := openTicket(10)
	tk.FollowerIDs = []int64{50}
	f := newTicketFixture(tk)

	follower := &domain.User{ID: 50, Role: domain.RoleCustomer, CompanyID: ptr(int64(7))}
	_, err := f.svc.GetByID(context.Background(), follower, 10)
	assert.NoError(t, err)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newTicketFixture()
	_, err := f.svc.GetByID(context.Background(), supportUser(8), 999)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestPreviewTruncatesOnRuneBoundary(t *testing.T) {
	cases := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"short ascii untouched", "hello", 120, "hello"},
		{"ascii cut at limit", "abcdef", 3, "abc"},
		{"han text never split mid-rune", "无法登录系统", 8, "无法"},
		{"limit on exact boundary", "无法登录", 6, "无法"},
		{"limit smaller than one rune", "无", 2, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := preview(tc.content, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
