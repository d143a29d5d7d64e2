package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/events"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/internal/sla"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// TicketService is the lifecycle engine. Every mutating transition runs in a
// transaction that locks the ticket row, writes the entity update together
// with its audit rows, and publishes events only after the commit succeeds.
type TicketService struct {
	tickets         repository.TicketRepository
	statusHistory   repository.StatusHistoryRepository
	transferHistory repository.TransferHistoryRepository
	replies         repository.ReplyRepository
	ratings         repository.RatingRepository
	users           repository.UserRepository
	companies       repository.CompanyRepository
	ticketTypes     repository.TicketTypeRepository
	tx              repository.TxRunner
	dispatcher      events.Dispatcher
	logger          *zap.Logger

	now func() time.Time
}

// NewTicketService wires the lifecycle engine.
func NewTicketService(
	tickets repository.TicketRepository,
	statusHistory repository.StatusHistoryRepository,
	transferHistory repository.TransferHistoryRepository,
	replies repository.ReplyRepository,
	ratings repository.RatingRepository,
	users repository.UserRepository,
	companies repository.CompanyRepository,
	ticketTypes repository.TicketTypeRepository,
	tx repository.TxRunner,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:         tickets,
		statusHistory:   statusHistory,
		transferHistory: transferHistory,
		replies:         replies,
		ratings:         ratings,
		users:           users,
		companies:       companies,
		ticketTypes:     ticketTypes,
		tx:              tx,
		dispatcher:      dispatcher,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// CreateTicketInput carries the fields accepted at ticket creation.
type CreateTicketInput struct {
	Title         string
	Description   string
	CompanyID     *int64
	Urgency       int
	Category      *string
	Subcategory   *string
	ContactMethod domain.ContactMethod
	ContactInfo   *string
	TicketTypeID  *int64
	Labels        []string
	SubmittedByID *int64
}

var validContactMethods = map[domain.ContactMethod]bool{
	domain.ContactEmail:            true,
	domain.ContactWechat:           true,
	domain.ContactEnterpriseWechat: true,
	domain.ContactFeishu:           true,
	domain.ContactPhone:            true,
}

// Create opens a new ticket, snapshots the company SLA into deadlines and
// reports the creation event.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	if input.Title == "" {
		return nil, util.NewValidationError("title is required", nil)
	}
	if input.Urgency < domain.UrgencyMin || input.Urgency > domain.UrgencyMax {
		return nil, util.NewValidationError(
			fmt.Sprintf("urgency must be between %d and %d", domain.UrgencyMin, domain.UrgencyMax),
			map[string]any{"urgency": input.Urgency})
	}
	if input.ContactMethod != "" && !validContactMethods[input.ContactMethod] {
		return nil, util.NewValidationError("unknown contact method",
			map[string]any{"contact_method": string(input.ContactMethod)})
	}

	companyID, err := s.resolveCompany(actor, input.CompanyID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !company.IsActive {
		return nil, util.NewValidationError("company is inactive", nil)
	}

	if input.TicketTypeID != nil {
		if err := s.validateTicketType(ctx, *input.TicketTypeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	priority := 3
	var irDeadline, resolutionDeadline *time.Time
	slaCfg, err := s.companies.GetSLAConfig(ctx, companyID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if slaCfg != nil {
		irDeadline, resolutionDeadline = sla.ComputeDeadlines(now, slaCfg.ResponseMinutes, slaCfg.ResolutionMinutes)
		if slaCfg.PriorityLevel > 0 {
			priority = slaCfg.PriorityLevel
		}
	} else {
		// Missing SLA config degrades: deadlines stay null.
		s.logger.Warn("company has no SLA config, skipping deadlines", zap.Int64("company_id", companyID))
	}

	contactMethod := input.ContactMethod
	if contactMethod == "" {
		contactMethod = domain.ContactEmail
	}
	submittedBy := input.SubmittedByID
	if submittedBy == nil {
		submittedBy = &actor.ID
	}

	ticket := &domain.Ticket{
		Slug:               util.NewTicketSlug(now),
		Title:              input.Title,
		Description:        input.Description,
		CompanyID:          companyID,
		CreatedByID:        &actor.ID,
		SubmittedByID:      submittedBy,
		Status:             domain.StatusNewIssue,
		Priority:           priority,
		Urgency:            input.Urgency,
		Category:           input.Category,
		Subcategory:        input.Subcategory,
		ContactMethod:      contactMethod,
		ContactInfo:        input.ContactInfo,
		TicketTypeID:       input.TicketTypeID,
		Labels:             input.Labels,
		LastActivityAt:     now,
		IRDeadline:         irDeadline,
		ResolutionDeadline: resolutionDeadline,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publish(ctx, domain.EventTicketCreated, ticket, &actor.ID, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Urgency:  ticket.Urgency,
		Priority: ticket.Priority,
		Slug:     ticket.Slug,
		TypeID:   ticket.TicketTypeID,
		Category: ticket.Category,
	})
	return ticket, nil
}

// Assign sets the assignee. Newly filed tickets move to in_progress
// automatically; re-assigning the same user is a no-op.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, assigneeID int64) (*domain.Ticket, error) {
	if !actor.Role.AdminCapable() {
		return nil, util.NewForbidden("only admin roles may assign tickets")
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !assignee.Role.SupportCapable() {
		return nil, util.NewValidationError("assignee is not support-capable",
			map[string]any{"assignee_id": assigneeID})
	}

	var (
		ticket    *domain.Ticket
		autoMoved bool
		changed   bool
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if ticket.AssignedToID != nil && *ticket.AssignedToID == assigneeID {
			return nil
		}
		changed = true

		previous := ticket.AssignedToID
		now := s.now()
		ticket.AssignedToID = &assigneeID
		ticket.LastActivityAt = now

		if ticket.Status == domain.StatusNewIssue || ticket.Status == domain.StatusPendingAssignment {
			if err := s.writeStatus(ctx, ticket, domain.StatusInProgress, &actor.ID, nil); err != nil {
				return err
			}
			autoMoved = true
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return util.NewInternalError(err)
		}
		return s.recordTransfer(ctx, ticket.ID, &actor.ID, previous, &assigneeID, "assignment")
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, domain.EventTicketAssigned, ticket, &actor.ID, events.AssignedPayload{
			AssigneeID: assigneeID,
			AutoMoved:  autoMoved,
		})
	}
	return ticket, nil
}

// Transfer moves the ticket to a different support-capable user. Unlike
// Assign, a no-op transfer is an error and the current assignee may act.
func (s *TicketService) Transfer(ctx context.Context, actor *domain.User, ticketID, toUserID int64, reason string) (*domain.Ticket, error) {
	if !actor.Role.SupportCapable() {
		return nil, util.NewForbidden("only support staff may transfer tickets")
	}
	if reason == "" {
		return nil, util.NewValidationError("transfer reason is required", nil)
	}
	target, err := s.users.GetByID(ctx, toUserID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !target.Role.SupportCapable() {
		return nil, util.NewValidationError("transfer target is not support-capable",
			map[string]any{"to_user_id": toUserID})
	}

	var (
		ticket   *domain.Ticket
		fromUser *int64
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if !actor.Role.AdminCapable() {
			if ticket.AssignedToID == nil || *ticket.AssignedToID != actor.ID {
				return util.NewForbidden("only the current assignee may transfer this ticket")
			}
		}
		if ticket.AssignedToID != nil && *ticket.AssignedToID == toUserID {
			return util.NewValidationError("ticket is already assigned to that user",
				map[string]any{"to_user_id": toUserID})
		}

		fromUser = ticket.AssignedToID
		ticket.AssignedToID = &toUserID
		ticket.LastActivityAt = s.now()
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return util.NewInternalError(err)
		}
		return s.recordTransfer(ctx, ticket.ID, &actor.ID, fromUser, &toUserID, reason)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventTicketTransferred, ticket, &actor.ID, events.TransferredPayload{
		FromUserID: fromUser,
		ToUserID:   toUserID,
		Reason:     reason,
	})
	return ticket, nil
}

// AddReplyInput carries a new reply.
type AddReplyInput struct {
	Content    string
	IsInternal bool
}

// AddReply appends a reply and applies the reply-driven timestamp and status
// rules. The first support reply stops the response-SLA clock.
func (s *TicketService) AddReply(ctx context.Context, actor *domain.User, ticketID int64, input AddReplyInput) (*domain.Reply, error) {
	if input.Content == "" {
		return nil, util.NewValidationError("reply content is required", nil)
	}
	isCustomer := actor.Role == domain.RoleCustomer
	if isCustomer && input.IsInternal {
		return nil, util.NewForbidden("customers may not post internal replies")
	}

	var (
		ticket    *domain.Ticket
		reply     *domain.Reply
		eventType domain.EventType
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if err := s.authorizeTicketAccess(actor, ticket); err != nil {
			return err
		}
		if isCustomer && ticket.Status.Terminal() {
			return util.NewConflict("ticket is closed; open a new ticket instead",
				map[string]any{"status": string(ticket.Status)})
		}

		reply = &domain.Reply{
			TicketID:   ticket.ID,
			UserID:     &actor.ID,
			Content:    input.Content,
			IsInternal: input.IsInternal,
		}
		if err := s.replies.Create(ctx, reply); err != nil {
			return util.NewInternalError(err)
		}

		now := s.now()
		ticket.LastActivityAt = now
		if isCustomer {
			ticket.LastCustomerReplyAt = &now
			eventType = domain.EventTicketRepliedByCustomer
			if ticket.Status == domain.StatusWaitingForCustomer {
				if err := s.writeStatus(ctx, ticket, domain.StatusCustomerFollowUp, &actor.ID, nil); err != nil {
					return err
				}
			}
		} else {
			ticket.LastSupportReplyAt = &now
			eventType = domain.EventTicketRepliedBySupport
			// Any support reply stops the response clock, internal notes included.
			if ticket.FirstRepliedAt == nil {
				ticket.FirstRepliedAt = &now
			}
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return util.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Internal notes stay invisible to customers: no notification fan-out.
	if !input.IsInternal {
		s.publish(ctx, eventType, ticket, &actor.ID, events.ReplyAddedPayload{
			ReplyID:    reply.ID,
			ByRole:     string(actor.Role),
			IsInternal: input.IsInternal,
			Preview:    preview(input.Content, 120),
		})
	}
	return reply, nil
}

// Pause suspends SLA/idle pressure on the ticket. The prior status lands in
// the history row so Resume can restore it.
func (s *TicketService) Pause(ctx context.Context, actor *domain.User, ticketID int64, reason string) (*domain.Ticket, error) {
	if reason == "" {
		return nil, util.NewValidationError("pause reason is required", nil)
	}

	var ticket *domain.Ticket
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if err := s.authorizePauseActor(actor, ticket); err != nil {
			return err
		}
		if ticket.Status == domain.StatusPaused {
			return util.NewConflict("ticket is already paused", nil)
		}
		if ticket.Status.Terminal() {
			return util.NewConflict("terminal tickets cannot be paused",
				map[string]any{"status": string(ticket.Status)})
		}

		now := s.now()
		if err := s.writeStatus(ctx, ticket, domain.StatusPaused, &actor.ID, &reason); err != nil {
			return err
		}
		ticket.PausedAt = &now
		ticket.PauseReason = &reason
		ticket.LastActivityAt = now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return util.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventTicketPaused, ticket, &actor.ID, events.PausedPayload{Reason: reason})
	return ticket, nil
}

// Resume restores the status recorded when the ticket was paused. When no
// pause history exists the target falls back to in_progress or
// pending_assignment depending on assignment.
func (s *TicketService) Resume(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if err := s.authorizePauseActor(actor, ticket); err != nil {
			return err
		}
		if ticket.Status != domain.StatusPaused {
			return util.NewConflict("ticket is not paused",
				map[string]any{"status": string(ticket.Status)})
		}

		target := domain.StatusPendingAssignment
		if ticket.AssignedToID != nil {
			target = domain.StatusInProgress
		}
		entry, err := s.statusHistory.LastPauseEntry(ctx, ticket.ID)
		if err != nil {
			return util.NewInternalError(err)
		}
		if entry != nil {
			target = entry.OldStatus
		}

		now := s.now()
		if err := s.writeStatus(ctx, ticket, target, &actor.ID, nil); err != nil {
			return err
		}
		ticket.PausedAt = nil
		ticket.PauseReason = nil
		ticket.LastActivityAt = now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return util.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventTicketStatusChanged, ticket, &actor.ID, events.StatusChangedPayload{
		OldStatus: domain.StatusPaused,
		NewStatus: ticket.Status,
	})
	return ticket, nil
}

// ChangeStatusInput carries a generic status write, e.g. resolve or close.
type ChangeStatusInput struct {
	NewStatus           domain.TicketStatus
	Reason              *string
	ClosingReasonType   *domain.ClosingReason
	ClosingReasonDetail *string
}

var validStatuses = map[domain.TicketStatus]bool{
	domain.StatusNewIssue:           true,
	domain.StatusPendingAssignment:  true,
	domain.StatusInProgress:         true,
	domain.StatusWaitingForCustomer: true,
	domain.StatusCustomerFollowUp:   true,
	domain.StatusResolved:           true,
	domain.StatusClosed:             true,
}

// ChangeStatus performs an explicit status write. Pausing goes through Pause
// so the reason requirement holds.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID int64, input ChangeStatusInput) (*domain.Ticket, error) {
	if !actor.Role.SupportCapable() {
		return nil, util.NewForbidden("only support staff may change ticket status")
	}
	if !validStatuses[input.NewStatus] {
		return nil, util.NewValidationError("unknown or disallowed target status",
			map[string]any{"status": string(input.NewStatus)})
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if ticket.Status == input.NewStatus {
			return util.NewValidationError("ticket is already in that status",
				map[string]any{"status": string(input.NewStatus)})
		}

		oldStatus = ticket.Status
		now := s.now()
		if err := s.writeStatus(ctx, ticket, input.NewStatus, &actor.ID, input.Reason); err != nil {
			return err
		}
		switch input.NewStatus {
		case domain.StatusResolved:
			ticket.ResolvedAt = &now
		case domain.StatusClosed:
			ticket.ClosedAt = &now
			ticket.ClosingReasonType = input.ClosingReasonType
			ticket.ClosingReasonDetail = input.ClosingReasonDetail
		}
		ticket.LastActivityAt = now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return util.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var reason string
	if input.Reason != nil {
		reason = *input.Reason
	}
	s.publish(ctx, domain.EventTicketStatusChanged, ticket, &actor.ID, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
		Reason:    reason,
	})
	return ticket, nil
}

// Rate records the single satisfaction rating on a resolved or closed ticket.
func (s *TicketService) Rate(ctx context.Context, actor *domain.User, ticketID int64, rating int, comment *string) (*domain.SatisfactionRating, error) {
	if rating < 1 || rating > 5 {
		return nil, util.NewValidationError("rating must be between 1 and 5",
			map[string]any{"rating": rating})
	}

	var (
		result *domain.SatisfactionRating
		ticket *domain.Ticket
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return util.MapError(err)
		}
		if !isCreatorOrSubmitter(actor.ID, ticket) {
			return util.NewForbidden("only the ticket creator may rate it")
		}
		if !ticket.Status.Terminal() {
			return util.NewConflict("ticket must be resolved or closed before rating",
				map[string]any{"status": string(ticket.Status)})
		}
		existing, err := s.ratings.GetByTicket(ctx, ticket.ID)
		if err != nil {
			return util.NewInternalError(err)
		}
		if existing != nil {
			return util.NewConflict("ticket has already been rated", nil)
		}

		result = &domain.SatisfactionRating{
			TicketID:  ticket.ID,
			RatedByID: &actor.ID,
			Rating:    rating,
			Comment:   comment,
		}
		if err := s.ratings.Create(ctx, result); err != nil {
			return util.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var commentText string
	if comment != nil {
		commentText = *comment
	}
	s.publish(ctx, domain.EventTicketRated, ticket, &actor.ID, events.RatedPayload{
		Rating:  rating,
		Comment: commentText,
	})
	return result, nil
}

// GetByID loads a ticket, enforcing company scoping for customers.
func (s *TicketService) GetByID(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := s.authorizeTicketAccess(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetBySlug loads a ticket by its public slug.
func (s *TicketService) GetBySlug(ctx context.Context, actor *domain.User, slug string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetBySlug(ctx, slug)
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := s.authorizeTicketAccess(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns tickets matching the filter. Customers are always constrained
// to their own company.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if actor.Role == domain.RoleCustomer {
		if actor.CompanyID == nil {
			return nil, util.NewForbidden("customer account has no company")
		}
		filter.CompanyID = actor.CompanyID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return tickets, nil
}

// ListPendingAssignment returns unassigned open tickets for the dispatch
// queue view.
func (s *TicketService) ListPendingAssignment(ctx context.Context, actor *domain.User, limit int) ([]domain.Ticket, error) {
	if !actor.Role.AdminCapable() {
		return nil, util.NewForbidden("only admin roles may view the assignment queue")
	}
	tickets, err := s.tickets.ListPendingAssignment(ctx, limit)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return tickets, nil
}

// Replies returns the ticket conversation; internal notes are filtered out
// for customers.
func (s *TicketService) Replies(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Reply, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := s.authorizeTicketAccess(actor, ticket); err != nil {
		return nil, err
	}
	replies, err := s.replies.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if actor.Role == domain.RoleCustomer {
		visible := replies[:0]
		for _, r := range replies {
			if !r.IsInternal {
				visible = append(visible, r)
			}
		}
		replies = visible
	}
	return replies, nil
}

// History returns both audit trails for a ticket.
func (s *TicketService) History(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.StatusHistory, []domain.TransferHistory, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, util.MapError(err)
	}
	if err := s.authorizeTicketAccess(actor, ticket); err != nil {
		return nil, nil, err
	}
	statuses, err := s.statusHistory.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, util.NewInternalError(err)
	}
	transfers, err := s.transferHistory.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, util.NewInternalError(err)
	}
	return statuses, transfers, nil
}

// writeStatus mutates the in-memory status and appends the audit row within
// the current transaction.
func (s *TicketService) writeStatus(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, actorID *int64, reason *string) error {
	entry := &domain.StatusHistory{
		TicketID:    ticket.ID,
		ChangedByID: actorID,
		OldStatus:   ticket.Status,
		NewStatus:   newStatus,
		Reason:      reason,
	}
	if err := s.statusHistory.Create(ctx, entry); err != nil {
		return util.NewInternalError(err)
	}
	ticket.Status = newStatus
	return nil
}

func (s *TicketService) recordTransfer(ctx context.Context, ticketID int64, byID, fromID, toID *int64, reason string) error {
	entry := &domain.TransferHistory{
		TicketID:        ticketID,
		TransferredByID: byID,
		FromUserID:      fromID,
		ToUserID:        toID,
		Reason:          reason,
	}
	if err := s.transferHistory.Create(ctx, entry); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}

func (s *TicketService) resolveCompany(actor *domain.User, requested *int64) (int64, error) {
	if actor.Role == domain.RoleCustomer {
		if actor.CompanyID == nil {
			return 0, util.NewForbidden("customer account has no company")
		}
		return *actor.CompanyID, nil
	}
	if requested == nil {
		return 0, util.NewValidationError("company_id is required for staff-created tickets", nil)
	}
	return *requested, nil
}

func (s *TicketService) validateTicketType(ctx context.Context, typeID int64) error {
	tt, err := s.ticketTypes.GetByID(ctx, typeID)
	if err != nil {
		return util.MapError(err)
	}
	if !tt.IsActive {
		return util.NewValidationError("ticket type is inactive",
			map[string]any{"ticket_type_id": typeID})
	}
	hasChildren, err := s.ticketTypes.HasChildren(ctx, typeID)
	if err != nil {
		return util.NewInternalError(err)
	}
	if hasChildren {
		return util.NewValidationError("only leaf ticket types are assignable",
			map[string]any{"ticket_type_id": typeID})
	}
	return nil
}

func (s *TicketService) authorizeTicketAccess(actor *domain.User, ticket *domain.Ticket) error {
	if actor.Role.SupportCapable() {
		return nil
	}
	if ticket.IsFollower(actor.ID) {
		return nil
	}
	if actor.CompanyID == nil || *actor.CompanyID != ticket.CompanyID {
		return util.NewForbidden("ticket belongs to another company")
	}
	return nil
}

func (s *TicketService) authorizePauseActor(actor *domain.User, ticket *domain.Ticket) error {
	if actor.Role.SupportCapable() {
		return nil
	}
	if isCreatorOrSubmitter(actor.ID, ticket) {
		return nil
	}
	return util.NewForbidden("only support staff or the ticket creator may pause or resume")
}

func isCreatorOrSubmitter(userID int64, ticket *domain.Ticket) bool {
	if ticket.CreatedByID != nil && *ticket.CreatedByID == userID {
		return true
	}
	return ticket.SubmittedByID != nil && *ticket.SubmittedByID == userID
}

func preview(content string, max int) string {
	if len(content) <= max {
		return content
	}
	// Back up to a rune boundary so multi-byte text is never cut mid-rune.
	for max > 0 && !utf8.RuneStart(content[max]) {
		max--
	}
	return content[:max]
}

func (s *TicketService) publish(ctx context.Context, eventType domain.EventType, ticket *domain.Ticket, actorID *int64, payload any) {
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TicketID:   ticket.ID,
		CompanyID:  ticket.CompanyID,
		ActorID:    actorID,
		OccurredAt: s.now(),
		Payload:    payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish domain event failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
	}
}
