package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/api/dto"
	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/internal/service"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), actor, service.CreateTicketInput{
		Title:         req.Title,
		Description:   req.Description,
		CompanyID:     req.CompanyID,
		Urgency:       req.Urgency,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		ContactMethod: domain.ContactMethod(req.ContactMethod),
		ContactInfo:   req.ContactInfo,
		TicketTypeID:  req.TicketTypeID,
		Labels:        req.Labels,
		SubmittedByID: req.SubmittedByID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Get GET /tickets/:id. Numeric IDs and public slugs both resolve.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ref := c.Params("id")

	var (
		ticket *domain.Ticket
		err    error
	)
	if id, parseErr := strconv.ParseInt(ref, 10, 64); parseErr == nil {
		ticket, err = h.service.GetByID(c.UserContext(), actor, id)
	} else {
		ticket, err = h.service.GetBySlug(c.UserContext(), actor, ref)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	filter := parseTicketQuery(c)
	tickets, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// PendingAssignment GET /tickets/pending-assignment.
func (h *TicketsHandler) PendingAssignment(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	limit := c.QueryInt("limit", 50)
	tickets, err := h.service.ListPendingAssignment(c.UserContext(), actor, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), actor, ticketID, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Transfer POST /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.TransferTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Transfer(c.UserContext(), actor, ticketID, req.ToUserID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Reply POST /tickets/:id/replies.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	reply, err := h.service.AddReply(c.UserContext(), actor, ticketID, service.AddReplyInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": replyResponse(reply)})
}

// Replies GET /tickets/:id/replies.
func (h *TicketsHandler) Replies(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	replies, err := h.service.Replies(c.UserContext(), actor, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.ReplyResponse, 0, len(replies))
	for i := range replies {
		items = append(items, replyResponse(&replies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Pause POST /tickets/:id/pause.
func (h *TicketsHandler) Pause(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.PauseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Pause(c.UserContext(), actor, ticketID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Resume POST /tickets/:id/resume.
func (h *TicketsHandler) Resume(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Resume(c.UserContext(), actor, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	input := service.ChangeStatusInput{
		NewStatus: domain.TicketStatus(req.Status),
		Reason:    req.Reason,
	}
	if req.ClosingReasonType != nil {
		reason := domain.ClosingReason(*req.ClosingReasonType)
		input.ClosingReasonType = &reason
	}
	input.ClosingReasonDetail = req.ClosingReasonDetail

	ticket, err := h.service.ChangeStatus(c.UserContext(), actor, ticketID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Rate POST /tickets/:id/rating.
func (h *TicketsHandler) Rate(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.RateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	rating, err := h.service.Rate(c.UserContext(), actor, ticketID, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.RatingResponse{
		ID:        rating.ID,
		TicketID:  rating.TicketID,
		RatedByID: rating.RatedByID,
		Rating:    rating.Rating,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
	}})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	statuses, transfers, err := h.service.History(c.UserContext(), actor, ticketID)
	if err != nil {
		return err
	}

	statusItems := make([]dto.StatusHistoryResponse, 0, len(statuses))
	for _, entry := range statuses {
		statusItems = append(statusItems, dto.StatusHistoryResponse{
			ID:          entry.ID,
			ChangedByID: entry.ChangedByID,
			OldStatus:   string(entry.OldStatus),
			NewStatus:   string(entry.NewStatus),
			Reason:      entry.Reason,
			CreatedAt:   entry.CreatedAt,
		})
	}
	transferItems := make([]dto.TransferHistoryResponse, 0, len(transfers))
	for _, entry := range transfers {
		transferItems = append(transferItems, dto.TransferHistoryResponse{
			ID:              entry.ID,
			TransferredByID: entry.TransferredByID,
			FromUserID:      entry.FromUserID,
			ToUserID:        entry.ToUserID,
			Reason:          entry.Reason,
			CreatedAt:       entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"status_history":   statusItems,
		"transfer_history": transferItems,
	}})
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, util.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(s)))
		}
	}
	if raw := c.Query("company_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CompanyID = &id
		}
	}
	if raw := c.Query("assigned_to"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.AssignedToID = &id
		}
	}
	if c.QueryBool("unassigned", false) {
		filter.Unassigned = true
	}
	if raw := c.Query("q"); raw != "" {
		filter.SearchTerm = &raw
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}
	return filter
}

func ticketSummaries(tickets []domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	now := time.Now().UTC()
	return dto.TicketSummary{
		ID:                 t.ID,
		Slug:               t.Slug,
		Title:              t.Title,
		CompanyID:          t.CompanyID,
		AssignedToID:       t.AssignedToID,
		Status:             t.Status,
		Priority:           t.Priority,
		Urgency:            t.Urgency,
		CreatedAt:          t.CreatedAt,
		LastActivityAt:     t.LastActivityAt,
		IRDeadline:         t.IRDeadline,
		ResolutionDeadline: t.ResolutionDeadline,
		IRSLAMissed:        t.IRSLAMissed(now),
		ResolutionMissed:   t.ResolutionSLAMissed(now),
	}
}

func ticketDetail(t *domain.Ticket) dto.TicketDetail {
	detail := dto.TicketDetail{
		TicketSummary:       ticketSummary(t),
		Description:         t.Description,
		CreatedByID:         t.CreatedByID,
		SubmittedByID:       t.SubmittedByID,
		Category:            t.Category,
		Subcategory:         t.Subcategory,
		ContactMethod:       t.ContactMethod,
		ContactInfo:         t.ContactInfo,
		TicketTypeID:        t.TicketTypeID,
		Labels:              t.Labels,
		FirstRepliedAt:      t.FirstRepliedAt,
		LastCustomerReplyAt: t.LastCustomerReplyAt,
		LastSupportReplyAt:  t.LastSupportReplyAt,
		ResolvedAt:          t.ResolvedAt,
		ClosedAt:            t.ClosedAt,
		PausedAt:            t.PausedAt,
		PauseReason:         t.PauseReason,
		ClosingReasonDetail: t.ClosingReasonDetail,
	}
	if t.ClosingReasonType != nil {
		reason := string(*t.ClosingReasonType)
		detail.ClosingReasonType = &reason
	}
	return detail
}

func replyResponse(r *domain.Reply) dto.ReplyResponse {
	return dto.ReplyResponse{
		ID:         r.ID,
		TicketID:   r.TicketID,
		UserID:     r.UserID,
		Content:    r.Content,
		IsInternal: r.IsInternal,
		CreatedAt:  r.CreatedAt,
	}
}
