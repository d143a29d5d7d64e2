package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/api/dto"
	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/service"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// NotificationsHandler exposes template inventory and the delivery audit log.
type NotificationsHandler struct {
	service *service.NotificationAdminService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(adminService *service.NotificationAdminService) *NotificationsHandler {
	return &NotificationsHandler{service: adminService}
}

// ListTemplates GET /notifications/templates.
func (h *NotificationsHandler) ListTemplates(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	var companyID *int64
	if raw := c.Query("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return util.NewValidationError("invalid company_id", nil)
		}
		companyID = &id
	}
	templates, err := h.service.ListTemplates(c.UserContext(), actor, companyID)
	if err != nil {
		return err
	}
	items := make([]dto.TemplateResponse, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, dto.TemplateResponse{
			ID:              tpl.ID,
			Name:            tpl.Name,
			CompanyID:       tpl.CompanyID,
			EventType:       tpl.EventType,
			Channel:         tpl.Channel,
			IsActive:        tpl.IsActive,
			SubjectTemplate: tpl.SubjectTemplate,
			BodyTemplate:    tpl.BodyTemplate,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// LogsByTicket GET /tickets/:id/notifications.
func (h *NotificationsHandler) LogsByTicket(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return util.NewValidationError("invalid ticket id", nil)
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	logs, err := h.service.LogsByTicket(c.UserContext(), actor, ticketID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationLogResponse, 0, len(logs))
	for _, entry := range logs {
		items = append(items, dto.NotificationLogResponse{
			ID:            entry.ID,
			UserID:        entry.UserID,
			CompanyID:     entry.CompanyID,
			TicketID:      entry.TicketID,
			Channel:       entry.Channel,
			RecipientInfo: entry.RecipientInfo,
			Subject:       entry.Subject,
			Status:        string(entry.Status),
			CreatedAt:     entry.CreatedAt,
			SentAt:        entry.SentAt,
			ResponseInfo:  entry.ResponseInfo,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
