package service

import (
	"context"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// NotificationAdminService serves the read-side of the notification system:
// template inventory and the delivery audit trail.
type NotificationAdminService struct {
	templates repository.TemplateRepository
	logs      repository.NotificationLogRepository
	tickets   repository.TicketRepository
}

func NewNotificationAdminService(
	templates repository.TemplateRepository,
	logs repository.NotificationLogRepository,
	tickets repository.TicketRepository,
) *NotificationAdminService {
	return &NotificationAdminService{templates: templates, logs: logs, tickets: tickets}
}

// ListTemplates returns templates for a company, or global ones when
// companyID is nil.
func (s *NotificationAdminService) ListTemplates(ctx context.Context, actor *domain.User, companyID *int64) ([]domain.NotificationTemplate, error) {
	if !actor.Role.AdminCapable() {
		return nil, util.NewForbidden("admin role required")
	}
	templates, err := s.templates.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return templates, nil
}

// LogsByTicket returns the delivery audit rows for one ticket.
func (s *NotificationAdminService) LogsByTicket(ctx context.Context, actor *domain.User, ticketID int64, limit, offset int) ([]domain.NotificationLog, error) {
	if !actor.Role.SupportCapable() {
		return nil, util.NewForbidden("staff role required")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, util.MapError(err)
	}
	logs, err := s.logs.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return logs, nil
}
