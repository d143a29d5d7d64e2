package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// TemplateRepository reads notification templates.
type TemplateRepository interface {
	ListActiveByEvent(ctx context.Context, eventType domain.EventType) ([]domain.NotificationTemplate, error)
	ListByCompany(ctx context.Context, companyID *int64) ([]domain.NotificationTemplate, error)
}

const templateColumns = `id, name, company_id, event_type, channel, is_active, subject_template, body_template, created_at, updated_at`

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository instantiates the repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) ListActiveByEvent(ctx context.Context, eventType domain.EventType) ([]domain.NotificationTemplate, error) {
	const query = `
        SELECT ` + templateColumns + `
        FROM notification_templates WHERE event_type=$1 AND is_active
        ORDER BY company_id NULLS LAST, id ASC`
	return r.list(ctx, query, eventType)
}

func (r *templateRepository) ListByCompany(ctx context.Context, companyID *int64) ([]domain.NotificationTemplate, error) {
	if companyID == nil {
		const query = `
        SELECT ` + templateColumns + `
        FROM notification_templates WHERE company_id IS NULL ORDER BY event_type, channel`
		return r.list(ctx, query)
	}
	const query = `
        SELECT ` + templateColumns + `
        FROM notification_templates WHERE company_id=$1 ORDER BY event_type, channel`
	return r.list(ctx, query, *companyID)
}

func (r *templateRepository) list(ctx context.Context, query string, args ...any) ([]domain.NotificationTemplate, error) {
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationTemplate
	for rows.Next() {
		var tpl domain.NotificationTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.CompanyID, &tpl.EventType, &tpl.Channel,
			&tpl.IsActive, &tpl.SubjectTemplate, &tpl.BodyTemplate, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}
