package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CompanyID    *int64
	CreatedByID  *int64
	AssignedToID *int64
	Unassigned   bool
	Statuses     []domain.TicketStatus
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence. Read-for-update exists so
// lifecycle transitions serialize per ticket inside a transaction.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListPendingAssignment(ctx context.Context, limit int) ([]domain.Ticket, error)

	ListApproachingIR(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.Ticket, error)
	ListMissedIR(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error)
	ListApproachingResolution(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.Ticket, error)
	ListMissedResolution(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error)
	ListIdle(ctx context.Context, idleSince time.Time, limit int) ([]domain.Ticket, error)
}

const ticketColumns = `id, slug, title, description, company_id, created_by, submitted_by, assigned_to,
       status, priority, urgency, category, subcategory, contact_method, contact_info,
       ticket_type_id, labels, follower_ids,
       created_at, updated_at, last_activity_at, first_replied_at, last_customer_reply_at,
       last_support_reply_at, resolved_at, closed_at, paused_at, pause_reason,
       closing_reason_type, closing_reason_detail, sla_ir_deadline, sla_resolution_deadline`

// Monitoring queries exclude tickets no longer under SLA/idle pressure.
var excludedFromMonitoring = monitoringStatusFilter()

func monitoringStatusFilter() string {
	quoted := make([]string, len(domain.MonitoringExemptStatuses))
	for i, status := range domain.MonitoringExemptStatuses {
		quoted[i] = "'" + string(status) + "'"
	}
	return "status NOT IN (" + strings.Join(quoted, ", ") + ")"
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) db(ctx context.Context) DBTX {
	return queryTarget(ctx, r.pool)
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (slug, title, description, company_id, created_by, submitted_by, assigned_to,
            status, priority, urgency, category, subcategory, contact_method, contact_info,
            ticket_type_id, labels, follower_ids, last_activity_at,
            pause_reason, closing_reason_type, closing_reason_detail,
            sla_ir_deadline, sla_resolution_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		ticket.Slug,
		ticket.Title,
		ticket.Description,
		ticket.CompanyID,
		ticket.CreatedByID,
		ticket.SubmittedByID,
		ticket.AssignedToID,
		ticket.Status,
		ticket.Priority,
		ticket.Urgency,
		ticket.Category,
		ticket.Subcategory,
		ticket.ContactMethod,
		ticket.ContactInfo,
		ticket.TicketTypeID,
		ticket.Labels,
		ticket.FollowerIDs,
		ticket.LastActivityAt,
		ticket.PauseReason,
		ticket.ClosingReasonType,
		ticket.ClosingReasonDetail,
		ticket.IRDeadline,
		ticket.ResolutionDeadline,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, assigned_to=$3, status=$4, priority=$5, urgency=$6,
            category=$7, subcategory=$8, contact_method=$9, contact_info=$10, ticket_type_id=$11,
            labels=$12, follower_ids=$13, last_activity_at=$14, first_replied_at=$15,
            last_customer_reply_at=$16, last_support_reply_at=$17, resolved_at=$18, closed_at=$19,
            paused_at=$20, pause_reason=$21, closing_reason_type=$22, closing_reason_detail=$23,
            updated_at=NOW()
        WHERE id=$24`
	cmd, err := r.db(ctx).Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.AssignedToID,
		ticket.Status,
		ticket.Priority,
		ticket.Urgency,
		ticket.Category,
		ticket.Subcategory,
		ticket.ContactMethod,
		ticket.ContactInfo,
		ticket.TicketTypeID,
		ticket.Labels,
		ticket.FollowerIDs,
		ticket.LastActivityAt,
		ticket.FirstRepliedAt,
		ticket.LastCustomerReplyAt,
		ticket.LastSupportReplyAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.PausedAt,
		ticket.PauseReason,
		ticket.ClosingReasonType,
		ticket.ClosingReasonDetail,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 FOR UPDATE`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetBySlug(ctx context.Context, slug string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE slug=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, slug)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.db(ctx).QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("(created_by=$%d OR submitted_by=$%d)", len(args), len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	} else if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("(assigned_to=$%d OR status='pending_assignment')", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY last_activity_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	return r.list(ctx, query, args...)
}

func (r *ticketRepository) ListPendingAssignment(ctx context.Context, limit int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE status IN ('new_issue', 'pending_assignment')
        ORDER BY created_at ASC LIMIT $1`, ticketColumns)
	return r.list(ctx, query, clampLimit(limit))
}

func (r *ticketRepository) ListApproachingIR(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE %s
          AND first_replied_at IS NULL
          AND sla_ir_deadline IS NOT NULL
          AND sla_ir_deadline > $1 AND sla_ir_deadline <= $2
        ORDER BY sla_ir_deadline ASC LIMIT $3`, ticketColumns, excludedFromMonitoring)
	return r.list(ctx, query, now, now.Add(window), clampLimit(limit))
}

func (r *ticketRepository) ListMissedIR(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE %s
          AND sla_ir_deadline IS NOT NULL
          AND ((first_replied_at IS NULL AND sla_ir_deadline < $1)
            OR (first_replied_at IS NOT NULL AND first_replied_at > sla_ir_deadline))
        ORDER BY sla_ir_deadline ASC LIMIT $2`, ticketColumns, excludedFromMonitoring)
	return r.list(ctx, query, now, clampLimit(limit))
}

func (r *ticketRepository) ListApproachingResolution(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE %s
          AND resolved_at IS NULL
          AND sla_resolution_deadline IS NOT NULL
          AND sla_resolution_deadline > $1 AND sla_resolution_deadline <= $2
        ORDER BY sla_resolution_deadline ASC LIMIT $3`, ticketColumns, excludedFromMonitoring)
	return r.list(ctx, query, now, now.Add(window), clampLimit(limit))
}

func (r *ticketRepository) ListMissedResolution(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE %s
          AND sla_resolution_deadline IS NOT NULL
          AND ((resolved_at IS NULL AND sla_resolution_deadline < $1)
            OR (resolved_at IS NOT NULL AND resolved_at > sla_resolution_deadline))
        ORDER BY sla_resolution_deadline ASC LIMIT $2`, ticketColumns, excludedFromMonitoring)
	return r.list(ctx, query, now, clampLimit(limit))
}

func (r *ticketRepository) ListIdle(ctx context.Context, idleSince time.Time, limit int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE %s AND last_activity_at < $1
        ORDER BY last_activity_at ASC LIMIT $2`, ticketColumns, excludedFromMonitoring)
	return r.list(ctx, query, idleSince, clampLimit(limit))
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Slug,
		&ticket.Title,
		&ticket.Description,
		&ticket.CompanyID,
		&ticket.CreatedByID,
		&ticket.SubmittedByID,
		&ticket.AssignedToID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Urgency,
		&ticket.Category,
		&ticket.Subcategory,
		&ticket.ContactMethod,
		&ticket.ContactInfo,
		&ticket.TicketTypeID,
		&ticket.Labels,
		&ticket.FollowerIDs,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.LastActivityAt,
		&ticket.FirstRepliedAt,
		&ticket.LastCustomerReplyAt,
		&ticket.LastSupportReplyAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.PausedAt,
		&ticket.PauseReason,
		&ticket.ClosingReasonType,
		&ticket.ClosingReasonDetail,
		&ticket.IRDeadline,
		&ticket.ResolutionDeadline,
	)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	return limit
}
