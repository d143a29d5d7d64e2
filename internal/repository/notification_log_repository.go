package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// NotificationLogRepository persists per-attempt delivery records.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *domain.NotificationLog) error
	MarkSent(ctx context.Context, id int64, sentAt time.Time, responseInfo string) error
	MarkFailed(ctx context.Context, id int64, responseInfo string) error
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.NotificationLog, error)
}

type notificationLogRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationLogRepository instantiates the repository.
func NewNotificationLogRepository(pool *pgxpool.Pool) NotificationLogRepository {
	return &notificationLogRepository{pool: pool}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *domain.NotificationLog) error {
	const query = `
        INSERT INTO notification_logs (user_id, company_id, ticket_id, channel, recipient_info, subject, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	if log.Status == "" {
		log.Status = domain.NotificationPending
	}
	return queryTarget(ctx, r.pool).QueryRow(ctx, query,
		log.UserID,
		log.CompanyID,
		log.TicketID,
		log.Channel,
		log.RecipientInfo,
		log.Subject,
		log.Status,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *notificationLogRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time, responseInfo string) error {
	const query = `UPDATE notification_logs SET status='sent', sent_at=$1, response_info=$2 WHERE id=$3 AND status='pending'`
	cmd, err := queryTarget(ctx, r.pool).Exec(ctx, query, sentAt, nullableString(responseInfo), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationLogRepository) MarkFailed(ctx context.Context, id int64, responseInfo string) error {
	const query = `UPDATE notification_logs SET status='failed', response_info=$1 WHERE id=$2 AND status='pending'`
	cmd, err := queryTarget(ctx, r.pool).Exec(ctx, query, nullableString(responseInfo), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationLogRepository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, company_id, ticket_id, channel, recipient_info, subject, status,
               retry_attempts, created_at, sent_at, response_info
        FROM notification_logs WHERE ticket_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationLog
	for rows.Next() {
		var log domain.NotificationLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.CompanyID, &log.TicketID, &log.Channel,
			&log.RecipientInfo, &log.Subject, &log.Status, &log.RetryAttempts,
			&log.CreatedAt, &log.SentAt, &log.ResponseInfo); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
