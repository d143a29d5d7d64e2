package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// StatusHistoryRepository persists the append-only status audit trail.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistory) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.StatusHistory, error)
	// LastPauseEntry returns the most recent row whose new_status is paused,
	// or nil when the ticket has never been paused. Drives resume targeting.
	LastPauseEntry(ctx context.Context, ticketID int64) (*domain.StatusHistory, error)
}

// TransferHistoryRepository persists the append-only transfer audit trail.
type TransferHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TransferHistory) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TransferHistory, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository instantiates the repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, changed_by, old_status, new_status, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return queryTarget(ctx, r.pool).QueryRow(ctx, query,
		entry.TicketID,
		entry.ChangedByID,
		entry.OldStatus,
		entry.NewStatus,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by, old_status, new_status, reason, created_at
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var entry domain.StatusHistory
		if err := rows.Scan(&entry.ID, &entry.TicketID, &entry.ChangedByID,
			&entry.OldStatus, &entry.NewStatus, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *statusHistoryRepository) LastPauseEntry(ctx context.Context, ticketID int64) (*domain.StatusHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by, old_status, new_status, reason, created_at
        FROM ticket_status_history
        WHERE ticket_id=$1 AND new_status='paused'
        ORDER BY created_at DESC LIMIT 1`
	var entry domain.StatusHistory
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&entry.ID, &entry.TicketID, &entry.ChangedByID,
		&entry.OldStatus, &entry.NewStatus, &entry.Reason, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type transferHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTransferHistoryRepository instantiates the repository.
func NewTransferHistoryRepository(pool *pgxpool.Pool) TransferHistoryRepository {
	return &transferHistoryRepository{pool: pool}
}

func (r *transferHistoryRepository) Create(ctx context.Context, entry *domain.TransferHistory) error {
	const query = `
        INSERT INTO ticket_transfer_history (ticket_id, transferred_by, transferred_from, transferred_to, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return queryTarget(ctx, r.pool).QueryRow(ctx, query,
		entry.TicketID,
		entry.TransferredByID,
		entry.FromUserID,
		entry.ToUserID,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *transferHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TransferHistory, error) {
	const query = `
        SELECT id, ticket_id, transferred_by, transferred_from, transferred_to, reason, created_at
        FROM ticket_transfer_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TransferHistory
	for rows.Next() {
		var entry domain.TransferHistory
		if err := rows.Scan(&entry.ID, &entry.TicketID, &entry.TransferredByID,
			&entry.FromUserID, &entry.ToUserID, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
