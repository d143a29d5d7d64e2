package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// TicketTypeRepository encapsulates the ticket-type tree.
type TicketTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketType, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
	ListChildren(ctx context.Context, parentID *int64) ([]domain.TicketType, error)
}

type ticketTypeRepository struct {
	pool *pgxpool.Pool
}

// NewTicketTypeRepository instantiates the repository.
func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &ticketTypeRepository{pool: pool}
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, id int64) (*domain.TicketType, error) {
	const query = `
        SELECT id, name, description, parent_id, depth, is_active, created_by, created_at, updated_at
        FROM ticket_types WHERE id=$1`
	var tt domain.TicketType
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&tt.ID, &tt.Name, &tt.Description, &tt.ParentID, &tt.Depth,
		&tt.IsActive, &tt.CreatedByID, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *ticketTypeRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM ticket_types WHERE parent_id=$1)`
	var exists bool
	if err := queryTarget(ctx, r.pool).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketTypeRepository) ListChildren(ctx context.Context, parentID *int64) ([]domain.TicketType, error) {
	query := `
        SELECT id, name, description, parent_id, depth, is_active, created_by, created_at, updated_at
        FROM ticket_types WHERE parent_id IS NULL ORDER BY name ASC`
	args := []any{}
	if parentID != nil {
		query = `
        SELECT id, name, description, parent_id, depth, is_active, created_by, created_at, updated_at
        FROM ticket_types WHERE parent_id=$1 ORDER BY name ASC`
		args = append(args, *parentID)
	}

	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.Description, &tt.ParentID, &tt.Depth,
			&tt.IsActive, &tt.CreatedByID, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, tt)
	}
	return result, rows.Err()
}
