package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// RatingRepository persists satisfaction ratings, at most one per ticket.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.SatisfactionRating) error
	GetByTicket(ctx context.Context, ticketID int64) (*domain.SatisfactionRating, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository instantiates the repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.SatisfactionRating) error {
	const query = `
        INSERT INTO ticket_satisfaction_ratings (ticket_id, rated_by, rating, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return queryTarget(ctx, r.pool).QueryRow(ctx, query,
		rating.TicketID,
		rating.RatedByID,
		rating.Rating,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)
}

// GetByTicket returns nil when the ticket has no rating yet.
func (r *ratingRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.SatisfactionRating, error) {
	const query = `
        SELECT id, ticket_id, rated_by, rating, comment, created_at
        FROM ticket_satisfaction_ratings WHERE ticket_id=$1`
	var rating domain.SatisfactionRating
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&rating.ID, &rating.TicketID, &rating.RatedByID,
		&rating.Rating, &rating.Comment, &rating.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
