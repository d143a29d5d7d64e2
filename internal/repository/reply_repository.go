package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// ReplyRepository persists ticket replies.
type ReplyRepository interface {
	Create(ctx context.Context, reply *domain.Reply) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Reply, error)
}

// AttachmentRepository persists attachment references.
type AttachmentRepository interface {
	Create(ctx context.Context, att *domain.Attachment) error
	ListByReply(ctx context.Context, replyID int64) ([]domain.Attachment, error)
}

type replyRepository struct {
	pool *pgxpool.Pool
}

// NewReplyRepository instantiates the repository.
func NewReplyRepository(pool *pgxpool.Pool) ReplyRepository {
	return &replyRepository{pool: pool}
}

func (r *replyRepository) Create(ctx context.Context, reply *domain.Reply) error {
	const query = `
        INSERT INTO ticket_replies (ticket_id, user_id, content, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return queryTarget(ctx, r.pool).QueryRow(ctx, query,
		reply.TicketID,
		reply.UserID,
		reply.Content,
		reply.IsInternal,
	).Scan(&reply.ID, &reply.CreatedAt, &reply.UpdatedAt)
}

func (r *replyRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Reply, error) {
	const query = `
        SELECT id, ticket_id, user_id, content, is_internal, created_at, updated_at
        FROM ticket_replies WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reply
	for rows.Next() {
		var reply domain.Reply
		if err := rows.Scan(&reply.ID, &reply.TicketID, &reply.UserID,
			&reply.Content, &reply.IsInternal, &reply.CreatedAt, &reply.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates the repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, att *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, reply_id, file_name, file_type, size_bytes, storage_key, uploaded_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return queryTarget(ctx, r.pool).QueryRow(ctx, query,
		att.TicketID,
		att.ReplyID,
		att.FileName,
		att.FileType,
		att.SizeBytes,
		att.StorageKey,
		att.UploadedByID,
	).Scan(&att.ID, &att.CreatedAt)
}

func (r *attachmentRepository) ListByReply(ctx context.Context, replyID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, reply_id, file_name, file_type, size_bytes, storage_key, uploaded_by, created_at
        FROM attachments WHERE reply_id=$1 ORDER BY created_at ASC`
	rows, err := queryTarget(ctx, r.pool).Query(ctx, query, replyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(&att.ID, &att.TicketID, &att.ReplyID, &att.FileName,
			&att.FileType, &att.SizeBytes, &att.StorageKey, &att.UploadedByID, &att.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
