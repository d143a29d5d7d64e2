package service

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/internal/storage"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// AttachmentService stores uploaded files through the configured backend and
// records their metadata against the ticket.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	backend     storage.Backend
}

func NewAttachmentService(
	attachments repository.AttachmentRepository,
	tickets repository.TicketRepository,
	backend storage.Backend,
) *AttachmentService {
	return &AttachmentService{attachments: attachments, tickets: tickets, backend: backend}
}

// UploadInput carries one incoming file.
type UploadInput struct {
	TicketID  int64
	ReplyID   *int64
	FileName  string
	FileType  string
	SizeBytes int64
	Content   io.Reader
}

// Upload validates, persists and registers one attachment.
func (s *AttachmentService) Upload(ctx context.Context, actor *domain.User, input UploadInput) (*domain.Attachment, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if actor.Role == domain.RoleCustomer {
		if actor.CompanyID == nil || *actor.CompanyID != ticket.CompanyID {
			return nil, util.NewForbidden("ticket belongs to another company")
		}
	}
	if err := s.backend.Validate(input.FileName, input.SizeBytes); err != nil {
		return nil, util.NewValidationError(err.Error(), map[string]any{"file_name": input.FileName})
	}

	key := fmt.Sprintf("tickets/%d/%s%s", ticket.ID, uuid.NewString(), path.Ext(input.FileName))
	if err := s.backend.Save(ctx, key, input.Content); err != nil {
		return nil, util.NewInternalError(err)
	}

	att := &domain.Attachment{
		TicketID:     ticket.ID,
		ReplyID:      input.ReplyID,
		FileName:     input.FileName,
		FileType:     input.FileType,
		SizeBytes:    input.SizeBytes,
		StorageKey:   key,
		UploadedByID: &actor.ID,
	}
	if err := s.attachments.Create(ctx, att); err != nil {
		// Best effort cleanup; the row is the source of truth.
		_ = s.backend.Delete(ctx, key)
		return nil, util.NewInternalError(err)
	}
	return att, nil
}

// URLFor resolves the public URL for a stored attachment.
func (s *AttachmentService) URLFor(att *domain.Attachment) string {
	return s.backend.URLFor(att.StorageKey)
}
