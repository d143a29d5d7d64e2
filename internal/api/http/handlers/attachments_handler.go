package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/service"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// AttachmentsHandler manages file uploads on tickets.
type AttachmentsHandler struct {
	service *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService}
}

// Upload POST /tickets/:id/attachments.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return util.NewValidationError("invalid ticket id", nil)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return util.NewValidationError("file field is required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return util.NewInternalError(err)
	}
	defer file.Close()

	input := service.UploadInput{
		TicketID:  ticketID,
		FileName:  header.Filename,
		FileType:  header.Header.Get(fiber.HeaderContentType),
		SizeBytes: header.Size,
		Content:   file,
	}
	if raw := c.FormValue("reply_id"); raw != "" {
		if replyID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			input.ReplyID = &replyID
		}
	}

	att, err := h.service.Upload(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":         att.ID,
		"ticket_id":  att.TicketID,
		"reply_id":   att.ReplyID,
		"file_name":  att.FileName,
		"file_type":  att.FileType,
		"size_bytes": att.SizeBytes,
		"url":        h.service.URLFor(att),
		"created_at": att.CreatedAt,
	}})
}
