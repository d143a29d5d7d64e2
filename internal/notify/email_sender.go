package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/iridescentding/memoq-tickets-system/internal/config"
	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// EmailSender delivers messages over SMTP. Each delivery may carry a
// company-level relay override; otherwise the global relay is used.
type EmailSender struct {
	global config.SMTPConfig
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{global: cfg}
}

func (s *EmailSender) Channel() domain.Channel {
	return domain.ChannelEmail
}

func (s *EmailSender) Deliver(ctx context.Context, d Delivery) error {
	host := s.global.Host
	port := s.global.Port
	username := s.global.Username
	password := s.global.Password
	fromAddr := s.global.FromAddress
	fromName := s.global.FromName
	if d.SMTP != nil {
		host = d.SMTP.Host
		port = d.SMTP.Port
		username = d.SMTP.Username
		password = d.SMTP.Password
		if d.SMTP.FromAddress != "" {
			fromAddr = d.SMTP.FromAddress
		}
		if d.SMTP.FromName != "" {
			fromName = d.SMTP.FromName
		}
	}
	if host == "" {
		return fmt.Errorf("smtp relay not configured")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", fromAddr, fromName)
	msg.SetHeader("To", d.Recipient)
	msg.SetHeader("Subject", d.Subject)
	msg.SetBody("text/html", d.Body)

	dialer := gomail.NewDialer(host, port, username, password)

	// gomail has no context support; bound the attempt ourselves.
	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", d.Recipient, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", d.Recipient, ctx.Err())
	}
}
