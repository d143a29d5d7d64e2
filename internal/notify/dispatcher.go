package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/observability"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
)

// Dispatcher resolves templates for an event, renders them and drives each
// delivery through its channel sender, recording an audit row per attempt.
// Delivery failures are terminal for the attempt: they are logged, never
// propagated back to the caller.
type Dispatcher struct {
	templates repository.TemplateRepository
	logs      repository.NotificationLogRepository
	companies repository.CompanyRepository
	senders   map[domain.Channel]Sender
	logger    *zap.Logger
	metrics   *observability.Metrics

	defaultEmailRecipient string
}

func NewDispatcher(
	templates repository.TemplateRepository,
	logs repository.NotificationLogRepository,
	companies repository.CompanyRepository,
	senders []Sender,
	logger *zap.Logger,
	metrics *observability.Metrics,
	defaultEmailRecipient string,
) *Dispatcher {
	byChannel := make(map[domain.Channel]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Dispatcher{
		templates:             templates,
		logs:                  logs,
		companies:             companies,
		senders:               byChannel,
		logger:                logger,
		metrics:               metrics,
		defaultEmailRecipient: defaultEmailRecipient,
	}
}

// Dispatch fans one event out to every resolved template.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType domain.EventType, ec EventContext) {
	candidates, err := d.templates.ListActiveByEvent(ctx, eventType)
	if err != nil {
		d.logger.Error("load notification templates",
			zap.String("event_type", string(eventType)), zap.Error(err))
		return
	}

	var companyID *int64
	if ec.Company != nil {
		companyID = &ec.Company.ID
	}

	for _, tpl := range ResolveTemplates(candidates, companyID) {
		d.dispatchOne(ctx, tpl, ec)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, tpl domain.NotificationTemplate, ec EventContext) {
	log := d.logger.With(
		zap.String("event_type", string(tpl.EventType)),
		zap.String("channel", string(tpl.Channel)),
		zap.Int64("template_id", tpl.ID),
	)

	sender, ok := d.senders[tpl.Channel]
	if !ok {
		log.Warn("no sender registered for channel")
		return
	}

	subject, body, err := Render(tpl, ec)
	if err != nil {
		log.Error("render notification template", zap.Error(err))
		d.metrics.RecordDispatch(string(tpl.Channel), "render_error")
		return
	}

	delivery, userID, skipReason := d.buildDelivery(ctx, tpl.Channel, subject, body, ec)
	if skipReason != "" {
		log.Warn("skipping notification", zap.String("reason", skipReason))
		d.metrics.RecordDispatch(string(tpl.Channel), "skipped")
		return
	}

	entry := &domain.NotificationLog{
		UserID:        userID,
		TicketID:      ec.Ticket.ID,
		Channel:       tpl.Channel,
		RecipientInfo: delivery.Recipient,
		Subject:       subject,
		Status:        domain.NotificationPending,
	}
	if ec.Company != nil {
		entry.CompanyID = &ec.Company.ID
	}
	if err := d.logs.Create(ctx, entry); err != nil {
		log.Error("record notification attempt", zap.Error(err))
		return
	}

	if err := sender.Deliver(ctx, delivery); err != nil {
		log.Warn("notification delivery failed", zap.Error(err))
		d.metrics.RecordDispatch(string(tpl.Channel), "failed")
		if markErr := d.logs.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			log.Error("mark notification failed", zap.Error(markErr))
		}
		return
	}

	d.metrics.RecordDispatch(string(tpl.Channel), "sent")
	if markErr := d.logs.MarkSent(ctx, entry.ID, time.Now().UTC(), "delivered"); markErr != nil {
		log.Error("mark notification sent", zap.Error(markErr))
	}
}

// buildDelivery applies recipient rules per channel. A non-empty skip reason
// means the message has nowhere to go and no audit row is written.
func (d *Dispatcher) buildDelivery(ctx context.Context, channel domain.Channel, subject, body string, ec EventContext) (Delivery, *int64, string) {
	delivery := Delivery{Subject: subject, Body: body}

	switch channel {
	case domain.ChannelEmail:
		if target := ec.TargetUser; target != nil && target.Prefs.EmailEnabled && target.Email != "" {
			delivery.Recipient = target.Email
			if ec.Company != nil {
				delivery.SMTP = ec.Company.SMTP
			}
			return delivery, &target.ID, ""
		}
		if d.defaultEmailRecipient == "" {
			return delivery, nil, "no email recipient"
		}
		delivery.Recipient = d.defaultEmailRecipient
		if ec.Company != nil {
			delivery.SMTP = ec.Company.SMTP
		}
		return delivery, nil, ""

	case domain.ChannelFeishu, domain.ChannelEnterpriseWechat, domain.ChannelWebhook:
		if ec.Company == nil {
			return delivery, nil, "no company for group channel"
		}
		cfg, err := d.companies.GetChannelConfig(ctx, ec.Company.ID, channel)
		if err != nil {
			return delivery, nil, "load channel config: " + err.Error()
		}
		if cfg == nil || !cfg.Enabled || cfg.WebhookURL == "" {
			return delivery, nil, "channel not configured for company"
		}
		delivery.Recipient = cfg.WebhookURL
		delivery.Mentions = mentionIDs(channel, ec.MentionUser)
		return delivery, nil, ""

	default:
		return delivery, nil, "unknown channel"
	}
}

func mentionIDs(channel domain.Channel, user *domain.User) []string {
	if user == nil {
		return nil
	}
	switch channel {
	case domain.ChannelFeishu:
		if user.Prefs.FeishuEnabled && user.FeishuID != nil && *user.FeishuID != "" {
			return []string{*user.FeishuID}
		}
	case domain.ChannelEnterpriseWechat:
		if user.Prefs.EnterpriseWechatEnabled && user.EnterpriseWechatID != nil && *user.EnterpriseWechatID != "" {
			return []string{*user.EnterpriseWechatID}
		}
	}
	return nil
}
