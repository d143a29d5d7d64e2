package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iridescentding/memoq-tickets-system/internal/config"
	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/events"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

const (
	cacheKeyIR         = "monitoring:sla:ir"
	cacheKeyResolution = "monitoring:sla:resolution"
	cacheKeyIdle       = "monitoring:idle"

	// A scan re-alerts on the same ticket only after the suppression key
	// expires.
	alertSuppressionTTL = 6 * time.Hour
)

// SLAReport is one dashboard view: tickets closing in on a deadline and
// tickets already past it.
type SLAReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Window      string          `json:"window"`
	Approaching []domain.Ticket `json:"approaching"`
	Missed      []domain.Ticket `json:"missed"`
}

// IdleReport lists open tickets without recent activity, stalest first.
type IdleReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	IdleSince   time.Time       `json:"idle_since"`
	Tickets     []domain.Ticket `json:"tickets"`
}

// ScanSummary reports how many alerts one monitoring pass produced.
type ScanSummary struct {
	IRWarnings         int `json:"ir_warnings"`
	IRMissed           int `json:"ir_missed"`
	ResolutionWarnings int `json:"resolution_warnings"`
	ResolutionMissed   int `json:"resolution_missed"`
	IdleWarnings       int `json:"idle_warnings"`
}

// MonitoringService serves the SLA/idle dashboard queries with a short-lived
// redis cache and drives alert events on scan passes.
type MonitoringService struct {
	tickets    repository.TicketRepository
	redis      *redis.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.MonitoringConfig

	now func() time.Time
}

func NewMonitoringService(
	tickets repository.TicketRepository,
	redisClient *redis.Client,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	cfg config.MonitoringConfig,
) *MonitoringService {
	return &MonitoringService{
		tickets:    tickets,
		redis:      redisClient,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// IRReport returns tickets approaching or past their initial-response
// deadline.
func (s *MonitoringService) IRReport(ctx context.Context) (*SLAReport, error) {
	if cached := s.fromCache(ctx, cacheKeyIR); cached != nil {
		return cached, nil
	}

	now := s.now()
	window := time.Duration(s.cfg.IRWarningHours) * time.Hour
	approaching, err := s.tickets.ListApproachingIR(ctx, now, window, s.cfg.QueryLimit)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	missed, err := s.tickets.ListMissedIR(ctx, now, s.cfg.QueryLimit)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	report := &SLAReport{
		GeneratedAt: now,
		Window:      window.String(),
		Approaching: approaching,
		Missed:      missed,
	}
	s.toCache(ctx, cacheKeyIR, report)
	return report, nil
}

// ResolutionReport returns tickets approaching or past their resolution
// deadline.
func (s *MonitoringService) ResolutionReport(ctx context.Context) (*SLAReport, error) {
	if cached := s.fromCache(ctx, cacheKeyResolution); cached != nil {
		return cached, nil
	}

	now := s.now()
	window := time.Duration(s.cfg.ResolutionWarningHours) * time.Hour
	approaching, err := s.tickets.ListApproachingResolution(ctx, now, window, s.cfg.QueryLimit)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	missed, err := s.tickets.ListMissedResolution(ctx, now, s.cfg.QueryLimit)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	report := &SLAReport{
		GeneratedAt: now,
		Window:      window.String(),
		Approaching: approaching,
		Missed:      missed,
	}
	s.toCache(ctx, cacheKeyResolution, report)
	return report, nil
}

// Idle returns open tickets without activity past the idle threshold.
func (s *MonitoringService) Idle(ctx context.Context) (*IdleReport, error) {
	now := s.now()
	idleSince := now.Add(-time.Duration(s.cfg.IdleDays) * 24 * time.Hour)

	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, cacheKeyIdle).Bytes(); err == nil {
			var report IdleReport
			if json.Unmarshal(raw, &report) == nil {
				return &report, nil
			}
		}
	}

	tickets, err := s.tickets.ListIdle(ctx, idleSince, s.cfg.QueryLimit)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	report := &IdleReport{GeneratedAt: now, IdleSince: idleSince, Tickets: tickets}
	if s.redis != nil {
		if raw, err := json.Marshal(report); err == nil {
			s.redis.Set(ctx, cacheKeyIdle, raw, s.cfg.CacheTTL())
		}
	}
	return report, nil
}

// Scan runs all monitoring queries once and emits alert events for the
// matching tickets. Meant to be invoked on a timer by an external scheduler
// or through the admin API.
func (s *MonitoringService) Scan(ctx context.Context) (*ScanSummary, error) {
	now := s.now()
	summary := &ScanSummary{}

	irWindow := time.Duration(s.cfg.IRWarningHours) * time.Hour
	resWindow := time.Duration(s.cfg.ResolutionWarningHours) * time.Hour
	idleSince := now.Add(-time.Duration(s.cfg.IdleDays) * 24 * time.Hour)

	passes := []struct {
		eventType domain.EventType
		query     func() ([]domain.Ticket, error)
		count     *int
	}{
		{domain.EventTicketSLAIRWarning, func() ([]domain.Ticket, error) {
			return s.tickets.ListApproachingIR(ctx, now, irWindow, s.cfg.QueryLimit)
		}, &summary.IRWarnings},
		{domain.EventTicketSLAIRMissed, func() ([]domain.Ticket, error) {
			return s.tickets.ListMissedIR(ctx, now, s.cfg.QueryLimit)
		}, &summary.IRMissed},
		{domain.EventTicketSLAResolutionWarning, func() ([]domain.Ticket, error) {
			return s.tickets.ListApproachingResolution(ctx, now, resWindow, s.cfg.QueryLimit)
		}, &summary.ResolutionWarnings},
		{domain.EventTicketSLAResolutionMissed, func() ([]domain.Ticket, error) {
			return s.tickets.ListMissedResolution(ctx, now, s.cfg.QueryLimit)
		}, &summary.ResolutionMissed},
		{domain.EventTicketIdleWarning, func() ([]domain.Ticket, error) {
			return s.tickets.ListIdle(ctx, idleSince, s.cfg.QueryLimit)
		}, &summary.IdleWarnings},
	}

	for _, pass := range passes {
		tickets, err := pass.query()
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		for i := range tickets {
			ticket := &tickets[i]
			// The queries already filter on status, but a row can leave
			// monitoring scope between query and alert.
			if !ticket.Status.UnderMonitoring() {
				continue
			}
			if !s.claimAlert(ctx, pass.eventType, ticket.ID) {
				continue
			}
			s.emitAlert(ctx, pass.eventType, ticket, now)
			*pass.count++
		}
	}
	return summary, nil
}

// claimAlert reports whether this scan owns the alert for (event, ticket).
// Without redis every scan alerts, which is safe but noisy.
func (s *MonitoringService) claimAlert(ctx context.Context, eventType domain.EventType, ticketID int64) bool {
	if s.redis == nil {
		return true
	}
	key := fmt.Sprintf("monitoring:alerted:%s:%d", eventType, ticketID)
	ok, err := s.redis.SetNX(ctx, key, 1, alertSuppressionTTL).Result()
	if err != nil {
		s.logger.Warn("alert suppression check failed", zap.Error(err))
		return true
	}
	return ok
}

func (s *MonitoringService) emitAlert(ctx context.Context, eventType domain.EventType, ticket *domain.Ticket, now time.Time) {
	deadline := ticket.IRDeadline
	switch eventType {
	case domain.EventTicketSLAResolutionWarning, domain.EventTicketSLAResolutionMissed:
		deadline = ticket.ResolutionDeadline
	case domain.EventTicketIdleWarning:
		deadline = nil
	}

	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TicketID:   ticket.ID,
		CompanyID:  ticket.CompanyID,
		OccurredAt: now,
		Payload: events.SLAAlertPayload{
			Deadline:       deadline,
			LastActivityAt: ticket.LastActivityAt,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish monitoring alert failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
	}
}

func (s *MonitoringService) fromCache(ctx context.Context, key string) *SLAReport {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var report SLAReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil
	}
	return &report
}

func (s *MonitoringService) toCache(ctx context.Context, key string, report *SLAReport) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.cfg.CacheTTL()).Err(); err != nil {
		s.logger.Warn("monitoring cache write failed", zap.Error(err))
	}
}
