package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// CompanyRepository encapsulates company, SLA config and channel config reads.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	// GetSLAConfig returns nil when the company carries no SLA contract.
	GetSLAConfig(ctx context.Context, companyID int64) (*domain.SLAConfig, error)
	// GetChannelConfig returns nil when the channel is not configured.
	GetChannelConfig(ctx context.Context, companyID int64, channel domain.Channel) (*domain.ChannelConfig, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository instantiates the repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	const query = `
        SELECT id, name, code, contact_person, contact_email, contact_phone, is_active, smtp_config, created_at, updated_at
        FROM companies WHERE id=$1`
	var company domain.Company
	var smtpConfig []byte
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Code,
		&company.ContactPerson,
		&company.ContactEmail,
		&company.ContactPhone,
		&company.IsActive,
		&smtpConfig,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(smtpConfig) > 0 {
		var override domain.SMTPOverride
		if err := json.Unmarshal(smtpConfig, &override); err != nil {
			return nil, err
		}
		if override.Host != "" {
			company.SMTP = &override
		}
	}
	return &company, nil
}

func (r *companyRepository) GetSLAConfig(ctx context.Context, companyID int64) (*domain.SLAConfig, error) {
	const query = `
        SELECT company_id, sla_response_minutes, sla_resolution_minutes, idle_timeout_minutes, priority_level, created_at, updated_at
        FROM company_configs WHERE company_id=$1`
	var cfg domain.SLAConfig
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, companyID).Scan(
		&cfg.CompanyID,
		&cfg.ResponseMinutes,
		&cfg.ResolutionMinutes,
		&cfg.IdleTimeoutMinutes,
		&cfg.PriorityLevel,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *companyRepository) GetChannelConfig(ctx context.Context, companyID int64, channel domain.Channel) (*domain.ChannelConfig, error) {
	const query = `
        SELECT id, company_id, channel, is_enabled, webhook_url, created_at, updated_at
        FROM company_channel_configs WHERE company_id=$1 AND channel=$2`
	var cfg domain.ChannelConfig
	err := queryTarget(ctx, r.pool).QueryRow(ctx, query, companyID, channel).Scan(
		&cfg.ID,
		&cfg.CompanyID,
		&cfg.Channel,
		&cfg.Enabled,
		&cfg.WebhookURL,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
