package domain

import "time"

// SLAConfig is the per-company SLA contract, one-to-one with Company.
// Nil minute values mean the corresponding deadline is not tracked.
type SLAConfig struct {
	CompanyID          int64
	ResponseMinutes    *int
	ResolutionMinutes  *int
	IdleTimeoutMinutes int
	PriorityLevel      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SMTPOverride is a company-specific outgoing mail configuration.
// When absent, the global SMTP settings apply.
type SMTPOverride struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name"`
}

// ChannelConfig is a company's provider configuration for a chat channel.
type ChannelConfig struct {
	ID         int64
	CompanyID  int64
	Channel    Channel
	Enabled    bool
	WebhookURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Company is a tenant submitting tickets.
type Company struct {
	ID            int64
	Name          string
	Code          string
	ContactPerson *string
	ContactEmail  *string
	ContactPhone  *string
	IsActive      bool
	SMTP          *SMTPOverride
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
