package domain

import "time"

// Role enumerates platform roles.
type Role string

const (
	RoleCustomer              Role = "customer"
	RoleSupport               Role = "support"
	RoleTechnicalSupportAdmin Role = "technical_support_admin"
	RoleSystemAdmin           Role = "system_admin"
)

// SupportCapable reports whether the role may work tickets.
func (r Role) SupportCapable() bool {
	return r == RoleSupport || r == RoleTechnicalSupportAdmin || r == RoleSystemAdmin
}

// AdminCapable reports whether the role may assign tickets and run monitoring.
func (r Role) AdminCapable() bool {
	return r == RoleTechnicalSupportAdmin || r == RoleSystemAdmin
}

// NotificationPrefs holds per-user channel opt-ins.
type NotificationPrefs struct {
	EmailEnabled            bool `json:"email_enabled"`
	FeishuEnabled           bool `json:"feishu_enabled"`
	EnterpriseWechatEnabled bool `json:"enterprise_wechat_enabled"`
}

// User is an account on the platform, customer or support staff.
type User struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string
	Role               Role
	CompanyID          *int64
	Phone              *string
	FeishuID           *string
	EnterpriseWechatID *string
	Prefs              NotificationPrefs
	IsActive           bool
	IsDeleted          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
