package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest payload.
type RegisterRequest struct {
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	Password           string  `json:"password"`
	Role               string  `json:"role"`
	CompanyID          *int64  `json:"company_id"`
	Phone              *string `json:"phone"`
	FeishuID           *string `json:"feishu_id"`
	EnterpriseWechatID *string `json:"enterprise_wechat_id"`
}

// LoginResponse response.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse response.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID *int64 `json:"company_id"`
}
