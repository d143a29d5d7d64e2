package service

import (
	"context"
	"time"

	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// AuthService handles credential checks and token issuance.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues an access token. Failures are
// deliberately indistinct so usernames cannot be probed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, util.NewValidationError("username and password are required", nil)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if user.IsDeleted || !user.IsActive {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterInput carries the fields accepted at account creation.
type RegisterInput struct {
	Username           string
	Email              string
	Password           string
	Role               domain.Role
	CompanyID          *int64
	Phone              *string
	FeishuID           *string
	EnterpriseWechatID *string
}

var validRoles = map[domain.Role]bool{
	domain.RoleCustomer:              true,
	domain.RoleSupport:               true,
	domain.RoleTechnicalSupportAdmin: true,
	domain.RoleSystemAdmin:           true,
}

// Register creates an account. Only admin actors may create staff accounts.
func (s *AuthService) Register(ctx context.Context, actor *domain.User, input RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" || input.Email == "" {
		return nil, util.NewValidationError("username, email and password are required", nil)
	}
	if !validRoles[input.Role] {
		return nil, util.NewValidationError("unknown role", map[string]any{"role": string(input.Role)})
	}
	if input.Role != domain.RoleCustomer && (actor == nil || !actor.Role.AdminCapable()) {
		return nil, util.NewForbidden("only admins may create staff accounts")
	}
	if input.Role == domain.RoleCustomer && input.CompanyID == nil {
		return nil, util.NewValidationError("customer accounts require a company", nil)
	}
	if existing, err := s.users.GetByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, util.NewConflict("username already taken", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	user := &domain.User{
		Username:           input.Username,
		Email:              input.Email,
		PasswordHash:       hash,
		Role:               input.Role,
		CompanyID:          input.CompanyID,
		Phone:              input.Phone,
		FeishuID:           input.FeishuID,
		EnterpriseWechatID: input.EnterpriseWechatID,
		Prefs: domain.NotificationPrefs{
			EmailEnabled:            true,
			FeishuEnabled:           true,
			EnterpriseWechatEnabled: true,
		},
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.NewInternalError(err)
	}
	return user, nil
}
