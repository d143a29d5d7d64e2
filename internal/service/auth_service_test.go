package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/config"
	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// bcrypt cost 4 keeps the credential tests fast.
const testBcryptCost = 4

type authUserRepo struct {
	byUsername map[string]*domain.User
	created    []*domain.User
}

func (m *authUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = int64(len(m.created) + 1)
	m.created = append(m.created, user)
	return nil
}

func (m *authUserRepo) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *authUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func newAuthFixture(users ...*domain.User) (*AuthService, *authUserRepo) {
	repo := &authUserRepo{byUsername: map[string]*domain.User{}}
	for _, u := range users {
		repo.byUsername[u.Username] = u
	}
	tokens := auth.NewTokenManager(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
	})
	return NewAuthService(repo, tokens, testBcryptCost), repo
}

func activeUser(username, password string) *domain.User {
	hash, err := auth.HashPassword(password, testBcryptCost)
	if err != nil {
		panic(err)
	}
	return &domain.User{
		ID:           1,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         domain.RoleSupport,
		IsActive:     true,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthFixture(activeUser("alice", "s3cret"))

	result, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.False(t, result.ExpiresAt.IsZero())
	assert.Equal(t, "alice", result.User.Username)
}

func TestLoginFailuresAreIndistinct(t *testing.T) {
	disabled := activeUser("bob", "s3cret")
	disabled.IsActive = false
	deleted := activeUser("carol", "s3cret")
	deleted.IsDeleted = true
	svc, _ := newAuthFixture(activeUser("alice", "s3cret"), disabled, deleted)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "mallory", "s3cret"},
		{"wrong password", "alice", "wrong"},
		{"disabled account", "bob", "s3cret"},
		{"deleted account", "carol", "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.username, tt.password)
			assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
			assert.Equal(t, "invalid credentials", err.Error())
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Login(context.Background(), "", "")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestRegisterCustomerSelfSignup(t *testing.T) {
	svc, repo := newAuthFixture()

	user, err := svc.Register(context.Background(), nil, RegisterInput{
		Username:  "newbie",
		Email:     "newbie@example.com",
		Password:  "pw123456",
		Role:      domain.RoleCustomer,
		CompanyID: ptr(int64(3)),
	})
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.NotEqual(t, "pw123456", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "pw123456"))
	assert.True(t, user.Prefs.EmailEnabled)
	assert.True(t, user.Prefs.FeishuEnabled)
	assert.True(t, user.Prefs.EnterpriseWechatEnabled)
	require.Len(t, repo.created, 1)
}

func TestRegisterStaffRequiresAdmin(t *testing.T) {
	svc, _ := newAuthFixture()

	input := RegisterInput{
		Username: "staffer",
		Email:    "staffer@example.com",
		Password: "pw123456",
		Role:     domain.RoleSupport,
	}

	_, err := svc.Register(context.Background(), nil, input)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.Register(context.Background(), supportUser(8), input)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.Register(context.Background(), adminUser(2), input)
	assert.NoError(t, err)
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newAuthFixture(activeUser("alice", "s3cret"))

	t.Run("customer without company", func(t *testing.T) {
		_, err := svc.Register(context.Background(), nil, RegisterInput{
			Username: "solo",
			Email:    "solo@example.com",
			Password: "pw",
			Role:     domain.RoleCustomer,
		})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Register(context.Background(), adminUser(2), RegisterInput{
			Username: "odd",
			Email:    "odd@example.com",
			Password: "pw",
			Role:     "superuser",
		})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("username taken", func(t *testing.T) {
		_, err := svc.Register(context.Background(), nil, RegisterInput{
			Username:  "alice",
			Email:     "alice2@example.com",
			Password:  "pw",
			Role:      domain.RoleCustomer,
			CompanyID: ptr(int64(3)),
		})
		assert.Equal(t, "CONFLICT", errCode(t, err))
	})
}
