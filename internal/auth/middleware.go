package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

const userLocalKey = "current_user"

// Middleware authenticates requests via bearer tokens and stashes the loaded
// user in fiber locals. Deleted or deactivated accounts are rejected even
// when their token is still valid.
func Middleware(tokens *TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return util.NewUnauthorized("missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return util.NewUnauthorized("invalid or expired token")
		}
		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			return util.NewUnauthorized("unknown account")
		}
		if user.IsDeleted || !user.IsActive {
			return util.NewUnauthorized("account is disabled")
		}
		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user for the request, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userLocalKey).(*domain.User)
	return user
}

// RequireSupportCapable allows only staff roles past this point.
func RequireSupportCapable() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.Role.SupportCapable() {
			return util.NewForbidden("staff role required")
		}
		return c.Next()
	}
}

// RequireAdminCapable allows only admin roles past this point.
func RequireAdminCapable() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.Role.AdminCapable() {
			return util.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
