package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/api/dto"
	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/domain"
	"github.com/iridescentding/memoq-tickets-system/internal/service"
	"github.com/iridescentding/memoq-tickets-system/pkg/util"
)

// UsersHandler manages authentication and account endpoints.
type UsersHandler struct {
	service *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{service: authService}
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponse(result.User),
	}})
}

// Register POST /auth/register. Customer self-signup; staff accounts require
// an authenticated admin.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	actor := auth.CurrentUser(c)
	user, err := h.service.Register(c.UserContext(), actor, service.RegisterInput{
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		Role:               domain.Role(req.Role),
		CompanyID:          req.CompanyID,
		Phone:              req.Phone,
		FeishuID:           req.FeishuID,
		EnterpriseWechatID: req.EnterpriseWechatID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// Me GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return util.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CompanyID: u.CompanyID,
	}
}
