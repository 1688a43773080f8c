package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/missing-persons-service/internal/api/dto"
	"github.com/spec-kit/missing-persons-service/internal/auth"
	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/service"
	apperrors "github.com/spec-kit/missing-persons-service/pkg/util/errorutil"
)

// UsersHandler exposes account and session endpoints. Successful register
// and login set the session cookie and additionally return a bearer token
// for API clients.
type UsersHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionManager
	tokens   *auth.TokenManager
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, sessions *auth.SessionManager, tokens *auth.TokenManager) *UsersHandler {
	return &UsersHandler{auth: authService, sessions: sessions, tokens: tokens}
}

// Register handles POST /api/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	if strings.TrimSpace(req.Username) == "" {
		details["username"] = "required"
	}
	if strings.TrimSpace(req.Password) == "" {
		details["password"] = "required"
	}
	if strings.TrimSpace(req.Email) == "" {
		details["email"] = "required"
	}
	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("username, password, email, name required", details)
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return h.respondWithSession(c, user, fiber.StatusCreated)
}

// Login handles POST /api/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return h.respondWithSession(c, user, fiber.StatusOK)
}

// Logout handles POST /api/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.SessionToken != "" {
		if err := h.sessions.Destroy(c.Context(), principal.SessionToken); err != nil {
			return apperrors.MapError(err)
		}
	}
	h.sessions.ClearCookie(c)
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Me handles GET /api/user.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(userResponse(principal.User))
}

func (h *UsersHandler) respondWithSession(c *fiber.Ctx, user *domain.User, status int) error {
	session, err := h.sessions.Issue(c.Context(), user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := h.sessions.WriteCookie(c, session); err != nil {
		return apperrors.MapError(err)
	}

	token, exp, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.Status(status).JSON(fiber.Map{
		"user": userResponse(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}
