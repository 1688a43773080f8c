package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/repository"
	apperrors "github.com/spec-kit/missing-persons-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. SessionToken is empty when
// the caller authenticated with a bearer token.
type Principal struct {
	User         *domain.User
	SessionToken string
}

// AuthMiddleware resolves session cookies or bearer tokens into principals.
type AuthMiddleware struct {
	sessions *SessionManager
	tokens   *TokenManager
	users    repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionManager, tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	userID, sessionToken, err := m.identify(c)
	if err != nil {
		return err
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, SessionToken: sessionToken})
	return c.Next()
}

func (m *AuthMiddleware) identify(c *fiber.Ctx) (int, string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return 0, "", apperrors.NewUnauthorized("invalid authorization header")
		}
		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			return 0, "", apperrors.NewUnauthorized("invalid token")
		}
		return claims.UserID, "", nil
	}

	token, ok := m.sessions.TokenFromRequest(c)
	if !ok {
		return 0, "", apperrors.NewUnauthorized("authentication required")
	}
	userID, err := m.sessions.Resolve(c.Context(), token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrSessionExpired) {
			return 0, "", apperrors.NewUnauthorized("session invalid or expired")
		}
		return 0, "", apperrors.MapError(err)
	}
	return userID, token, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
