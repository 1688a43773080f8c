package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/missing-persons-service/internal/config"
	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/repository"
)

// ErrSessionExpired reports a known-but-expired session token.
var ErrSessionExpired = errors.New("session expired")

const sessionCachePrefix = "session:"

// SessionManager maintains login sessions: rows in the session store,
// referenced by an opaque token carried in an HMAC-signed cookie. An optional
// Redis client acts as a read-through cache on the resolve path so the hot
// per-request lookup usually skips the database.
type SessionManager struct {
	sessions repository.SessionRepository
	cache    *redis.Client
	codec    *securecookie.SecureCookie
	cfg      config.AuthConfig
}

// NewSessionManager constructs the manager. cache may be nil.
func NewSessionManager(cfg config.AuthConfig, sessions repository.SessionRepository, cache *redis.Client) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		cache:    cache,
		codec:    securecookie.New([]byte(cfg.CookieHashKey), nil),
		cfg:      cfg,
	}
}

// Issue opens a new session for the user.
func (m *SessionManager) Issue(ctx context.Context, userID int) (*domain.Session, error) {
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.cfg.SessionTTL()),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	m.cacheSet(ctx, session)
	return session, nil
}

// Resolve maps a session token to its user id. Expired sessions are deleted
// eagerly and reported as ErrSessionExpired.
func (m *SessionManager) Resolve(ctx context.Context, token string) (int, error) {
	if userID, ok := m.cacheGet(ctx, token); ok {
		return userID, nil
	}

	session, err := m.sessions.GetByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	if session.Expired(time.Now()) {
		_ = m.sessions.Delete(ctx, token)
		return 0, ErrSessionExpired
	}
	m.cacheSet(ctx, session)
	return session.UserID, nil
}

// Destroy removes the session from the store and the cache.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if m.cache != nil {
		_ = m.cache.Del(ctx, sessionCachePrefix+token).Err()
	}
	return m.sessions.Delete(ctx, token)
}

// WriteCookie sets the signed session cookie on the response.
func (m *SessionManager) WriteCookie(c *fiber.Ctx, session *domain.Session) error {
	encoded, err := m.codec.Encode(m.cfg.CookieName, session.Token)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// ClearCookie expires the session cookie on the response.
func (m *SessionManager) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// TokenFromRequest extracts and verifies the session token from the request
// cookie. Returns false when no valid cookie is present.
func (m *SessionManager) TokenFromRequest(c *fiber.Ctx) (string, bool) {
	raw := c.Cookies(m.cfg.CookieName)
	if raw == "" {
		return "", false
	}
	var token string
	if err := m.codec.Decode(m.cfg.CookieName, raw, &token); err != nil {
		return "", false
	}
	return token, true
}

// CookieName returns the configured session cookie name.
func (m *SessionManager) CookieName() string {
	return m.cfg.CookieName
}

func (m *SessionManager) cacheSet(ctx context.Context, session *domain.Session) {
	if m.cache == nil {
		return
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	_ = m.cache.Set(ctx, sessionCachePrefix+session.Token, strconv.Itoa(session.UserID), ttl).Err()
}

func (m *SessionManager) cacheGet(ctx context.Context, token string) (int, bool) {
	if m.cache == nil {
		return 0, false
	}
	val, err := m.cache.Get(ctx, sessionCachePrefix+token).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return userID, true
}
