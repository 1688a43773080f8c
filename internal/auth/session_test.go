package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/missing-persons-service/internal/config"
	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/repository/memstore"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionTTLHours: 24,
		CookieName:      "mp_session",
		CookieHashKey:   "0123456789abcdef0123456789abcdef",
	}
}

func newSessionManager(t *testing.T) (*SessionManager, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewSessionManager(testAuthConfig(), store.Sessions(), nil), store
}

func TestSession_IssueAndResolve(t *testing.T) {
	mgr, _ := newSessionManager(t)
	ctx := context.Background()

	session, err := mgr.Issue(ctx, 7)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, 5*time.Second)

	userID, err := mgr.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
}

func TestSession_UnknownTokenNotFound(t *testing.T) {
	mgr, _ := newSessionManager(t)

	_, err := mgr.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestSession_ExpiredResolvedAsExpiredAndDeleted(t *testing.T) {
	mgr, store := newSessionManager(t)
	ctx := context.Background()

	session := &domain.Session{
		Token:     "stale-token",
		UserID:    7,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Sessions().Create(ctx, session))

	_, err := mgr.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Expired rows are removed on first touch.
	_, err = store.Sessions().GetByToken(ctx, session.Token)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestSession_DestroyInvalidatesToken(t *testing.T) {
	mgr, _ := newSessionManager(t)
	ctx := context.Background()

	session, err := mgr.Issue(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, mgr.Destroy(ctx, session.Token))

	_, err = mgr.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
