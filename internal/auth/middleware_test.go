package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/localstore"
	"github.com/spec-kit/device-cost-service/internal/repository"
	apperrors "github.com/spec-kit/device-cost-service/pkg/util/errorutil"
)

type authFixture struct {
	app      *fiber.App
	tokens   *TokenManager
	sessions *SessionStore
	users    repository.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := localstore.New(localstore.Options{Primary: localstore.NewMemoryTier("memory")})
	f := &authFixture{
		tokens:   NewTokenManager("secret", 60),
		sessions: NewSessionStore(store),
		users:    repository.NewLocalUserRepository(store),
	}
	require.NoError(t, f.users.Create(context.Background(), &domain.User{ID: "u1", Name: "alice"}))

	f.app = fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Message)
	}})
	mw := NewAuthMiddleware(f.tokens, f.sessions, f.users)
	f.app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(p.User.Name)
	})
	return f
}

func (f *authFixture) login(t *testing.T, userID string) IssuedToken {
	t.Helper()
	issued, err := f.tokens.GenerateToken(userID)
	require.NoError(t, err)
	f.sessions.Save(context.Background(), domain.Session{
		TokenID: issued.TokenID, UserID: userID, IssuedAt: issued.IssuedAt, ExpiresAt: issued.ExpiresAt,
	})
	return issued
}

func (f *authFixture) get(t *testing.T, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	issued := f.login(t, "u1")

	t.Run("valid session", func(t *testing.T) {
		status, body := f.get(t, "Bearer "+issued.Token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "alice", body)
	})

	t.Run("missing header", func(t *testing.T) {
		status, _ := f.get(t, "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		status, _ := f.get(t, "Basic "+issued.Token)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("revoked session", func(t *testing.T) {
		other := f.login(t, "u1")
		require.True(t, f.sessions.Revoke(context.Background(), other.TokenID))
		status, body := f.get(t, "Bearer "+other.Token)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "session expired", body)
	})

	t.Run("user gone", func(t *testing.T) {
		ghost := f.login(t, "ghost")
		status, body := f.get(t, "Bearer "+ghost.Token)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "session expired", body)
		_, ok := f.sessions.Lookup(context.Background(), ghost.TokenID)
		assert.False(t, ok)
	})
}

func TestSessionStore_PrunesExpired(t *testing.T) {
	store := localstore.New(localstore.Options{Primary: localstore.NewMemoryTier("memory")})
	sessions := NewSessionStore(store)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }
	ctx := context.Background()

	sessions.Save(ctx, domain.Session{TokenID: "old", UserID: "u1", ExpiresAt: now.Add(-time.Minute)})
	sessions.Save(ctx, domain.Session{TokenID: "new", UserID: "u1", ExpiresAt: now.Add(time.Hour)})

	_, ok := sessions.Lookup(ctx, "old")
	assert.False(t, ok)
	got, ok := sessions.Lookup(ctx, "new")
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
	assert.Len(t, sessions.sessions.Read(ctx), 1)
	assert.False(t, sessions.Revoke(ctx, "unknown"))
}
