package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/device-cost-service/internal/auth"
	"github.com/spec-kit/device-cost-service/internal/config"
	"github.com/spec-kit/device-cost-service/internal/events"
	"github.com/spec-kit/device-cost-service/internal/localstore"
	"github.com/spec-kit/device-cost-service/internal/repository"
	apperrors "github.com/spec-kit/device-cost-service/pkg/util/errorutil"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *localstore.Store
	users    repository.UserRepository
	products repository.ProductRepository
	sessions *auth.SessionStore
	events   *recordedEvents
	auth     *AuthService
	product  *ProductService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := localstore.New(localstore.Options{Primary: localstore.NewMemoryTier("memory")})
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recordedEvents{}
	for _, et := range []events.EventType{
		events.EventProductAdded, events.EventProductUpdated,
		events.EventProductDeleted, events.EventLifespanAdvisory,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	f := &fixture{
		store:    store,
		users:    repository.NewLocalUserRepository(store),
		products: repository.NewLocalProductRepository(store),
		sessions: auth.NewSessionStore(store),
		events:   rec,
	}
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost}}
	f.auth = NewAuthService(cfg, AuthDependencies{UserRepo: f.users, Sessions: f.sessions})
	f.product = NewProductService(ProductDependencies{
		ProductRepo: f.products,
		Dispatcher:  dispatcher,
		Clock:       func() time.Time { return fixedNow },
	})
	return f
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, code, de.Code, de.Message)
	return de
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }
