package session

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"golang.org/x/sync/singleflight"
)

var ErrNoToken = errors.New("no session token")

// Revocations of tokens without a readable exp claim last this long.
const defaultRevokeTTL = 24 * time.Hour

// Loader fetches the current user for a token from the storefront API.
type Loader func(ctx context.Context, token string) (*model.User, error)

// Manager hands out per-session UserCache handles that share one store and
// one single-flight group keyed by session.
type Manager struct {
	store  Store
	loader Loader
	ttl    time.Duration
	group  singleflight.Group
	now    func() time.Time
}

func NewManager(store Store, loader Loader, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{
		store:  store,
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
	}
}

// ForToken returns the cache handle of one session.
func (m *Manager) ForToken(token string) *UserCache {
	return &UserCache{manager: m, token: token, key: Key(token)}
}

// UserCache memoizes the signed-in user of a single session.
type UserCache struct {
	manager *Manager
	token   string
	key     string
}

func (c *UserCache) Token() string {
	return c.token
}

// Get returns the cached user, loading it on a miss or when forceRefresh is
// set. Concurrent loads for the same session share one upstream call. Store
// failures degrade to a plain load.
func (c *UserCache) Get(ctx context.Context, forceRefresh bool) (*model.User, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	m := c.manager

	if !forceRefresh {
		user, ok, err := m.store.Get(ctx, c.key)
		if err != nil {
			logger.Warn("User cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else if ok {
			return user, nil
		}
	}

	// Detached from the caller's cancellation: other requests of the same
	// session may be waiting on this load.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do(c.key, func() (interface{}, error) {
		user, err := m.loader(loadCtx, c.token)
		if err != nil {
			return nil, err
		}
		if err := c.Set(loadCtx, user); err != nil {
			logger.Warn("User cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	user := *v.(*model.User)
	return &user, nil
}

// Set stores user for this session, expiring no later than the token.
func (c *UserCache) Set(ctx context.Context, user *model.User) error {
	if c.token == "" {
		return ErrNoToken
	}
	ttl := boundTTL(c.token, c.manager.ttl, c.manager.now())
	if ttl <= 0 {
		return c.manager.store.Delete(ctx, c.key)
	}
	return c.manager.store.Set(ctx, c.key, user, ttl)
}

// Revoke forgets the user and refuses the token until it expires.
func (c *UserCache) Revoke(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	if err := c.Clear(ctx); err != nil {
		return err
	}
	ttl := defaultRevokeTTL
	if exp, ok := TokenExpiry(c.token); ok {
		ttl = exp.Sub(c.manager.now())
	}
	if ttl <= 0 {
		return nil
	}
	return c.manager.store.Revoke(ctx, c.key, ttl)
}

// Revoked reports whether the session was logged out.
func (c *UserCache) Revoked(ctx context.Context) (bool, error) {
	if c.token == "" {
		return false, nil
	}
	return c.manager.store.Revoked(ctx, c.key)
}

// Clear forgets this session's user.
func (c *UserCache) Clear(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	c.manager.group.Forget(c.key)
	return c.manager.store.Delete(ctx, c.key)
}
