package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/session"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *recorder) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		switch rec.body["Email"] {
		case "user@example.com":
			http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "r1", HttpOnly: true})
			writeJSON(w, http.StatusOK, `{"token":"tok-1","user":{"id":1,"customerId":42,"email":"user@example.com","role":"Customer"}}`)
		case "notoken@example.com":
			writeJSON(w, http.StatusOK, `{"message":"ok"}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
		}
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"Id":1,"Email":"user@example.com","Customer":{"Id":42},"Roles":["Admin"]}`)
	})

	return NewAuthService(newTestAPI(t, mux)), rec
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, " user@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, int64(42), *result.User.CustomerID)
	require.Len(t, result.Cookies, 1)
	assert.Equal(t, "refresh", result.Cookies[0].Name)

	_, err = svc.Login(ctx, "bad@example.com", "nope")
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode(err))

	_, err = svc.Login(ctx, "notoken@example.com", "x")
	assert.ErrorIs(t, err, ErrNoTokenIssued)

	_, err = svc.Login(ctx, "", "x")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthService_LoadUser(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	user, err := svc.LoadUser(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), *user.CustomerID)
	assert.True(t, user.HasRole(model.RoleAdmin))

	_, err = svc.LoadUser(ctx, "other")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthService_Logout(t *testing.T) {
	svc, rec := setupAuthServiceTest(t)

	require.NoError(t, svc.Logout(context.Background(), ""))
	assert.Empty(t, rec.calls)

	require.NoError(t, svc.Logout(context.Background(), "tok-1"))
	assert.Equal(t, []string{"POST /api/auth/logout"}, rec.calls)
}

func TestCurrentCustomerID(t *testing.T) {
	svc, rec := setupAuthServiceTest(t)
	manager := session.NewManager(session.NewMemoryStore(), svc.LoadUser, time.Minute)
	ctx := context.Background()

	id, err := CurrentCustomerID(ctx, manager.ForToken("tok-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = CurrentCustomerID(ctx, manager.ForToken("tok-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Len(t, rec.calls, 1, "second lookup is served from the cache")

	_, err = CurrentCustomerID(ctx, manager.ForToken(""))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = CurrentCustomerID(ctx, manager.ForToken("other"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCurrentCustomerID_RefreshesOnceWithoutCustomer(t *testing.T) {
	calls := 0
	loader := func(ctx context.Context, token string) (*model.User, error) {
		calls++
		return &model.User{ID: 1}, nil
	}
	manager := session.NewManager(session.NewMemoryStore(), loader, time.Minute)

	_, err := CurrentCustomerID(context.Background(), manager.ForToken("t"))
	assert.ErrorIs(t, err, ErrCustomerUnknown)
	assert.Equal(t, 2, calls)
}
