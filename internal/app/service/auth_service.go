package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ikkim/udonggeum-storefront/internal/app/mapper"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/session"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNoTokenIssued      = errors.New("login answer carried no token")
)

type LoginResult struct {
	Token string
	User  *model.User
	// Cookies the storefront API set on its login answer, relayed as-is.
	Cookies []*http.Cookie
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// LoadUser fetches GET /auth/me; it backs the session user cache.
	LoadUser(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	api *upstream.Client
}

func NewAuthService(api *upstream.Client) AuthService {
	return &authService{api: api}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	logger.Info("Attempting user login", map[string]interface{}{
		"email": email,
	})

	resp, err := s.api.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   mapper.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		logger.Warn("Login rejected", map[string]interface{}{
			"email":  email,
			"status": upstream.StatusCode(err),
		})
		return nil, err
	}

	fields, err := mapper.DecodeObject(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", upstream.ErrMalformedBody, err)
	}
	token, user := mapper.LoginFromRaw(fields)
	if token == "" {
		logger.Error("Login answer carried no token", ErrNoTokenIssued, map[string]interface{}{
			"email": email,
		})
		return nil, ErrNoTokenIssued
	}

	result := &LoginResult{
		Token:   token,
		User:    user,
		Cookies: (&http.Response{Header: resp.Header}).Cookies(),
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"email":         email,
		"user_included": user != nil,
	})
	return result, nil
}

// Logout tells the storefront API the session is over. Failures are logged
// and returned; the caller still drops its own session state.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.api.SendJSON(ctx, http.MethodPost, "/auth/logout", token, nil, nil); err != nil {
		logger.Warn("Upstream logout failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (s *authService) LoadUser(ctx context.Context, token string) (*model.User, error) {
	var raw interface{}
	if err := s.api.GetJSON(ctx, "/auth/me", token, nil, &raw); err != nil {
		if upstream.StatusCode(err) == http.StatusUnauthorized {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	fields, ok := mapper.AsFields(raw)
	if !ok {
		return nil, fmt.Errorf("%w: /auth/me is not an object", upstream.ErrMalformedBody)
	}
	user := mapper.UserFromRaw(fields)
	return &user, nil
}

// CurrentCustomerID resolves the customer behind the session from the cached
// user. A user without a customer id gets one forced refresh before giving up.
func CurrentCustomerID(ctx context.Context, cache *session.UserCache) (int64, error) {
	if cache == nil || cache.Token() == "" {
		return 0, ErrNotAuthenticated
	}

	user, err := cache.Get(ctx, false)
	if err != nil {
		return 0, sessionError(err)
	}
	if user.CustomerID == nil {
		user, err = cache.Get(ctx, true)
		if err != nil {
			return 0, sessionError(err)
		}
	}
	if user.CustomerID == nil || *user.CustomerID <= 0 {
		return 0, ErrCustomerUnknown
	}
	return *user.CustomerID, nil
}

func sessionError(err error) error {
	if errors.Is(err, session.ErrNoToken) {
		return ErrNotAuthenticated
	}
	return err
}
