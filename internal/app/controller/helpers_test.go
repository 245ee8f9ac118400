package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
	"github.com/ikkim/udonggeum-storefront/internal/session"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
	"github.com/stretchr/testify/require"
)

const testCookie = "auth_token"

// storefront is a fake storefront API. Tokens: tok-1 is a customer (42),
// tok-admin an admin without a customer profile.
type storefront struct {
	mux *http.ServeMux

	mu    sync.Mutex
	calls []string
	body  map[string]interface{}
}

func newStorefront() *storefront {
	s := &storefront{mux: http.NewServeMux()}
	s.handle("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer tok-1":
			writeJSON(w, http.StatusOK, `{"Id":1,"Email":"user@example.com","CustomerId":42,"Roles":["Customer"]}`)
		case "Bearer tok-admin":
			writeJSON(w, http.StatusOK, `{"Id":2,"Email":"admin@example.com","Roles":["Admin"]}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
		}
	})
	return s
}

func (s *storefront) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			s.body = nil
			_ = json.Unmarshal(b, &s.body)
		}
		s.mu.Unlock()
		h(w, r)
	})
}

func (s *storefront) called(call string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (s *storefront) lastBody() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type testEnv struct {
	api      *upstream.Client
	auth     service.AuthService
	sessions *session.Manager
	mw       *middleware.AuthMiddleware
	router   *gin.Engine
}

func newTestEnv(t *testing.T, sf *storefront) *testEnv {
	t.Helper()
	srv := httptest.NewServer(sf.mux)
	t.Cleanup(srv.Close)

	api, err := upstream.New(upstream.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)

	authService := service.NewAuthService(api)
	sessions := session.NewManager(session.NewMemoryStore(), authService.LoadUser, time.Minute)

	gin.SetMode(gin.TestMode)
	return &testEnv{
		api:      api,
		auth:     authService,
		sessions: sessions,
		mw:       middleware.NewAuthMiddleware(sessions, testCookie),
		router:   gin.New(),
	}
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
