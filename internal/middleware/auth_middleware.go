package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/session"
)

// Context keys for session information
const (
	SessionTokenKey = "session_token"
	UserCacheKey    = "user_cache"
	CurrentUserKey  = "current_user"
)

type AuthMiddleware struct {
	sessions   *session.Manager
	cookieName string
}

func NewAuthMiddleware(sessions *session.Manager, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		cookieName: cookieName,
	}
}

// resolveToken reads the bearer header or session cookie. With allowQuery it
// also reads the "token" query parameter, which browsers need for WebSocket
// upgrades since they cannot set headers there.
func (m *AuthMiddleware) resolveToken(c *gin.Context, allowQuery bool) string {
	if token := session.TokenFromRequest(c.Request, m.cookieName); token != "" {
		return token
	}
	if !allowQuery {
		return ""
	}
	if token := c.Query("token"); token != "" {
		GetLoggerFromContext(c).Debug("Using token from query parameter", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		return token
	}
	return ""
}

// attach stores the session on the context unless it was logged out. A
// failing revocation lookup lets the request through; the storefront API
// still validates the token.
func (m *AuthMiddleware) attach(c *gin.Context, token string) bool {
	cache := m.sessions.ForToken(token)
	revoked, err := cache.Revoked(c.Request.Context())
	if err != nil {
		GetLoggerFromContext(c).Warn("Revocation lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if revoked {
		return false
	}
	c.Set(SessionTokenKey, token)
	c.Set(UserCacheKey, cache)
	return true
}

// Authenticate requires a session token. The storefront API validates it;
// this only makes sure there is one to forward.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return m.authenticate(false)
}

// AuthenticateUpgrade is Authenticate for the WebSocket route, where the
// token may also arrive as ?token=.
func (m *AuthMiddleware) AuthenticateUpgrade() gin.HandlerFunc {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.resolveToken(c, allowQuery)
		if token == "" {
			GetLoggerFromContext(c).Warn("Missing session token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !m.attach(c, token) {
			GetLoggerFromContext(c).Warn("Revoked session token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Your session has ended. Please sign in again")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuthenticate attaches the session when a live token is present and
// continues as a guest otherwise.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := m.resolveToken(c, false); token != "" {
			m.attach(c, token)
		}
		c.Next()
	}
}

// RequireRole loads the session user from the cache and checks its roles.
// Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		cache, ok := GetUserCache(c)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := cache.Get(c.Request.Context(), false)
		if err != nil {
			if stderrors.Is(err, service.ErrNotAuthenticated) {
				errors.Unauthorized(c, "")
			} else {
				log.Error("Failed to load session user", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithUpstreamError(c, err, "load user")
			}
			c.Abort()
			return
		}

		if !user.HasRole(roles...) {
			log.Warn("Insufficient permissions", map[string]interface{}{
				"user_id":        user.ID,
				"user_roles":     user.Roles,
				"required_roles": roles,
				"path":           c.Request.URL.Path,
			})
			errors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// GetToken extracts the session token from context
func GetToken(c *gin.Context) string {
	return c.GetString(SessionTokenKey)
}

// GetUserCache extracts the session's user cache from context
func GetUserCache(c *gin.Context) (*session.UserCache, bool) {
	v, exists := c.Get(UserCacheKey)
	if !exists {
		return nil, false
	}
	cache, ok := v.(*session.UserCache)
	return cache, ok
}

// GetCurrentUser returns the user RequireRole loaded.
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
