package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
	"github.com/ikkim/udonggeum-storefront/internal/session"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

// CookieSettings controls the session cookie written after login.
type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
}

type AuthController struct {
	authService service.AuthService
	sessions    *session.Manager
	cookie      CookieSettings
}

func NewAuthController(authService service.AuthService, sessions *session.Manager, cookie CookieSettings) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		cookie:      cookie,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login signs in against the storefront API and opens a session
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Email and password are required")
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if status := upstream.StatusCode(err); status == http.StatusUnauthorized || status == http.StatusBadRequest {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		respondError(c, err, "login")
		return
	}

	for _, cookie := range result.Cookies {
		http.SetCookie(c.Writer, cookie)
	}
	ctrl.setSessionCookie(c, result.Token)

	if result.User != nil {
		if err := ctrl.sessions.ForToken(result.Token).Set(c.Request.Context(), result.User); err != nil {
			log.Warn("Failed to prime user cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	log.Info("User logged in", map[string]interface{}{
		"email": req.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Logout ends the session. The upstream call is best effort; the token is
// revoked locally either way.
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if token := middleware.GetToken(c); token != "" {
		if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
			log.Warn("Upstream logout failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if cache, ok := middleware.GetUserCache(c); ok {
		if err := cache.Revoke(c.Request.Context()); err != nil {
			log.Warn("Failed to revoke session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	ctrl.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the signed-in user, from cache unless refresh=true
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	cache, ok := middleware.GetUserCache(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	user, err := cache.Get(c.Request.Context(), refresh)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to load session user", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(c, err, "load user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ctrl *AuthController) setSessionCookie(c *gin.Context, token string) {
	cookie := &http.Cookie{
		Name:     ctrl.cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   ctrl.cookie.Domain,
		Secure:   ctrl.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if exp, ok := session.TokenExpiry(token); ok {
		cookie.Expires = exp
		cookie.MaxAge = int(time.Until(exp).Seconds())
	}
	http.SetCookie(c.Writer, cookie)
}

func (ctrl *AuthController) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     ctrl.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   ctrl.cookie.Domain,
		Secure:   ctrl.cookie.Secure,
		HttpOnly: true,
		MaxAge:   -1,
	})
}
