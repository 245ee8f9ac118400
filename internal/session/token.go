package session

import (
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the session cookie the storefront sets after login.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// Key derives the cache key for a session. The raw token never leaves the process.
func Key(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return "session:user:" + hex.EncodeToString(sum[:])
}

// TokenExpiry reads the exp claim without verifying the signature; the token
// is opaque to this service and only bounds how long cached data may live.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// boundTTL shortens ttl so an entry never outlives the token it was loaded with.
func boundTTL(token string, ttl time.Duration, now time.Time) time.Duration {
	exp, ok := TokenExpiry(token)
	if !ok {
		return ttl
	}
	if left := exp.Sub(now); left < ttl {
		return left
	}
	return ttl
}
