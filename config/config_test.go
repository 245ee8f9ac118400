package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://shop.example.com")
	t.Setenv("USER_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.Upstream.APIBaseURL)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Session.UserCacheTTL)
	assert.Equal(t, "auth_token", cfg.Session.CookieName)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "absolute URL", baseURL: "http://localhost:5000/api", wantErr: false},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "relative path", baseURL: "/api", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Upstream: UpstreamConfig{APIBaseURL: tt.baseURL}}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseSlice(t *testing.T) {
	assert.Equal(t, []string{}, parseSlice(""))
	assert.Equal(t, []string{"a", "b"}, parseSlice("a,,b,"))
}
