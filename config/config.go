package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Media     MediaConfig
	Redis     RedisConfig
	Session   SessionConfig
	CORS      CORSConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// UpstreamConfig points at the external storefront API and chat hub.
type UpstreamConfig struct {
	APIBaseURL string
	ChatHubURL string
	Timeout    time.Duration
}

type MediaConfig struct {
	BaseURL    string // CloudFront or public bucket URL
	S3         S3Config
	PresignTTL time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	CookieName   string
	CookieDomain string
	CookieSecure bool
	UserCacheTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SchedulerConfig struct {
	HealthCheckSpec string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Upstream: UpstreamConfig{
			APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
			ChatHubURL: getEnv("CHAT_HUB_URL", "ws://localhost:5000/hubs/chat"),
			Timeout:    parseDuration(getEnv("UPSTREAM_TIMEOUT", "15s"), 15*time.Second),
		},
		Media: MediaConfig{
			BaseURL: strings.TrimRight(getEnv("MEDIA_BASE_URL", ""), "/"),
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "ap-northeast-2"),
				Bucket:          getEnv("AWS_S3_BUCKET", ""),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			},
			PresignTTL: parseDuration(getEnv("MEDIA_PRESIGN_TTL", "1h"), time.Hour),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "auth_token"),
			CookieDomain: getEnv("SESSION_COOKIE_DOMAIN", ""),
			CookieSecure: parseBool(getEnv("SESSION_COOKIE_SECURE", "false")),
			UserCacheTTL: parseDuration(getEnv("USER_CACHE_TTL", "5m"), 5*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Scheduler: SchedulerConfig{
			HealthCheckSpec: getEnv("UPSTREAM_HEALTH_CRON", "@every 30s"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Upstream.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	u, err := url.Parse(c.Upstream.APIBaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL: %q", c.Upstream.APIBaseURL)
	}
	return nil
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
