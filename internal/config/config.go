package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	DB       DBConfig
	Session  SessionConfig
	Redis    RedisConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Hostname       string
	MaxUploadBytes int64
	LoginRPS       float64
	LoginBurst     int
}

type BackendConfig struct {
	// BaseURLOverride wins over every other source when set.
	BaseURLOverride string
	DevBaseURL      string
	// ProductionHosts maps a portal hostname suffix to the backend URL
	// serving it.
	ProductionHosts map[string]string
	Timeout         time.Duration
}

type DBConfig struct {
	Driver string
	URL    string
}

type SessionConfig struct {
	Backend      string
	Secret       string
	TTL          time.Duration
	CookieSecure bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const DefaultDevBaseURL = "http://localhost:5000/api"

// DefaultProductionHosts is the hostname-based mapping used when
// PRODUCTION_HOSTS is unset.
var DefaultProductionHosts = map[string]string{
	"hupcfl.com": "https://dd-backend.cp.hupcfl.com/api",
}

func Load() *Config {
	hostname := getEnv("PORTAL_HOSTNAME", "")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("HTTP_PORT", "8080"),
			Hostname:       hostname,
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) << 20,
			LoginRPS:       getEnvAsFloat("LOGIN_RPS", 1),
			LoginBurst:     getEnvAsInt("LOGIN_BURST", 5),
		},
		Backend: BackendConfig{
			BaseURLOverride: getEnv("API_BASE_URL", ""),
			DevBaseURL:      getEnv("DEV_API_BASE_URL", DefaultDevBaseURL),
			ProductionHosts: getEnvAsMap("PRODUCTION_HOSTS", DefaultProductionHosts),
			Timeout:         getEnvAsDuration("BACKEND_TIMEOUT", 2*time.Minute),
		},
		DB: DBConfig{
			Driver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Session: SessionConfig{
			Backend:      strings.ToLower(getEnv("SESSION_BACKEND", "db")),
			Secret:       getEnv("SESSION_SECRET", ""),
			TTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return fallback
}

// getEnvAsMap parses "suffix=url,suffix=url".
func getEnvAsMap(key string, fallback map[string]string) map[string]string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
