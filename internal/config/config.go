package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL        string
	SecretKey          string
	ServerPort         string
	ProjectName        string
	AccessTokenTTL     time.Duration
	FrontendURL        string
	EnableHSTS         bool
	ServerDebugMode    bool
	LogFormat          string
	Location           *time.Location
	OTELEnabled        bool
	OTELEndpoint       string
	MetricsEnabled     bool
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	RunMigrations      bool
	CORSReloadInterval time.Duration
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from the given variable lookup
func FromLookup(lookup func(string) string) (*Config, error) {
	env := source(lookup)

	cfg := &Config{
		DatabaseURL:        env.get("DATABASE_URL", ""),
		SecretKey:          env.get("SECRET_KEY", ""),
		ServerPort:         env.get("SERVER_PORT", "8000"),
		ProjectName:        env.get("PROJECT_NAME", "Ordia API"),
		AccessTokenTTL:     time.Duration(env.getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		FrontendURL:        env.get("FRONTEND_URL", "*"),
		EnableHSTS:         env.getBool("ENABLE_HSTS", false),
		ServerDebugMode:    env.getBool("SERVER_DEBUG_MODE", false),
		LogFormat:          env.get("LOG_FORMAT", "json"),
		OTELEnabled:        env.getBool("OTEL_ENABLED", false),
		OTELEndpoint:       env.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MetricsEnabled:     env.getBool("METRICS_ENABLED", true),
		DBMaxOpenConns:     env.getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     env.getInt("DB_MAX_IDLE_CONNS", 5),
		RunMigrations:      env.getBool("RUN_MIGRATIONS", true),
		CORSReloadInterval: time.Duration(env.getInt("CORS_RELOAD_INTERVAL_SECONDS", 60)) * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	if cfg.SecretKey == "" {
		if !cfg.ServerDebugMode {
			return nil, fmt.Errorf("SECRET_KEY is required unless SERVER_DEBUG_MODE is enabled")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SecretKey = secret
	}

	loc, err := loadLocation(env.get("TIMEZONE", ""))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// randomSecret backs tokens in debug mode. Tokens do not survive a restart.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate debug secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type source func(string) string

func (s source) get(key, defaultValue string) string {
	if value := strings.TrimSpace(s(key)); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(s(key))) {
	case "":
		return defaultValue
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (s source) getInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(s(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
