package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/ordia/internal/database"
	logpkg "github.com/benvon/ordia/internal/logger"
	"github.com/benvon/ordia/internal/models"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// CorsConfigSource supplies the stored CORS policy. A nil config means none is stored.
type CorsConfigSource interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// CORSReloader wraps rs/cors and periodically reloads CORS config from the database.
type CORSReloader struct {
	next     http.Handler
	source   CorsConfigSource
	fallback string
	log      *zap.Logger
	interval time.Duration
	mu       sync.RWMutex
	current  http.Handler
}

// NewCORSReloader creates a CORS middleware backed by source. fallback is a
// comma-separated origin list ("*" for any) used while nothing is stored.
func NewCORSReloader(source CorsConfigSource, fallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	return &CORSReloader{
		source:   source,
		fallback: strings.TrimSpace(fallback),
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with CORS and hot-reload.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// corsOptions turns a stored config (or the fallback when cfg is nil) into rs/cors options
func corsOptions(cfg *models.CorsConfig, fallback string) cors.Options {
	raw, allowCreds, maxAge := fallback, false, 86400
	if cfg != nil {
		raw, allowCreds, maxAge = cfg.AllowedOrigins, cfg.AllowCredentials, cfg.MaxAge
	}

	origins := database.AllowedOriginsSlice(raw)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	for _, o := range origins {
		if o == "*" {
			// Browsers refuse credentials with a wildcard origin
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}

	var cfg *models.CorsConfig
	if r.source != nil {
		stored, err := r.source.Get(ctx)
		if err != nil && r.log != nil {
			r.log.Warn("cors_config_load_failed", zap.String("error", logpkg.SanitizeError(err)))
		}
		if err == nil {
			cfg = stored
		}
	}

	h := cors.New(corsOptions(cfg, r.fallback)).Handler(r.next)
	r.mu.Lock()
	r.current = h
	r.mu.Unlock()
}

// ServeHTTP implements http.Handler.
func (r *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.current
	r.mu.RUnlock()
	if h != nil {
		h.ServeHTTP(w, req)
		return
	}
	if r.next != nil {
		r.next.ServeHTTP(w, req)
	}
}
