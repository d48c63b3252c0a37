package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Version is the build version, overridden with -ldflags "-X"
var Version = "dev"

// SchemaVersioner reports the applied database migration
type SchemaVersioner interface {
	SchemaVersion() (uint, bool, error)
}

// VersionHandler serves build and schema version information
type VersionHandler struct {
	schema SchemaVersioner
	logger *zap.Logger
}

// NewVersionHandler creates a new version handler. schema may be nil.
func NewVersionHandler(schema SchemaVersioner, logger *zap.Logger) *VersionHandler {
	return &VersionHandler{schema: schema, logger: logger}
}

// VersionResponse represents the version response
type VersionResponse struct {
	Version       string `json:"version"`
	SchemaVersion *uint  `json:"schema_version,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// RegisterRoutes registers the version route
func (h *VersionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/version", h.VersionInfo).Methods(http.MethodGet)
}

// VersionInfo returns minimal version information
func (h *VersionHandler) VersionInfo(w http.ResponseWriter, r *http.Request) {
	resp := VersionResponse{
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if h.schema != nil {
		version, dirty, err := h.schema.SchemaVersion()
		switch {
		case err != nil:
			if h.logger != nil {
				h.logger.Warn("failed_to_read_schema_version", zap.Error(err))
			}
		case !dirty:
			resp.SchemaVersion = &version
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
