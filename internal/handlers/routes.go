package handlers

import (
	"net/http"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/gorilla/mux"
)

// Routes holds the handlers mounted on the API router. Nil handlers are
// skipped.
type Routes struct {
	Auth    *AuthHandler
	Todos   *TodoHandler
	Habits  *HabitHandler
	Logs    *LogHandler
	Health  *HealthChecker
	Version *VersionHandler
	OpenAPI *OpenAPIHandler
	Metrics http.Handler
}

// Register mounts every route on r. requireAuth guards the owner-scoped
// resources and /users.
func (rt Routes) Register(r *mux.Router, requireAuth func(http.Handler) http.Handler) {
	if rt.Health != nil {
		rt.Health.RegisterRoutes(r)
	}
	if rt.Version != nil {
		rt.Version.RegisterRoutes(r)
	}
	if rt.OpenAPI != nil {
		rt.OpenAPI.RegisterRoutes(r)
	}
	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics).Methods(http.MethodGet)
	}

	if rt.Auth != nil {
		rt.Auth.RegisterRoutes(r.PathPrefix("/auth").Subrouter())
		rt.Auth.RegisterUserRoutes(protectedRouter(r, "/users", requireAuth))
	}

	if rt.Todos != nil {
		rt.Todos.RegisterRoutes(protectedRouter(r, "/todos", requireAuth))
	}
	if rt.Habits != nil {
		rt.Habits.RegisterRoutes(protectedRouter(r, "/habits", requireAuth))
	}
	if rt.Logs != nil {
		rt.Logs.RegisterRoutes(protectedRouter(r, "/logs", requireAuth))
	}

	// Router middleware only runs for matched routes. This gives every
	// preflight request a match so the CORS middleware can answer it. A
	// method matcher here would turn every unknown path into a 405.
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return req.Method == http.MethodOptions
	}).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, apperr.Plain(http.StatusNotFound, "Not Found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, apperr.Plain(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})
}

func protectedRouter(r *mux.Router, prefix string, requireAuth func(http.Handler) http.Handler) *mux.Router {
	sub := r.PathPrefix(prefix).Subrouter()
	sub.Use(requireAuth)
	return sub
}
