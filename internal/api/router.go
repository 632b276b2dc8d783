package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/openmeet/server/internal/api/handlers"
	"github.com/openmeet/server/internal/api/middleware"
	"github.com/openmeet/server/internal/auth"
	"github.com/openmeet/server/internal/config"
	"github.com/openmeet/server/internal/domain/events"
	"github.com/openmeet/server/internal/domain/users"
	"github.com/openmeet/server/internal/metrics"
	"github.com/openmeet/server/internal/storage/postgres"
)

// NewRouter wires repositories, services, handlers, and the middleware
// chain. Route paths keep their trailing slashes; they are the external
// contract.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.Auth, repo.Tokens())
	userService := users.NewService(repo.Users(), logger)
	eventService := events.NewService(repo.Events(), logger)

	authHandler := handlers.NewAuthHandler(userService, tokens, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventService, cfg.Environment)

	requireAuth := middleware.RequireAuth(tokens, userService, cfg.Environment)
	loginTier := middleware.WithRateLimitTier(middleware.TierLogin)
	authTier := middleware.WithRateLimitTier(middleware.TierAuth)

	authed := func(h http.HandlerFunc) http.Handler {
		return authTier(requireAuth(h))
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/register/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(http.HandlerFunc(authHandler.Register)),
	}))
	mux.Handle("/login/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/token/refresh/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Refresh),
	}))
	mux.Handle("/logout/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: authed(authHandler.Logout),
	}))

	mux.Handle("/events/{$}", methodMux(map[string]http.Handler{
		http.MethodGet: authed(eventsHandler.List),
	}))
	mux.Handle("/events/create/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: authed(eventsHandler.Create),
	}))
	mux.Handle("/events/user/{$}", methodMux(map[string]http.Handler{
		http.MethodGet: authed(eventsHandler.UserEvents),
	}))
	mux.Handle("/events/{id}/edit/{$}", methodMux(map[string]http.Handler{
		http.MethodPut: authed(eventsHandler.Edit),
	}))
	mux.Handle("/events/{id}/register/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: authed(eventsHandler.Register),
	}))
	mux.Handle("/events/{id}/unregister/{$}", methodMux(map[string]http.Handler{
		http.MethodPost: authed(eventsHandler.Unregister),
	}))

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	return handler, nil
}

func methodMux(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(routes))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(routes map[string]http.Handler) string {
	methods := make([]string, 0, len(routes))
	for method := range routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
