package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/brettonwoods/internal/api/handler"
	"github.com/mcoot/brettonwoods/internal/api/middleware"
	"github.com/mcoot/brettonwoods/internal/api/response"
	"github.com/mcoot/brettonwoods/internal/broadcast/sse"
	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Registry   *registry.Registry
	HubManager *sse.HubManager
	Clock      clock.Clock
	// WS serves the WebSocket action channel at /ws, if set
	WS http.Handler
	// Metrics serves Prometheus metrics at /metrics, if set
	Metrics http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Registry)
	roomHandler := handler.NewRoomHandler(cfg.Registry)
	eventsHandler := handler.NewEventsHandler(cfg.Registry, cfg.HubManager, cfg.Clock, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.Registry)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Registry)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.Registry)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// API subrouter
	api := r.PathPrefix("/api/v1").Subrouter()

	// Player routes (no auth required for registering/logging in)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Public room views and streams. Registered before {id} so "events"
	// is not taken as a room id.
	public := api.PathPrefix("/rooms").Subrouter()
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("", roomHandler.List).Methods(http.MethodGet)
	public.HandleFunc("/events", eventsHandler.List).Methods(http.MethodGet)
	public.HandleFunc("/{id}", roomHandler.Get).Methods(http.MethodGet)
	public.HandleFunc("/{id}/events", eventsHandler.Room).Methods(http.MethodGet)

	// Room actions (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}", roomHandler.Delete).Methods(http.MethodDelete)
	rooms.HandleFunc("/{id}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/seat", roomHandler.Seat).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/unseat", roomHandler.Unseat).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/ready", roomHandler.Ready).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/start", roomHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/vote", roomHandler.Vote).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/next-round", roomHandler.NextRound).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/reset", roomHandler.Reset).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/policies", roomHandler.Policies).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/advance-year", roomHandler.AdvanceYear).Methods(http.MethodPost)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.HandleFunc("/clear", adminHandler.Clear).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.Registry)).Methods(http.MethodGet)

	if cfg.WS != nil {
		r.Handle("/ws", cfg.WS)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	return r
}

// healthHandler reports liveness and how many rooms are open
func healthHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Rooms: reg.RoomCount()})
	}
}
