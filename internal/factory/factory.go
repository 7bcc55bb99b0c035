package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/brettonwoods/internal/api"
	"github.com/mcoot/brettonwoods/internal/broadcast"
	"github.com/mcoot/brettonwoods/internal/broadcast/sse"
	"github.com/mcoot/brettonwoods/internal/config"
	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/dependencies/random"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/monitor"
	"github.com/mcoot/brettonwoods/internal/persistence"
	"github.com/mcoot/brettonwoods/internal/services/auth"
	"github.com/mcoot/brettonwoods/internal/services/registry"
	"github.com/mcoot/brettonwoods/internal/storage"
	"github.com/mcoot/brettonwoods/internal/storage/file"
	"github.com/mcoot/brettonwoods/internal/storage/memory"
	"github.com/mcoot/brettonwoods/internal/storage/postgres"
	redisstorage "github.com/mcoot/brettonwoods/internal/storage/redis"
	"github.com/mcoot/brettonwoods/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	Settings *config.Config
	Logger   *slog.Logger

	// Storage
	Storage storage.Storage
	Saver   *persistence.Saver

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Auth     *auth.Service
	Registry *registry.Registry

	// Fan-out
	HubManager *sse.HubManager
	Events     *sse.Broadcaster
	WS         *ws.Hub

	Monitor *monitor.Monitor

	stopJanitor func()
}

// Config holds configuration for the application factory
type Config struct {
	// Settings is the loaded server configuration (optional)
	// If nil, config.Default() is used, which keeps state in memory
	Settings *config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}

	store, err := NewStorage(*settings, logger)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if settings.Game.Seed != 0 {
		rnd = random.NewSeeded(settings.Game.Seed)
	}

	authCfg := auth.DefaultConfig()
	authCfg.SuperadminUsername = settings.Auth.SuperadminUsername
	if settings.Auth.SessionDuration > 0 {
		authCfg.SessionDuration = settings.Auth.SessionDuration
	}

	return newWithDependencies(settings, store, clk, rnd, authCfg, logger), nil
}

// NewStorage opens the backend selected by settings.Storage.Type
func NewStorage(settings config.Config, logger *slog.Logger) (storage.Storage, error) {
	switch settings.Storage.Type {
	case "", config.StorageMemory:
		return memory.New(), nil
	case config.StorageFile:
		return file.New(settings.Storage.FilePath)
	case config.StorageRedis:
		if settings.Redis.URL == "" {
			return nil, errors.New("redis.url required when storage.type is redis")
		}
		store, err := redisstorage.New(redisstorage.Config{
			URL:          settings.Redis.URL,
			PoolSize:     settings.Redis.PoolSize,
			MinIdleConns: settings.Redis.MinIdleConns,
			KeyPrefix:    settings.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	case config.StoragePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = settings.Postgres.DSN
		if settings.Postgres.MaxOpenConns > 0 {
			pgCfg.MaxOpenConns = settings.Postgres.MaxOpenConns
		}
		if settings.Postgres.MaxIdleConns > 0 {
			pgCfg.MaxIdleConns = settings.Postgres.MaxIdleConns
		}
		if settings.Postgres.ConnMaxLifetime > 0 {
			pgCfg.ConnMaxLifetime = settings.Postgres.ConnMaxLifetime
		}
		store, err := postgres.New(pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid storage type %q", settings.Storage.Type)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(settings *config.Config, store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	mon := monitor.New(monitor.DefaultNamespace)
	authService := auth.New(clk, authCfg)

	reg := registry.New(authService, clk, rnd, logger,
		registry.WithRoomDefaults(settings.RoomDefaults()),
		registry.WithMetrics(mon),
	)

	hubManager := sse.NewHubManager(logger)
	events := sse.NewBroadcaster(hubManager, clk, logger)
	wsHub := ws.NewHub(reg, clk, logger, mon)
	reg.SetBroadcaster(broadcast.Fanout{events, wsHub})

	saver := persistence.New(store, reg.Snapshot, clk, logger,
		persistence.WithInterval(settings.Storage.SaveInterval),
		persistence.WithObserver(mon),
	)
	reg.SetSaver(saver)

	return &App{
		Settings:   settings,
		Logger:     logger,
		Storage:    store,
		Saver:      saver,
		Clock:      clk,
		Random:     rnd,
		Auth:       authService,
		Registry:   reg,
		HubManager: hubManager,
		Events:     events,
		WS:         wsHub,
		Monitor:    mon,
	}
}

// Restore loads the last saved state into the registry. A store with
// nothing saved yet is not an error.
func (a *App) Restore(ctx context.Context) error {
	state, err := a.Storage.Load(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoState) {
			a.Logger.Info("no saved state, starting fresh")
			return nil
		}
		return fmt.Errorf("loading saved state: %w", err)
	}

	a.Registry.Restore(state)
	a.Logger.Info("restored saved state",
		slog.Int("rooms", len(state.Rooms)),
		slog.Int("users", len(state.Users)),
		slog.Time("saved_at", state.SavedAt))
	return nil
}

// Router builds the HTTP handler serving the API, streams and metrics
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:     a.Logger,
		Registry:   a.Registry,
		HubManager: a.HubManager,
		Clock:      a.Clock,
		WS:         a.WS,
		Metrics:    a.Monitor.Handler(),
	})
}

// Start begins periodic persistence and the expired session sweep
func (a *App) Start() {
	a.Saver.Start()
	if a.stopJanitor != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Auth.RunJanitor(ctx, a.Settings.Auth.CleanupInterval, a.Logger)
	}()
	a.stopJanitor = func() {
		cancel()
		<-done
	}
}

// Close flushes a final save and releases every connection
func (a *App) Close(ctx context.Context) error {
	if a.stopJanitor != nil {
		a.stopJanitor()
	}
	saveErr := a.Saver.Close(ctx)
	a.WS.Close()
	a.HubManager.Close()
	return errors.Join(saveErr, a.Storage.Close())
}
