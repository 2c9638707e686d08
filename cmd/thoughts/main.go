// Command thoughts serves the persistent thoughts API backed by MongoDB, or
// by PostgreSQL when STORE=postgres.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/technigo/happy-thoughts-api/api"
	"github.com/technigo/happy-thoughts-api/api/validator"
	"github.com/technigo/happy-thoughts-api/config"
	"github.com/technigo/happy-thoughts-api/fixture"
	"github.com/technigo/happy-thoughts-api/internal/server"
	"github.com/technigo/happy-thoughts-api/mongo"
	"github.com/technigo/happy-thoughts-api/postgres"
	"github.com/technigo/happy-thoughts-api/redis"
)

const startupTimeout = 10 * time.Second

// A store is a DB that the service can prepare at startup.
type store interface {
	api.DB
	api.Resetter
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, idTag, closeDB := openStore(ctx, logger, cfg)
	defer closeDB()

	cache, closeCache := openCache(ctx, logger, cfg)
	defer closeCache()

	prepare(ctx, logger, cfg, db, cache)

	a := &api.API{
		Logger: logger,
		DB:     db,
		Cache:  cache,
		Val:    validator.New(),
		IDTag:  idTag,
	}

	return server.Run(ctx, logger, cfg.Addr(), a)
}

// openStore builds the configured store. A store that cannot be set up is
// logged and replaced by one that fails every call, so the service still
// starts and requests answer 500.
func openStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (store, string, func()) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			logger.Error("Could not open store", "store", cfg.Store, "error", err.Error())
			return unavailable{fmt.Errorf("postgres: %w", err)}, postgres.IDTag, func() {}
		}
		return pg, postgres.IDTag, func() { _ = pg.Close() }
	default:
		m, err := mongo.Connect(ctx, cfg.MongoURL)
		if err != nil {
			logger.Error("Could not open store", "store", cfg.Store, "error", err.Error())
			return unavailable{fmt.Errorf("mongo: %w", err)}, mongo.IDTag, func() {}
		}
		closeFn := func() {
			cctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
			defer cancel()
			_ = m.Close(cctx)
		}
		return m, mongo.IDTag, closeFn
	}
}

// openCache connects to Redis when REDIS_ADDR is set. The service runs
// without a cache otherwise, or when Redis is unreachable.
func openCache(ctx context.Context, logger *slog.Logger, cfg config.Config) (api.Cache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	cctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	r, err := redis.Connect(cctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		logger.Warn("Running without cache", "error", err.Error())
		return nil, func() {}
	}
	return r, func() { _ = r.Close() }
}

// prepare checks the store connection, installs the schema and seeds the
// fixture when RESET_DATABASE is set. Failures are logged and the service
// starts anyway; requests then fail at the store.
func prepare(ctx context.Context, logger *slog.Logger, cfg config.Config, db store, cache api.Cache) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		logger.Error("Could not connect to store", "store", cfg.Store, "error", err.Error())
		return
	}
	logger.Info("Connected to store", "store", cfg.Store)

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("Could not ensure schema", "error", err.Error())
	}

	if !cfg.ResetDatabase {
		return
	}
	seeds, err := fixture.Seeds()
	if err != nil {
		logger.Error("Could not load fixture", "error", err.Error())
		return
	}
	if err := api.Seed(ctx, logger, db, cache, seeds); err != nil {
		logger.Error("Could not seed database", "error", err.Error())
	}
}

// unavailable is a store that could not be opened.
type unavailable struct {
	err error
}

func (u unavailable) Ping(context.Context) error { return u.err }

func (u unavailable) EnsureSchema(context.Context) error { return u.err }

func (u unavailable) Reset(context.Context, []api.Thought) error { return u.err }

func (u unavailable) ListThoughts(context.Context, api.Filter) ([]api.Thought, error) {
	return nil, u.err
}

func (u unavailable) GetThought(context.Context, string) (api.Thought, error) {
	return api.Thought{}, u.err
}

func (u unavailable) InsertThought(context.Context, api.Thought) (api.Thought, error) {
	return api.Thought{}, u.err
}

func (u unavailable) DeleteThought(context.Context, string) error { return u.err }
