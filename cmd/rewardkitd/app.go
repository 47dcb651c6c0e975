package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	mem "rewardkit/adapters/memory"
	redisAdapter "rewardkit/adapters/redis"
	sqlxAdapter "rewardkit/adapters/sqlx"
	"rewardkit/adapters/yamlfile"
	"rewardkit/api/httpapi"
	"rewardkit/config"
	"rewardkit/engine"
	"rewardkit/leaderboard"
	"rewardkit/realtime"
	"rewardkit/rewarder"
	"rewardkit/rewards"
	"rewardkit/store"
	"rewardkit/user"
)

// App aggregates the assembled daemon components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Actions *rewards.ActionRegistry
	Service *engine.RewardService
	Board   *leaderboard.SkipList
	Server  *http.Server
}

func provideConfig(_ context.Context) (*config.Config, error) {
	if path := os.Getenv("REWARDKIT_CONFIG"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideActions() *rewards.ActionRegistry {
	return rewards.DefaultActionRegistry()
}

func provideBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	return setupStorage(ctx, cfg)
}

func provideService(hub *realtime.Hub, backend store.Backend) *engine.RewardService {
	return rewarder.New(
		rewarder.WithRealtime(hub),
		rewarder.WithBackend(backend),
		rewarder.WithDispatchMode(engine.DispatchAsync),
		rewarder.WithGranter(engine.GranterFunc(grantByLogging)),
		rewarder.WithRemindFunc(func(rec *user.Record) {
			slog.Info("unclaimed daily reward", "user", rec.ID())
		}),
	)
}

func provideBoard() *leaderboard.SkipList {
	return leaderboard.NewSkipList()
}

func provideServer(cfg *config.Config, svc *engine.RewardService, hub *realtime.Hub, board *leaderboard.SkipList) *http.Server {
	if !cfg.API.Enabled {
		return nil
	}
	handler := httpapi.NewMux(svc, hub, board, httpapi.Options{
		PathPrefix:       cfg.API.PathPrefix,
		AllowCORSOrigin:  cfg.API.CORSOrigin,
		APIKeys:          cfg.API.APIKeys,
		RateLimitEnabled: cfg.API.RateLimitEnabled,
		RateLimitRPM:     cfg.API.RateLimitRPM,
		RateLimitBurst:   cfg.API.RateLimitBurst,
	})
	return &http.Server{
		Addr:    cfg.API.Address,
		Handler: handler,
	}
}

// grantByLogging stands in for a host-runtime granter. A server embedding
// the library replaces this with the real effect executor.
func grantByLogging(_ context.Context, rec *user.Record, action rewards.Action) error {
	slog.Info("granting reward", "user", rec.ID(), "action", action.Type())
	return nil
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the persistence adapter selected by configuration.
func setupStorage(_ context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		s, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return s, nil
	case "file":
		return yamlfile.New(cfg.Storage.File.Dir)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
