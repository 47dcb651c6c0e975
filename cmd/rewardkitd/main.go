package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rewardkit/analytics"
	"rewardkit/config"
	"rewardkit/core"
	"rewardkit/integrations/webhook"
	"rewardkit/leaderboard"
)

func main() {
	ctx := context.Background()
	app, err := BuildApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	cfg := app.Config

	slog.Info("starting rewardkitd",
		"environment", cfg.Environment,
		"profile", cfg.Profile,
		"storage_adapter", cfg.Storage.Adapter,
		"rewards_file", cfg.RewardsFile)

	if err := reloadTables(app); err != nil {
		slog.Error("failed to load reward tables", "error", err)
		os.Exit(1)
	}

	// streak leaderboard fed by claim events
	tracker := leaderboard.NewTracker(app.Board)
	defer app.Service.Subscribe(core.EventDailyClaimed, func(_ context.Context, e core.Event) {
		tracker.OnEvent(e)
	})()

	// daily KPI rollup
	claimMetrics := analytics.NewClaimMetrics()
	dau := analytics.NewDAU()
	kpis := analytics.NewBridge(claimMetrics, dau)
	for _, typ := range []core.EventType{
		core.EventDailyClaimed,
		core.EventStreakReset,
		core.EventGoalReached,
		core.EventHourlyBonus,
		core.EventClaimReminder,
	} {
		app.Service.Subscribe(typ, func(_ context.Context, e core.Event) { kpis.OnEvent(e) })
	}

	if len(cfg.Webhook.Endpoints) > 0 {
		wireWebhooks(app)
	}

	if app.Server != nil {
		go func() {
			slog.Info("api listening", "address", cfg.API.Address, "prefix", cfg.API.PathPrefix)
			if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("failed to start api server", "error", err)
				os.Exit(1)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

loop:
	for {
		select {
		case <-hup:
			slog.Info("reloading reward tables on SIGHUP")
			if err := reloadTables(app); err != nil {
				slog.Error("reload failed, keeping previous tables", "error", err)
			}
		case <-quit:
			break loop
		}
	}

	slog.Info("shutting down")

	today := analytics.Today()
	sum := claimMetrics.SummaryFor(today)
	slog.Info("today's activity",
		"active_users", dau.Count(today),
		"claims", sum.Claims,
		"resets", sum.Resets,
		"goals", sum.Goals,
		"bonuses", sum.Bonuses)

	app.Service.Users().SaveAll()
	app.Service.Close()

	if app.Server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during api server shutdown", "error", err)
		}
	}

	slog.Info("stopped")
}

func reloadTables(app *App) error {
	tables, err := config.LoadTables(app.Config.RewardsFile, app.Actions)
	if err != nil {
		return err
	}
	app.Service.Reload(tables)
	return nil
}

// wireWebhooks forwards reward events to the configured endpoints.
func wireWebhooks(app *App) {
	types := webhookEventTypes(app.Config.Webhook.Events)
	sink := webhook.New(app.Config.Webhook.Endpoints, webhook.WithEventTypes(types...))
	for _, typ := range types {
		app.Service.Subscribe(typ, func(_ context.Context, e core.Event) { sink.OnEvent(e) })
	}
	slog.Info("webhook sink wired", "endpoints", len(app.Config.Webhook.Endpoints), "events", len(types))
}

// webhookEventTypes maps configured names to event types, defaulting to
// the grant-carrying events.
func webhookEventTypes(names []string) []core.EventType {
	if len(names) == 0 {
		return []core.EventType{
			core.EventDailyClaimed,
			core.EventStreakReset,
			core.EventGoalReached,
			core.EventHourlyBonus,
		}
	}
	types := make([]core.EventType, 0, len(names))
	for _, name := range names {
		types = append(types, core.EventType(name))
	}
	return types
}
