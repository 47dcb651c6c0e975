// Package rewarder is the embedding facade: one constructor that wires a
// backend, module registry, event bus, and reward service together with
// sensible defaults, so a host process needs no knowledge of the wiring.
package rewarder

import (
	"context"

	mem "rewardkit/adapters/memory"
	"rewardkit/core"
	"rewardkit/engine"
	"rewardkit/realtime"
	"rewardkit/rewards"
	"rewardkit/store"
	"rewardkit/user"
)

// Option configures the reward service builder.
type Option func(*config)

type config struct {
	backend store.Backend
	modules *user.Registry
	granter engine.Granter
	perms   engine.Permissions
	remind  engine.RemindFunc
	mode    engine.DispatchMode
	hub     *realtime.Hub
	today   func() core.Date
}

// WithBackend sets the persistence adapter.
func WithBackend(b store.Backend) Option { return func(c *config) { c.backend = b } }

// WithModules sets the reward module registry.
func WithModules(r *user.Registry) Option { return func(c *config) { c.modules = r } }

// WithGranter sets the collaborator that performs reward actions.
func WithGranter(g engine.Granter) Option { return func(c *config) { c.granter = g } }

// WithPermissions sets the permission checker used by the hourly selector.
func WithPermissions(p engine.Permissions) Option { return func(c *config) { c.perms = p } }

// WithRemindFunc sets the callback fired for users with unclaimed rewards.
func WithRemindFunc(f engine.RemindFunc) Option { return func(c *config) { c.remind = f } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all reward events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithDateSource overrides the authoritative calendar-date source.
func WithDateSource(today func() core.Date) Option { return func(c *config) { c.today = today } }

// bridged lists the event types mirrored onto a realtime hub.
var bridged = []core.EventType{
	core.EventUserLoaded,
	core.EventUserUnloaded,
	core.EventDailyClaimed,
	core.EventStreakReset,
	core.EventGoalReached,
	core.EventHourlyBonus,
	core.EventClaimReminder,
	core.EventTablesReloaded,
}

// New builds a configured RewardService. Defaults when not provided:
//   - backend: in-memory
//   - modules: all reward modules enabled
//   - granter: no-op (events still fire)
//   - dispatch: async
func New(opts ...Option) *engine.RewardService {
	cfg := &config{
		mode:    engine.DispatchAsync,
		modules: user.DefaultRegistry(),
		today:   core.Today,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.backend == nil {
		cfg.backend = mem.New()
	}
	if cfg.granter == nil {
		cfg.granter = engine.GranterFunc(func(context.Context, *user.Record, rewards.Action) error {
			return nil
		})
	}

	bus := engine.NewEventBus(cfg.mode)

	users := store.New(cfg.backend, cfg.modules,
		store.WithDateSource(cfg.today),
		store.WithLoadHook(func(rec *user.Record) {
			bus.Publish(context.Background(), core.NewUserLoaded(rec.ID()))
		}),
		store.WithUnloadHook(func(rec *user.Record) {
			bus.Publish(context.Background(), core.NewUserUnloaded(rec.ID()))
		}),
		store.WithSaveHook(func(rec *user.Record) {
			bus.Publish(context.Background(), core.NewRecordSaved(rec.ID()))
		}),
	)

	svcOpts := []engine.Option{engine.WithDateSource(cfg.today)}
	if cfg.perms != nil {
		svcOpts = append(svcOpts, engine.WithPermissions(cfg.perms))
	}
	if cfg.remind != nil {
		svcOpts = append(svcOpts, engine.WithRemindFunc(cfg.remind))
	}

	svc := engine.NewRewardService(users, bus, cfg.granter, svcOpts...)

	if cfg.hub != nil {
		for _, typ := range bridged {
			bus.Subscribe(typ, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		}
	}
	return svc
}
