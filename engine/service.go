package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"rewardkit/core"
	"rewardkit/rewards"
	"rewardkit/store"
	"rewardkit/user"
)

// BonusPermissionPrefix prefixes the permission suffix of each hourly
// multiplier table entry before asking the host runtime.
const BonusPermissionPrefix = "rewardkit.bonus."

// ErrModuleNotEnabled signals an operation against a module absent from the
// module registry.
var ErrModuleNotEnabled = errors.New("reward module not enabled")

// Option configures a RewardService.
type Option func(*RewardService)

// WithPermissions sets the permission checker used by the hourly selector.
func WithPermissions(p Permissions) Option {
	return func(s *RewardService) { s.perms = p }
}

// WithDateSource overrides the authoritative calendar-date source.
func WithDateSource(today func() core.Date) Option {
	return func(s *RewardService) { s.today = today }
}

// WithRemindFunc sets the reminder callback fired by the periodic sweep.
func WithRemindFunc(f RemindFunc) Option {
	return func(s *RewardService) { s.remind = f }
}

// RewardService is the reward entitlement engine: it decides whether a
// reward is owed, which collection applies, grants it, and commits the
// claim through the user store.
type RewardService struct {
	users    *store.UserStore
	bus      *EventBus
	granter  Granter
	perms    Permissions
	today    func() core.Date
	remind   RemindFunc
	tables   atomic.Pointer[rewards.Tables]
	notifier *Notifier
}

func NewRewardService(users *store.UserStore, bus *EventBus, granter Granter, opts ...Option) *RewardService {
	if users == nil || bus == nil || granter == nil {
		panic("NewRewardService requires non-nil users, bus, and granter")
	}
	s := &RewardService{
		users:   users,
		bus:     bus,
		granter: granter,
		perms:   PermissionsFunc(func(core.UserID, string) bool { return false }),
		today:   core.Today,
	}
	for _, o := range opts {
		o(s)
	}
	s.tables.Store(&rewards.Tables{})
	s.notifier = newNotifier(s)
	return s
}

// Users exposes the underlying user store for lifecycle calls.
func (s *RewardService) Users() *store.UserStore { return s.users }

// Tables returns the current reward table generation.
func (s *RewardService) Tables() rewards.Tables { return *s.tables.Load() }

// Reload atomically swaps in a new table generation and restarts the
// reminder sweep on the new period.
func (s *RewardService) Reload(t rewards.Tables) {
	s.tables.Store(&t)
	s.notifier.Restart(t.ReminderPeriod)
	s.bus.Publish(context.Background(), core.NewTablesReloaded())
	slog.Info("reward tables reloaded",
		"daily_days", t.Daily.CycleLength(),
		"daily_goals", t.DailyPlaytime.Len(),
		"global_goals", t.GlobalPlaytime.Len(),
		"hourly_entries", t.Hourly.Len(),
		"reminder_period", t.ReminderPeriod)
}

// Subscribe convenience method.
func (s *RewardService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *RewardService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// Close stops the reminder sweep and the event bus.
func (s *RewardService) Close() {
	s.notifier.Stop()
	s.bus.Close()
}

// DailyClaim describes a successful daily claim.
type DailyClaim struct {
	Result     user.ClaimResult
	Collection rewards.Collection
}

// ClaimDaily runs the daily streak transition for the user and grants the
// day's collection. A repeat claim on the same date returns
// core.ErrAlreadyClaimed with nothing mutated.
//
// The transition commits atomically before granting so a racing second
// claim can never pass the already-claimed check; grant failures are
// logged per action and never rolled back.
func (s *RewardService) ClaimDaily(ctx context.Context, id core.UserID) (DailyClaim, error) {
	rec, daily, err := s.dailyData(ctx, id)
	if err != nil {
		return DailyClaim{}, err
	}

	res, err := daily.Claim(s.today())
	if err != nil {
		return DailyClaim{}, err
	}

	collection := s.Tables().Daily.Resolve(res.Day)
	s.grantAll(ctx, rec, collection)

	if res.Reset {
		s.bus.Publish(ctx, core.NewStreakReset(rec.ID(), res.PreviousStreak))
	}
	s.bus.Publish(ctx, core.NewDailyClaimed(rec.ID(), res.Day, res.Streak, collection.Category))
	s.scheduleSave(rec)

	return DailyClaim{Result: res, Collection: collection}, nil
}

// HasClaimedToday reports the daily module's already-claimed predicate for
// a loaded user without side effects.
func (s *RewardService) HasClaimedToday(id core.UserID) bool {
	normalized, err := core.NormalizeUserID(id)
	if err != nil {
		return false
	}
	rec := s.users.GetIfLoaded(normalized)
	if rec == nil {
		return false
	}
	daily, ok := rec.Daily()
	if !ok {
		return false
	}
	return daily.HasCollectedToday(s.today())
}

// GoalGrant is one playtime threshold granted by AdvancePlaytime.
type GoalGrant struct {
	Module     string
	Threshold  int
	Collection rewards.Collection
}

// AdvancePlaytime records new play time totals and grants every playtime
// goal crossed since the last watermark, ascending, so catch-up after an
// offline stretch grants in chronological order. totalMinutes is lifetime
// play time; todayMinutes is play time accumulated on the current calendar
// day, both supplied by the host runtime's session tracker.
func (s *RewardService) AdvancePlaytime(ctx context.Context, id core.UserID, totalMinutes, todayMinutes int) ([]GoalGrant, error) {
	normalized, err := core.NormalizeUserID(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.users.LoadOrGet(ctx, normalized)
	if err != nil {
		return nil, err
	}
	rec.SetMinutesPlayed(totalMinutes)

	tables := s.Tables()
	var grants []GoalGrant

	if pt, ok := rec.Playtime(user.ModuleDailyPlaytimeGoals); ok {
		pt.Rollover(s.today())
		grants = append(grants, s.advanceGoals(ctx, rec, pt, tables.DailyPlaytime, todayMinutes)...)
	}
	if pt, ok := rec.Playtime(user.ModuleGlobalPlaytimeGoals); ok {
		grants = append(grants, s.advanceGoals(ctx, rec, pt, tables.GlobalPlaytime, totalMinutes)...)
	}

	s.scheduleSave(rec)
	return grants, nil
}

// advanceGoals grants thresholds in (watermark, total] and moves the
// watermark only after all of them have been processed.
func (s *RewardService) advanceGoals(ctx context.Context, rec *user.Record, pt *user.PlaytimeGoalsData, table rewards.MinuteTable, total int) []GoalGrant {
	lower, ok := pt.Window(total)
	if !ok {
		return nil
	}
	due := table.InRange(lower, total)
	grants := make([]GoalGrant, 0, len(due))
	for _, th := range due {
		s.grantAll(ctx, rec, th.Collection)
		s.bus.Publish(ctx, core.NewGoalReached(rec.ID(), th.Minutes, th.Collection.Category))
		grants = append(grants, GoalGrant{Module: pt.ModuleID(), Threshold: th.Minutes, Collection: th.Collection})
	}
	pt.Commit(total)
	return grants
}

// HourlyBonus selects the greatest multiplier the user's permissions allow,
// writes it onto the record for display, and grants any attached actions.
// ok is false when the table is empty or no permission matches.
func (s *RewardService) HourlyBonus(ctx context.Context, id core.UserID) (rewards.MultiplierEntry, bool, error) {
	normalized, err := core.NormalizeUserID(id)
	if err != nil {
		return rewards.MultiplierEntry{}, false, err
	}
	rec, err := s.users.LoadOrGet(ctx, normalized)
	if err != nil {
		return rewards.MultiplierEntry{}, false, err
	}

	entry, ok := s.Tables().Hourly.Select(func(permission string) bool {
		return s.perms.Has(rec.ID(), BonusPermissionPrefix+permission)
	})
	if !ok {
		return rewards.MultiplierEntry{}, false, nil
	}

	rec.SetHourlyMultiplier(entry.Multiplier)
	for _, a := range entry.Actions {
		if err := s.granter.Grant(ctx, rec, a); err != nil {
			slog.Warn("hourly reward action failed", "user", rec.ID(), "action", a.Type(), "error", err)
		}
	}
	s.bus.Publish(ctx, core.NewHourlyBonus(rec.ID(), entry.Multiplier))
	return entry, true, nil
}

// SetDayNumber writes the day number directly and persists. Support use.
// The user must already be loaded; overrides never fabricate a record, an
// unresolvable id returns core.ErrUnknownUser.
func (s *RewardService) SetDayNumber(_ context.Context, id core.UserID, day int) error {
	rec, daily, err := s.loadedDailyData(id)
	if err != nil {
		return err
	}
	daily.SetDayNum(day)
	s.scheduleSave(rec)
	return nil
}

// ResetDayNumber restarts the user's cycle at day 1.
func (s *RewardService) ResetDayNumber(ctx context.Context, id core.UserID) error {
	return s.SetDayNumber(ctx, id, 1)
}

// SetStreak writes the streak length directly and persists. Support use,
// same resolution rules as SetDayNumber.
func (s *RewardService) SetStreak(_ context.Context, id core.UserID, streak int) error {
	rec, daily, err := s.loadedDailyData(id)
	if err != nil {
		return err
	}
	daily.SetStreakLength(streak)
	s.scheduleSave(rec)
	return nil
}

// ResetStreak restarts the user's streak at 1.
func (s *RewardService) ResetStreak(ctx context.Context, id core.UserID) error {
	return s.SetStreak(ctx, id, 1)
}

// NextRewardOfCategory answers "when is the next <category> reward" for
// display surfaces, relative to the user's current day number.
func (s *RewardService) NextRewardOfCategory(id core.UserID, category string) (int, bool) {
	normalized, err := core.NormalizeUserID(id)
	if err != nil {
		return 0, false
	}
	rec := s.users.GetIfLoaded(normalized)
	if rec == nil {
		return 0, false
	}
	daily, ok := rec.Daily()
	if !ok {
		return 0, false
	}
	return s.Tables().Daily.NextOfCategory(daily.DayNum(), category)
}

func (s *RewardService) dailyData(ctx context.Context, id core.UserID) (*user.Record, *user.DailyRewardsData, error) {
	normalized, err := core.NormalizeUserID(id)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.users.LoadOrGet(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}
	daily, ok := rec.Daily()
	if !ok {
		return nil, nil, ErrModuleNotEnabled
	}
	return rec, daily, nil
}

// loadedDailyData resolves an id against records already in memory only.
func (s *RewardService) loadedDailyData(id core.UserID) (*user.Record, *user.DailyRewardsData, error) {
	normalized, err := core.NormalizeUserID(id)
	if err != nil {
		return nil, nil, err
	}
	rec := s.users.GetIfLoaded(normalized)
	if rec == nil {
		return nil, nil, core.ErrUnknownUser
	}
	daily, ok := rec.Daily()
	if !ok {
		return nil, nil, ErrModuleNotEnabled
	}
	return rec, daily, nil
}

func (s *RewardService) grantAll(ctx context.Context, rec *user.Record, c rewards.Collection) {
	for _, a := range c.Actions {
		if err := s.granter.Grant(ctx, rec, a); err != nil {
			slog.Warn("reward action failed", "user", rec.ID(), "action", a.Type(), "error", err)
		}
	}
}

// scheduleSave queues an async save and logs any failure. The caller does
// not wait for the write.
func (s *RewardService) scheduleSave(rec *user.Record) {
	result := s.users.Save(rec)
	go func() {
		if err := <-result; err != nil {
			slog.Error("failed to save reward user", "user", rec.ID(), "error", err)
		}
	}()
}
