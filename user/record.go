package user

import (
	"sync"

	"rewardkit/core"
)

// Record is the in-memory state for one user. It is owned by the user store
// while loaded and may be touched from the synchronous context and from
// async persistence workers at once; the mutex guards all fields.
type Record struct {
	mu               sync.Mutex
	id               core.UserID
	username         string
	minutesPlayed    int
	hourlyMultiplier float64
	modules          map[string]ModuleData
}

// NewRecord builds an empty record with no module data attached.
func NewRecord(id core.UserID, username string) *Record {
	return &Record{
		id:       id,
		username: username,
		modules:  make(map[string]ModuleData),
	}
}

func (r *Record) ID() core.UserID { return r.id }

func (r *Record) Username() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.username
}

// SetUsername updates the last-seen display name cache.
func (r *Record) SetUsername(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.username = name
}

func (r *Record) MinutesPlayed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minutesPlayed
}

// SetMinutesPlayed records the accumulated play time reported by the host.
func (r *Record) SetMinutesPlayed(minutes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minutesPlayed = minutes
}

// HourlyMultiplier is the transient bonus multiplier last selected for the
// user. It is display state and is not persisted.
func (r *Record) HourlyMultiplier() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hourlyMultiplier
}

func (r *Record) SetHourlyMultiplier(m float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hourlyMultiplier = m
}

// ModuleData returns the state owned by the named module, if attached.
func (r *Record) ModuleData(moduleID string) (ModuleData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.modules[moduleID]
	return d, ok
}

// AddModuleData attaches module state. One entry per module; a second add
// for the same module replaces the first.
func (r *Record) AddModuleData(d ModuleData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[d.ModuleID()] = d
}

// Daily returns the daily-rewards state, if that module is attached.
func (r *Record) Daily() (*DailyRewardsData, bool) {
	d, ok := r.ModuleData(ModuleDailyRewards)
	if !ok {
		return nil, false
	}
	daily, ok := d.(*DailyRewardsData)
	return daily, ok
}

// Playtime returns the playtime-goals state for the given module, if attached.
func (r *Record) Playtime(moduleID string) (*PlaytimeGoalsData, bool) {
	d, ok := r.ModuleData(moduleID)
	if !ok {
		return nil, false
	}
	pt, ok := d.(*PlaytimeGoalsData)
	return pt, ok
}
