package user

import (
	"sort"
	"sync"

	"rewardkit/core"
)

// Module identifiers. Each enabled module owns one entry in a record's
// module-data map and one key-path prefix in the persisted document.
const (
	ModuleDailyRewards        = "daily-rewards"
	ModuleDailyPlaytimeGoals  = "daily-playtime-goals"
	ModuleGlobalPlaytimeGoals = "global-playtime-goals"
)

// ModuleData is the per-user state owned by a single reward module.
// Implementations guard their own fields; methods are safe for concurrent use.
type ModuleData interface {
	ModuleID() string
}

// Constructor builds fresh module data for a user seen for the first time.
type Constructor func(today core.Date) ModuleData

// Registry maps module identifiers to their data constructors.
// Which modules are enabled is decided here, not by the data types.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry enables all built-in modules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ModuleDailyRewards, func(today core.Date) ModuleData { return NewDailyRewardsData(today) })
	r.Register(ModuleDailyPlaytimeGoals, func(today core.Date) ModuleData { return NewDailyPlaytimeGoalsData(today) })
	r.Register(ModuleGlobalPlaytimeGoals, func(core.Date) ModuleData { return NewGlobalPlaytimeGoalsData() })
	return r
}

func (r *Registry) Register(id string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[id] = c
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ctors, id)
}

func (r *Registry) IsRegistered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[id]
	return ok
}

// Enabled returns the registered module identifiers in stable order.
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewData constructs fresh data for the given module, if registered.
func (r *Registry) NewData(id string, today core.Date) (ModuleData, bool) {
	r.mu.RLock()
	ctor, ok := r.ctors[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(today), true
}
