// Package analytics aggregates reward events into operator-facing KPIs:
// claim counts, streak health, and goal completion rates.
package analytics

import (
	"sync"
	"time"

	"rewardkit/core"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

// Bridge fans an event stream out to multiple hooks.
type Bridge struct{ hooks []Hook }

func NewBridge(hooks ...Hook) *Bridge { return &Bridge{hooks: hooks} }

func (b *Bridge) OnEvent(e core.Event) {
	for _, h := range b.hooks {
		h.OnEvent(e)
	}
}

// DAU tracks users who claimed or played on a given day.
type DAU struct {
	mu   sync.Mutex
	days map[string]map[core.UserID]struct{}
}

func NewDAU() *DAU { return &DAU{days: map[string]map[core.UserID]struct{}{}} }

func (d *DAU) OnEvent(e core.Event) {
	if e.UserID == "" {
		return
	}
	day := e.Time.UTC().Format("2006-01-02")
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[core.UserID]struct{}{}
		d.days[day] = m
	}
	m[e.UserID] = struct{}{}
}

func (d *DAU) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// ClaimMetrics aggregates reward activity counters.
type ClaimMetrics struct {
	mu sync.RWMutex

	claimsByDay        map[string]int64
	resetsByDay        map[string]int64
	goalsByDay         map[string]int64
	bonusesByDay       map[string]int64
	remindersByDay     map[string]int64
	streakDistribution map[int]int64
	goalsByThreshold   map[int]int64
}

func NewClaimMetrics() *ClaimMetrics {
	return &ClaimMetrics{
		claimsByDay:        make(map[string]int64),
		resetsByDay:        make(map[string]int64),
		goalsByDay:         make(map[string]int64),
		bonusesByDay:       make(map[string]int64),
		remindersByDay:     make(map[string]int64),
		streakDistribution: make(map[int]int64),
		goalsByThreshold:   make(map[int]int64),
	}
}

func (m *ClaimMetrics) OnEvent(e core.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := e.Time.UTC().Format("2006-01-02")

	switch e.Type {
	case core.EventDailyClaimed:
		m.claimsByDay[day]++
		m.streakDistribution[e.Streak]++
	case core.EventStreakReset:
		m.resetsByDay[day]++
	case core.EventGoalReached:
		m.goalsByDay[day]++
		m.goalsByThreshold[e.Threshold]++
	case core.EventHourlyBonus:
		m.bonusesByDay[day]++
	case core.EventClaimReminder:
		m.remindersByDay[day]++
	}
}

func (m *ClaimMetrics) ClaimsOn(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claimsByDay[day]
}

func (m *ClaimMetrics) ResetsOn(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resetsByDay[day]
}

func (m *ClaimMetrics) GoalsOn(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.goalsByDay[day]
}

func (m *ClaimMetrics) BonusesOn(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bonusesByDay[day]
}

func (m *ClaimMetrics) StreaksOfLength(length int) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.streakDistribution[length]
}

func (m *ClaimMetrics) GoalsAtThreshold(minutes int) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.goalsByThreshold[minutes]
}

// Summary is a point-in-time rollup for logging and dashboards.
type Summary struct {
	Day       string `json:"day"`
	Claims    int64  `json:"claims"`
	Resets    int64  `json:"resets"`
	Goals     int64  `json:"goals"`
	Bonuses   int64  `json:"bonuses"`
	Reminders int64  `json:"reminders"`
}

// SummaryFor returns the rollup for one UTC day key.
func (m *ClaimMetrics) SummaryFor(day string) Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Summary{
		Day:       day,
		Claims:    m.claimsByDay[day],
		Resets:    m.resetsByDay[day],
		Goals:     m.goalsByDay[day],
		Bonuses:   m.bonusesByDay[day],
		Reminders: m.remindersByDay[day],
	}
}

// Today returns the current UTC day key.
func Today() string { return time.Now().UTC().Format("2006-01-02") }
