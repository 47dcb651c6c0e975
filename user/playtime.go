package user

import (
	"sync"

	"rewardkit/core"
)

// PlaytimeGoalsData tracks the highest minute threshold already granted.
//
// The watermark is the single source of truth for goal claims: thresholds in
// (watermark, total] are due, and the watermark moves to the new total only
// after those thresholds have been processed. It never decreases. The daily
// variant additionally resets its watermark when the calendar day changes.
type PlaytimeGoalsData struct {
	mu            sync.Mutex
	moduleID      string
	lastCollected int
	date          core.Date // day the watermark belongs to; zero for the global variant
}

// NewGlobalPlaytimeGoalsData starts a lifetime watermark at zero.
func NewGlobalPlaytimeGoalsData() *PlaytimeGoalsData {
	return &PlaytimeGoalsData{moduleID: ModuleGlobalPlaytimeGoals}
}

// NewDailyPlaytimeGoalsData starts today's watermark at zero.
func NewDailyPlaytimeGoalsData(today core.Date) *PlaytimeGoalsData {
	return &PlaytimeGoalsData{moduleID: ModuleDailyPlaytimeGoals, date: today}
}

// RestorePlaytimeGoalsData rebuilds state from a persisted record.
func RestorePlaytimeGoalsData(moduleID string, lastCollected int, date core.Date) *PlaytimeGoalsData {
	if lastCollected < 0 {
		lastCollected = 0
	}
	return &PlaytimeGoalsData{moduleID: moduleID, lastCollected: lastCollected, date: date}
}

func (p *PlaytimeGoalsData) ModuleID() string { return p.moduleID }

// LastCollected returns the current watermark in minutes.
func (p *PlaytimeGoalsData) LastCollected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCollected
}

// Window returns the half-open range (watermark, total] holding thresholds
// that are due. ok is false when nothing new can be owed.
func (p *PlaytimeGoalsData) Window(total int) (lower int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total <= p.lastCollected {
		return p.lastCollected, false
	}
	return p.lastCollected, true
}

// Commit advances the watermark to total once all due thresholds have been
// granted. The move is monotonic; a stale total is ignored.
func (p *PlaytimeGoalsData) Commit(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total > p.lastCollected {
		p.lastCollected = total
	}
}

// Rollover resets a daily watermark when the calendar day has changed.
// It reports whether a reset happened. The global variant never rolls over.
func (p *PlaytimeGoalsData) Rollover(today core.Date) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.moduleID != ModuleDailyPlaytimeGoals || p.date == today {
		return false
	}
	p.date = today
	p.lastCollected = 0
	return true
}

// Date returns the day the watermark belongs to (daily variant only).
func (p *PlaytimeGoalsData) Date() core.Date {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}
