package user

import (
	"sort"
	"sync"

	"rewardkit/core"
)

// DailyRewardsData is the daily-streak state machine for one user.
//
// The machine has two effective states: needs-claim and already-claimed-today,
// decided by comparing lastCollectedDate with the claim date. All transitions
// happen in Claim; administrative setters bypass the transition rules.
type DailyRewardsData struct {
	mu                sync.Mutex
	dayNum            int
	streakLength      int
	highestStreak     int
	startDate         core.Date
	lastCollectedDate core.Date // zero before the first claim
	collectedDates    map[core.Date]struct{}
}

// NewDailyRewardsData is the state for a user seen for the first time:
// day 1, streak 1, start date today, nothing collected yet.
func NewDailyRewardsData(today core.Date) *DailyRewardsData {
	return &DailyRewardsData{
		dayNum:         1,
		streakLength:   1,
		highestStreak:  1,
		startDate:      today,
		collectedDates: make(map[core.Date]struct{}),
	}
}

// RestoreDailyRewardsData rebuilds state from a persisted record.
func RestoreDailyRewardsData(dayNum, streakLength, highestStreak int, startDate, lastCollected core.Date, collected []core.Date) *DailyRewardsData {
	d := &DailyRewardsData{
		dayNum:            max(dayNum, 1),
		streakLength:      max(streakLength, 1),
		highestStreak:     max(highestStreak, 1),
		startDate:         startDate,
		lastCollectedDate: lastCollected,
		collectedDates:    make(map[core.Date]struct{}, len(collected)),
	}
	for _, date := range collected {
		d.collectedDates[date] = struct{}{}
	}
	return d
}

func (d *DailyRewardsData) ModuleID() string { return ModuleDailyRewards }

// ClaimResult describes the state after a successful claim.
type ClaimResult struct {
	Day            int
	Streak         int
	HighestStreak  int
	Reset          bool // the streak was broken and restarted at 1
	PreviousStreak int  // streak length before a reset, 0 otherwise
}

// Claim runs the daily transition for the given calendar date.
//
// A second claim on the same date returns core.ErrAlreadyClaimed without
// mutating anything. Claiming the day after the last collection continues
// the streak; any longer gap resets both streak and day number to 1. The
// first ever claim collects day 1 as-is.
func (d *DailyRewardsData) Claim(today core.Date) (ClaimResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastCollectedDate == today {
		return ClaimResult{}, core.ErrAlreadyClaimed
	}

	var res ClaimResult
	if !d.lastCollectedDate.IsZero() {
		switch gap := today.DaysSince(d.lastCollectedDate); {
		case gap == 1:
			d.streakLength++
			d.dayNum++
		case gap > 1:
			res.Reset = true
			res.PreviousStreak = d.streakLength
			d.streakLength = 1
			d.dayNum = 1
		}
	}

	if d.streakLength > d.highestStreak {
		d.highestStreak = d.streakLength
	}
	d.lastCollectedDate = today
	d.collectedDates[today] = struct{}{}

	res.Day = d.dayNum
	res.Streak = d.streakLength
	res.HighestStreak = d.highestStreak
	return res, nil
}

// HasCollectedToday is the already-claimed-today predicate.
func (d *DailyRewardsData) HasCollectedToday(today core.Date) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCollectedDate == today
}

func (d *DailyRewardsData) DayNum() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dayNum
}

func (d *DailyRewardsData) StreakLength() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streakLength
}

func (d *DailyRewardsData) HighestStreak() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.highestStreak
}

func (d *DailyRewardsData) StartDate() core.Date {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startDate
}

func (d *DailyRewardsData) LastCollectedDate() core.Date {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCollectedDate
}

// SetDayNum writes the day number directly, bypassing transition rules.
// Support-command use only; collected dates are left untouched.
func (d *DailyRewardsData) SetDayNum(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dayNum = max(n, 1)
}

// SetStreakLength writes the streak directly, bypassing transition rules.
func (d *DailyRewardsData) SetStreakLength(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streakLength = max(n, 1)
	if d.streakLength > d.highestStreak {
		d.highestStreak = d.streakLength
	}
}

// CollectedDates returns the claim history in ascending order.
func (d *DailyRewardsData) CollectedDates() []core.Date {
	d.mu.Lock()
	defer d.mu.Unlock()
	dates := make([]core.Date, 0, len(d.collectedDates))
	for date := range d.collectedDates {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
