// Package leaderboard ranks users by their highest login streak. It feeds
// off claim events, so a server can show a live streak ranking without
// touching persistence.
package leaderboard

import "rewardkit/core"

// Entry ranks a single user by streak length.
type Entry struct {
	User   core.UserID
	Streak int
}

// Board abstracts streak ranking operations.
type Board interface {
	Update(user core.UserID, streak int)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
}

// Tracker keeps a Board current from claim events. Subscribe its OnEvent
// to the daily_claimed stream.
type Tracker struct {
	board Board
}

func NewTracker(board Board) *Tracker {
	return &Tracker{board: board}
}

// OnEvent records the streak carried by claim events. Other event types
// are ignored.
func (t *Tracker) OnEvent(ev core.Event) {
	if ev.Type != core.EventDailyClaimed {
		return
	}
	if cur, ok := t.board.Get(ev.UserID); ok && cur.Streak >= ev.Streak {
		return
	}
	t.board.Update(ev.UserID, ev.Streak)
}
