package leaderboard

import (
	"testing"

	"rewardkit/core"
)

func TestSkipListBasic(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)
	s.Update(core.UserID("b"), 20)
	s.Update(core.UserID("c"), 15)
	top := s.TopN(3)
	if len(top) != 3 || top[0].User != core.UserID("b") || top[1].User != core.UserID("c") || top[2].User != core.UserID("a") {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update(core.UserID("a"), 25)
	top = s.TopN(1)
	if top[0].User != core.UserID("a") {
		t.Fatalf("top should be a, got %#v", top)
	}
}

func TestSkipListTiesOrderByUser(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("zoe"), 7)
	s.Update(core.UserID("amy"), 7)
	top := s.TopN(2)
	if top[0].User != core.UserID("amy") || top[1].User != core.UserID("zoe") {
		t.Fatalf("ties should order by user id: %#v", top)
	}
}

func TestSkipListRemove(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 5)
	s.Update(core.UserID("b"), 3)
	s.Remove(core.UserID("a"))
	if _, ok := s.Get(core.UserID("a")); ok {
		t.Fatal("expected a removed")
	}
	top := s.TopN(5)
	if len(top) != 1 || top[0].User != core.UserID("b") {
		t.Fatalf("unexpected board: %#v", top)
	}
}

func TestTrackerKeepsHighestStreak(t *testing.T) {
	board := NewSkipList()
	tr := NewTracker(board)

	tr.OnEvent(core.NewDailyClaimed("alice", 3, 3, ""))
	tr.OnEvent(core.NewDailyClaimed("alice", 1, 1, "")) // reset claim, lower streak
	tr.OnEvent(core.NewClaimReminder("alice"))          // ignored

	e, ok := board.Get(core.UserID("alice"))
	if !ok || e.Streak != 3 {
		t.Fatalf("expected streak 3 kept, got %#v ok=%v", e, ok)
	}

	tr.OnEvent(core.NewDailyClaimed("alice", 4, 4, ""))
	e, _ = board.Get(core.UserID("alice"))
	if e.Streak != 4 {
		t.Fatalf("expected streak 4, got %d", e.Streak)
	}
}
