package user

import (
	"testing"
	"time"

	"rewardkit/core"
)

func TestPlaytimeWindowAndCommit(t *testing.T) {
	p := NewGlobalPlaytimeGoalsData()

	lower, ok := p.Window(190)
	if !ok || lower != 0 {
		t.Fatalf("expected window (0,190], got lower=%d ok=%v", lower, ok)
	}
	p.Commit(190)
	if p.LastCollected() != 190 {
		t.Fatalf("watermark should be 190, got %d", p.LastCollected())
	}

	// A stale, lower total must neither open a window nor move the watermark.
	if _, ok := p.Window(150); ok {
		t.Fatal("decreasing total must not open a window")
	}
	p.Commit(150)
	if p.LastCollected() != 190 {
		t.Fatalf("watermark must never decrease, got %d", p.LastCollected())
	}
}

func TestPlaytimeWatermarkMonotonic(t *testing.T) {
	p := NewGlobalPlaytimeGoalsData()
	totals := []int{10, 40, 40, 30, 120, 90, 121}
	prev := 0
	for _, total := range totals {
		p.Commit(total)
		if p.LastCollected() < prev {
			t.Fatalf("watermark decreased at total %d", total)
		}
		prev = p.LastCollected()
	}
	if p.LastCollected() != 121 {
		t.Fatalf("expected final watermark 121, got %d", p.LastCollected())
	}
}

func TestDailyPlaytimeRollover(t *testing.T) {
	day1 := core.NewDate(2024, time.June, 1)
	day2 := core.NewDate(2024, time.June, 2)

	p := NewDailyPlaytimeGoalsData(day1)
	p.Commit(60)

	if p.Rollover(day1) {
		t.Fatal("same day must not roll over")
	}
	if !p.Rollover(day2) {
		t.Fatal("new day must roll over")
	}
	if p.LastCollected() != 0 || p.Date() != day2 {
		t.Fatal("rollover should zero the watermark and move the date")
	}

	g := NewGlobalPlaytimeGoalsData()
	g.Commit(60)
	if g.Rollover(day2) {
		t.Fatal("global variant never rolls over")
	}
	if g.LastCollected() != 60 {
		t.Fatal("global watermark must survive a rollover attempt")
	}
}
