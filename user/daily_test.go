package user

import (
	"errors"
	"testing"
	"time"

	"rewardkit/core"
)

func date(day int) core.Date {
	return core.NewDate(2024, time.June, day)
}

func TestFirstClaimCollectsDayOne(t *testing.T) {
	d := NewDailyRewardsData(date(1))
	res, err := d.Claim(date(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Day != 1 || res.Streak != 1 {
		t.Fatalf("first claim should collect day 1 streak 1, got day %d streak %d", res.Day, res.Streak)
	}
	if d.LastCollectedDate() != date(1) {
		t.Fatal("last collected date not recorded")
	}
}

func TestSecondClaimSameDayRejected(t *testing.T) {
	d := NewDailyRewardsData(date(1))
	if _, err := d.Claim(date(1)); err != nil {
		t.Fatal(err)
	}
	before := ClaimResult{Day: d.DayNum(), Streak: d.StreakLength(), HighestStreak: d.HighestStreak()}

	_, err := d.Claim(date(1))
	if !errors.Is(err, core.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if d.DayNum() != before.Day || d.StreakLength() != before.Streak || d.HighestStreak() != before.HighestStreak {
		t.Fatal("rejected claim must not mutate state")
	}
	if len(d.CollectedDates()) != 1 {
		t.Fatal("collected dates must not grow on rejection")
	}
}

func TestNextDayContinuesStreak(t *testing.T) {
	d := NewDailyRewardsData(date(1))
	if _, err := d.Claim(date(1)); err != nil {
		t.Fatal(err)
	}
	res, err := d.Claim(date(2))
	if err != nil {
		t.Fatal(err)
	}
	if res.Day != 2 || res.Streak != 2 || res.Reset {
		t.Fatalf("expected day 2 streak 2, got %+v", res)
	}
}

func TestGapResetsStreak(t *testing.T) {
	d := NewDailyRewardsData(date(1))
	for day := 1; day <= 4; day++ {
		if _, err := d.Claim(date(day)); err != nil {
			t.Fatal(err)
		}
	}
	res, err := d.Claim(date(7)) // two missed days
	if err != nil {
		t.Fatal(err)
	}
	if !res.Reset || res.Day != 1 || res.Streak != 1 {
		t.Fatalf("expected reset to day 1 streak 1, got %+v", res)
	}
	if res.PreviousStreak != 4 {
		t.Fatalf("expected previous streak 4, got %d", res.PreviousStreak)
	}
	if d.HighestStreak() != 4 {
		t.Fatalf("highest streak must survive a reset, got %d", d.HighestStreak())
	}
}

func TestHighestStreakNonDecreasing(t *testing.T) {
	d := NewDailyRewardsData(date(1))
	highest := 0
	days := []int{1, 2, 3, 6, 7, 8, 9, 15}
	for _, day := range days {
		if _, err := d.Claim(date(day)); err != nil {
			t.Fatal(err)
		}
		if d.HighestStreak() < highest {
			t.Fatalf("highest streak decreased on day %d", day)
		}
		highest = d.HighestStreak()
	}
}

func TestCycleScenario(t *testing.T) {
	// Cycle of 3: start day1/streak1, claim, claim next day, skip two days,
	// claim again. Expect day1/streak1 with the prior highest intact.
	d := NewDailyRewardsData(date(1))
	if _, err := d.Claim(date(1)); err != nil {
		t.Fatal(err)
	}
	res, err := d.Claim(date(2))
	if err != nil {
		t.Fatal(err)
	}
	if res.Day != 2 || res.Streak != 2 {
		t.Fatalf("expected day2/streak2, got %+v", res)
	}
	res, err = d.Claim(date(5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Day != 1 || res.Streak != 1 {
		t.Fatalf("expected day1/streak1 after skip, got %+v", res)
	}
	if d.HighestStreak() != 2 {
		t.Fatalf("highest streak should stay 2, got %d", d.HighestStreak())
	}
}

func TestAdminSettersBypassTransitions(t *testing.T) {
	d := NewDailyRewardsData(date(1))
	if _, err := d.Claim(date(1)); err != nil {
		t.Fatal(err)
	}

	d.SetDayNum(25)
	d.SetStreakLength(10)
	if d.DayNum() != 25 || d.StreakLength() != 10 {
		t.Fatal("setters must write directly")
	}
	if d.HighestStreak() != 10 {
		t.Fatal("highest streak follows an admin raise")
	}
	if got := len(d.CollectedDates()); got != 1 {
		t.Fatalf("setters must not touch collected dates, got %d", got)
	}
	if d.LastCollectedDate() != date(1) {
		t.Fatal("setters must not touch last collected date")
	}

	// A claim after the override continues from the written values.
	res, err := d.Claim(date(2))
	if err != nil {
		t.Fatal(err)
	}
	if res.Day != 26 || res.Streak != 11 {
		t.Fatalf("expected day 26 streak 11, got %+v", res)
	}
}
