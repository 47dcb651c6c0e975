package user

import (
	"testing"
	"time"

	"rewardkit/core"
)

func TestDocumentRoundTrip(t *testing.T) {
	today := core.NewDate(2024, time.June, 10)
	reg := DefaultRegistry()

	rec := NewRecord("u1", "Steve")
	rec.SetMinutesPlayed(340)
	daily := NewDailyRewardsData(core.NewDate(2024, time.June, 1))
	for day := 1; day <= 3; day++ {
		if _, err := daily.Claim(core.NewDate(2024, time.June, day)); err != nil {
			t.Fatal(err)
		}
	}
	rec.AddModuleData(daily)
	dp := NewDailyPlaytimeGoalsData(today)
	dp.Commit(45)
	rec.AddModuleData(dp)
	gp := NewGlobalPlaytimeGoalsData()
	gp.Commit(300)
	rec.AddModuleData(gp)

	restored := UnmarshalDocument("u1", rec.MarshalDocument(), reg, today)

	if restored.Username() != "Steve" || restored.MinutesPlayed() != 340 {
		t.Fatal("identity fields lost")
	}
	rd, ok := restored.Daily()
	if !ok {
		t.Fatal("daily module missing")
	}
	if rd.DayNum() != 3 || rd.StreakLength() != 3 || rd.HighestStreak() != 3 {
		t.Fatalf("daily counters lost: day=%d streak=%d", rd.DayNum(), rd.StreakLength())
	}
	if rd.LastCollectedDate() != core.NewDate(2024, time.June, 3) {
		t.Fatal("last collected date lost")
	}
	if len(rd.CollectedDates()) != 3 {
		t.Fatal("collected dates lost")
	}
	if pt, _ := restored.Playtime(ModuleDailyPlaytimeGoals); pt.LastCollected() != 45 || pt.Date() != today {
		t.Fatal("daily playtime watermark lost")
	}
	if pt, _ := restored.Playtime(ModuleGlobalPlaytimeGoals); pt.LastCollected() != 300 {
		t.Fatal("global playtime watermark lost")
	}
}

func TestUnmarshalEmptyDocumentDefaults(t *testing.T) {
	today := core.NewDate(2024, time.June, 10)
	rec := UnmarshalDocument("u2", Document{}, DefaultRegistry(), today)

	daily, ok := rec.Daily()
	if !ok {
		t.Fatal("new users get daily module data")
	}
	if daily.DayNum() != 1 || daily.StreakLength() != 1 || daily.StartDate() != today {
		t.Fatal("fresh daily state expected")
	}
	if !daily.LastCollectedDate().IsZero() {
		t.Fatal("fresh state has no last collected date")
	}
	if pt, _ := rec.Playtime(ModuleGlobalPlaytimeGoals); pt.LastCollected() != 0 {
		t.Fatal("fresh watermark expected")
	}
}

func TestUnmarshalSkipsDisabledModules(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ModuleDailyRewards, func(today core.Date) ModuleData { return NewDailyRewardsData(today) })

	rec := UnmarshalDocument("u3", Document{
		KeyGlobalPlaytimeLastCollected: 120,
	}, reg, core.Today())

	if _, ok := rec.Playtime(ModuleGlobalPlaytimeGoals); ok {
		t.Fatal("disabled module data must not be attached")
	}
	if _, ok := rec.Daily(); !ok {
		t.Fatal("enabled module data must be attached")
	}
}
