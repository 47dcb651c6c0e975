package rewarder

import (
	"context"
	"testing"

	mem "rewardkit/adapters/memory"
	"rewardkit/core"
	"rewardkit/engine"
	"rewardkit/realtime"
	"rewardkit/rewards"
	"rewardkit/user"
)

func testTables() rewards.Tables {
	return rewards.Tables{
		Daily: rewards.NewDayTable(3, map[int]rewards.Collection{
			1: {Category: "small", Actions: []rewards.Action{rewards.MessageAction{Message: "day one"}}},
		}, rewards.Collection{Category: "small"}),
	}
}

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	var granted []rewards.Action
	svc := New(
		WithRealtime(hub),
		WithBackend(mem.New()),
		WithDispatchMode(engine.DispatchSync),
		WithGranter(engine.GranterFunc(func(_ context.Context, _ *user.Record, a rewards.Action) error {
			granted = append(granted, a)
			return nil
		})),
	)
	defer svc.Close()
	svc.Reload(testTables())

	_, ch := hub.Subscribe(8)

	claim, err := svc.ClaimDaily(context.Background(), "alice")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.Result.Day != 1 {
		t.Fatalf("expected day 1, got %d", claim.Result.Day)
	}
	if len(granted) != 1 {
		t.Fatalf("expected 1 granted action, got %d", len(granted))
	}

	// realtime bridge should receive the load and claim events
	seen := map[core.EventType]bool{}
	for i := 0; i < 2; i++ {
		ev := <-ch
		seen[ev.Type] = true
	}
	if !seen[core.EventUserLoaded] || !seen[core.EventDailyClaimed] {
		t.Fatalf("expected user_loaded and daily_claimed bridged, got %v", seen)
	}
}

func TestNewInMemoryFallback(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()
	svc.Reload(testTables())

	if _, err := svc.ClaimDaily(context.Background(), "bob"); err != nil {
		t.Fatalf("fallback claim: %v", err)
	}
	if !svc.HasClaimedToday("bob") {
		t.Fatal("expected bob to have claimed today")
	}
}

func TestNewDisabledModule(t *testing.T) {
	reg := user.NewRegistry()
	reg.Register(user.ModuleDailyRewards, func(today core.Date) user.ModuleData {
		return user.NewDailyRewardsData(today)
	})

	svc := New(WithModules(reg), WithDispatchMode(engine.DispatchSync))
	defer svc.Close()
	svc.Reload(testTables())

	// playtime modules are not registered, so advancing grants nothing
	grants, err := svc.AdvancePlaytime(context.Background(), "carl", 90, 30)
	if err != nil {
		t.Fatalf("advance playtime: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected no grants with playtime modules disabled, got %d", len(grants))
	}
}
