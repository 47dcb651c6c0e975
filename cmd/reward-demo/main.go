package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	mem "rewardkit/adapters/memory"
	ws "rewardkit/adapters/websocket"
	"rewardkit/core"
	"rewardkit/engine"
	"rewardkit/leaderboard"
	"rewardkit/realtime"
	"rewardkit/rewarder"
	"rewardkit/rewards"
	"rewardkit/user"
)

// demoTables is a small built-in reward set so the demo runs without files.
func demoTables() rewards.Tables {
	return rewards.Tables{
		Daily: rewards.NewDayTable(7, map[int]rewards.Collection{
			1: {Category: "small", Actions: []rewards.Action{rewards.ItemAction{Item: "bread", Amount: 3}}},
			7: {Category: "large", Actions: []rewards.Action{rewards.CommandAction{Command: "give %user% diamond 1"}}},
		}, rewards.Collection{
			Category: "small",
			Actions:  []rewards.Action{rewards.MessageAction{Message: "Daily reward collected!"}},
		}),
		DailyPlaytime: rewards.NewMinuteTable(map[int]rewards.Collection{
			30: {Actions: []rewards.Action{rewards.ItemAction{Item: "cooked_beef", Amount: 8}}},
		}),
		GlobalPlaytime: rewards.NewMinuteTable(map[int]rewards.Collection{
			60: {Actions: []rewards.Action{rewards.CommandAction{Command: "give %user% emerald 1"}}},
		}),
		Hourly: rewards.NewMultiplierTable([]rewards.MultiplierEntry{
			{Permission: "vip", Multiplier: 2},
		}),
	}
}

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	ctx := context.Background()
	hub := realtime.NewHub()
	svc := rewarder.New(
		rewarder.WithBackend(mem.New()),
		rewarder.WithRealtime(hub),
		rewarder.WithDispatchMode(engine.DispatchAsync),
		rewarder.WithGranter(engine.GranterFunc(func(_ context.Context, rec *user.Record, a rewards.Action) error {
			slog.Info("granting reward", "user", rec.ID(), "action", a.Type())
			return nil
		})),
		// every demo user counts as vip for the hourly bonus
		rewarder.WithPermissions(engine.PermissionsFunc(func(core.UserID, string) bool { return true })),
	)
	svc.Reload(demoTables())

	board := leaderboard.NewSkipList()
	tracker := leaderboard.NewTracker(board)
	svc.Subscribe(core.EventDailyClaimed, func(_ context.Context, e core.Event) { tracker.OnEvent(e) })

	http.Handle("/ws", ws.Handler(hub))
	http.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, board.TopN(10))
	})
	http.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		// routes: POST /users/{id}/claim, POST /users/{id}/playtime?total=&today=,
		//         POST /users/{id}/hourly, GET /users/{id}
		parts := split(r.URL.Path, '/')
		if len(parts) < 2 {
			http.NotFound(w, r)
			return
		}
		id := core.UserID(parts[1])
		switch r.Method {
		case http.MethodPost:
			if len(parts) >= 3 && parts[2] == "claim" {
				claim, err := svc.ClaimDaily(ctx, id)
				if errors.Is(err, core.ErrAlreadyClaimed) {
					writeJSON(w, map[string]any{"claimed": false, "err": "already claimed today"})
					return
				}
				if err != nil {
					http.Error(w, err.Error(), 500)
					return
				}
				writeJSON(w, map[string]any{
					"claimed": true,
					"day":     claim.Result.Day,
					"streak":  claim.Result.Streak,
					"rewards": claim.Collection.Count(),
				})
				return
			}
			if len(parts) >= 3 && parts[2] == "playtime" {
				total, _ := strconv.Atoi(r.URL.Query().Get("total"))
				today, _ := strconv.Atoi(r.URL.Query().Get("today"))
				grants, err := svc.AdvancePlaytime(ctx, id, total, today)
				writeJSON(w, map[string]any{"grants": len(grants), "err": errString(err)})
				return
			}
			if len(parts) >= 3 && parts[2] == "hourly" {
				entry, ok, err := svc.HourlyBonus(ctx, id)
				writeJSON(w, map[string]any{"matched": ok, "multiplier": entry.Multiplier, "err": errString(err)})
				return
			}
		case http.MethodGet:
			writeJSON(w, map[string]any{"claimed_today": svc.HasClaimedToday(id)})
			return
		}
		http.NotFound(w, r)
	})

	slog.Info("starting reward demo server on :8080")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

func split(p string, sep rune) []string {
	var parts []string
	current := make([]rune, 0, len(p))

	for _, r := range p {
		if r == sep {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = current[:0]
			}
			continue
		}
		current = append(current, r)
	}

	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	return parts
}
