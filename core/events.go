package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventUserLoaded     EventType = "user_loaded"
	EventUserUnloaded   EventType = "user_unloaded"
	EventDailyClaimed   EventType = "daily_claimed"
	EventStreakReset    EventType = "streak_reset"
	EventGoalReached    EventType = "goal_reached"
	EventHourlyBonus    EventType = "hourly_bonus"
	EventClaimReminder  EventType = "claim_reminder"
	EventRecordSaved    EventType = "record_saved"
	EventTablesReloaded EventType = "tables_reloaded"
)

// Event represents an immutable domain event.
type Event struct {
	Type       EventType      `json:"type"`
	Time       time.Time      `json:"time"`
	UserID     UserID         `json:"user_id,omitempty"`
	Day        int            `json:"day,omitempty"`
	Streak     int            `json:"streak,omitempty"`
	Threshold  int            `json:"threshold,omitempty"`
	Multiplier float64        `json:"multiplier,omitempty"`
	Category   string         `json:"category,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewUserLoaded(user UserID) Event {
	return Event{Type: EventUserLoaded, Time: time.Now().UTC(), UserID: user}
}

func NewUserUnloaded(user UserID) Event {
	return Event{Type: EventUserUnloaded, Time: time.Now().UTC(), UserID: user}
}

func NewDailyClaimed(user UserID, day, streak int, category string) Event {
	return Event{Type: EventDailyClaimed, Time: time.Now().UTC(), UserID: user, Day: day, Streak: streak, Category: category}
}

func NewStreakReset(user UserID, previousStreak int) Event {
	return Event{Type: EventStreakReset, Time: time.Now().UTC(), UserID: user, Streak: previousStreak}
}

func NewGoalReached(user UserID, threshold int, category string) Event {
	return Event{Type: EventGoalReached, Time: time.Now().UTC(), UserID: user, Threshold: threshold, Category: category}
}

func NewHourlyBonus(user UserID, multiplier float64) Event {
	return Event{Type: EventHourlyBonus, Time: time.Now().UTC(), UserID: user, Multiplier: multiplier}
}

func NewClaimReminder(user UserID) Event {
	return Event{Type: EventClaimReminder, Time: time.Now().UTC(), UserID: user}
}

func NewRecordSaved(user UserID) Event {
	return Event{Type: EventRecordSaved, Time: time.Now().UTC(), UserID: user}
}

func NewTablesReloaded() Event {
	return Event{Type: EventTablesReloaded, Time: time.Now().UTC()}
}
