package user

import (
	"rewardkit/core"
)

// Document is the flat key-path to scalar mapping exchanged with the
// persistence backends. Values are strings, ints, or lists of strings;
// dates travel as dd-MM-yyyy strings.
type Document map[string]any

// Key paths written by the core. Backends treat them as opaque.
const (
	KeyName          = "name"
	KeyMinutesPlayed = "minutes-played"

	KeyDailyDayNum         = "daily-rewards.day-num"
	KeyDailyStreakLength   = "daily-rewards.streak-length"
	KeyDailyHighestStreak  = "daily-rewards.highest-streak"
	KeyDailyStartDate      = "daily-rewards.start-date"
	KeyDailyLastCollected  = "daily-rewards.last-collected-date"
	KeyDailyCollectedDates = "daily-rewards.collected-dates"

	KeyDailyPlaytimeLastCollected  = "daily-playtime-goals.last-collected-playtime"
	KeyDailyPlaytimeDate           = "daily-playtime-goals.date"
	KeyGlobalPlaytimeLastCollected = "global-playtime-goals.last-collected-playtime"
)

// MarshalDocument serializes the record's current snapshot. The returned
// document is detached: later record mutations do not affect it.
func (r *Record) MarshalDocument() Document {
	doc := Document{
		KeyName:          r.Username(),
		KeyMinutesPlayed: r.MinutesPlayed(),
	}

	if daily, ok := r.Daily(); ok {
		doc[KeyDailyDayNum] = daily.DayNum()
		doc[KeyDailyStreakLength] = daily.StreakLength()
		doc[KeyDailyHighestStreak] = daily.HighestStreak()
		doc[KeyDailyStartDate] = daily.StartDate().String()
		if last := daily.LastCollectedDate(); !last.IsZero() {
			doc[KeyDailyLastCollected] = last.String()
		}
		dates := daily.CollectedDates()
		collected := make([]string, len(dates))
		for i, d := range dates {
			collected[i] = d.String()
		}
		doc[KeyDailyCollectedDates] = collected
	}

	if pt, ok := r.Playtime(ModuleDailyPlaytimeGoals); ok {
		doc[KeyDailyPlaytimeLastCollected] = pt.LastCollected()
		doc[KeyDailyPlaytimeDate] = pt.Date().String()
	}

	if pt, ok := r.Playtime(ModuleGlobalPlaytimeGoals); ok {
		doc[KeyGlobalPlaytimeLastCollected] = pt.LastCollected()
	}

	return doc
}

// UnmarshalDocument rebuilds a record from a persisted document. Module data
// is attached for every module in the registry; missing keys default the
// same way a brand-new user would.
func UnmarshalDocument(id core.UserID, doc Document, reg *Registry, today core.Date) *Record {
	rec := NewRecord(id, doc.stringAt(KeyName, ""))
	rec.SetMinutesPlayed(doc.intAt(KeyMinutesPlayed, 0))

	for _, moduleID := range reg.Enabled() {
		switch moduleID {
		case ModuleDailyRewards:
			if !doc.has(KeyDailyStartDate) {
				rec.AddModuleData(NewDailyRewardsData(today))
				continue
			}
			start := doc.dateAt(KeyDailyStartDate, today)
			last := doc.dateAt(KeyDailyLastCollected, core.Date{})
			var collected []core.Date
			for _, s := range doc.stringsAt(KeyDailyCollectedDates) {
				if d, err := core.ParseDate(s); err == nil {
					collected = append(collected, d)
				}
			}
			rec.AddModuleData(RestoreDailyRewardsData(
				doc.intAt(KeyDailyDayNum, 1),
				doc.intAt(KeyDailyStreakLength, 1),
				doc.intAt(KeyDailyHighestStreak, 1),
				start, last, collected,
			))
		case ModuleDailyPlaytimeGoals:
			rec.AddModuleData(RestorePlaytimeGoalsData(
				ModuleDailyPlaytimeGoals,
				doc.intAt(KeyDailyPlaytimeLastCollected, 0),
				doc.dateAt(KeyDailyPlaytimeDate, today),
			))
		case ModuleGlobalPlaytimeGoals:
			rec.AddModuleData(RestorePlaytimeGoalsData(
				ModuleGlobalPlaytimeGoals,
				doc.intAt(KeyGlobalPlaytimeLastCollected, 0),
				core.Date{},
			))
		default:
			if data, ok := reg.NewData(moduleID, today); ok {
				rec.AddModuleData(data)
			}
		}
	}

	return rec
}

func (d Document) has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d Document) stringAt(key, def string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return def
}

// intAt tolerates the numeric types produced by JSON and YAML decoding.
func (d Document) intAt(key string, def int) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func (d Document) dateAt(key string, def core.Date) core.Date {
	s, ok := d[key].(string)
	if !ok {
		return def
	}
	date, err := core.ParseDate(s)
	if err != nil {
		return def
	}
	return date
}

func (d Document) stringsAt(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
