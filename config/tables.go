package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rewardkit/rewards"
)

// tablesFile mirrors the on-disk YAML layout of the reward tables.
type tablesFile struct {
	ReminderPeriod    string            `yaml:"reminder-period"`
	CategoryTemplates map[string]string `yaml:"category-templates"`
	Daily             dailySection      `yaml:"daily-rewards"`
	DailyPlaytime     goalsSection      `yaml:"daily-playtime-goals"`
	GlobalPlaytime    goalsSection      `yaml:"global-playtime-goals"`
	Hourly            hourlySection     `yaml:"hourly-bonus"`
}

type collectionSpec struct {
	Priority    int              `yaml:"priority"`
	Category    string           `yaml:"category"`
	Lore        []string         `yaml:"lore"`
	RedeemSound string           `yaml:"redeem-sound"`
	DisplayItem string           `yaml:"display-item"`
	Rewards     []map[string]any `yaml:"rewards"`
}

type dailySection struct {
	CycleLength int                       `yaml:"cycle-length"`
	Days        map[string]collectionSpec `yaml:"days"`
}

type goalSpec struct {
	PlayMinutes    int `yaml:"play-minutes"`
	PlayHours      int `yaml:"play-hours"`
	collectionSpec `yaml:",inline"`
}

type goalsSection struct {
	Goals []goalSpec `yaml:"goals"`
}

type hourlyEntry struct {
	Multiplier float64          `yaml:"multiplier"`
	Rewards    []map[string]any `yaml:"rewards"`
}

type hourlySection struct {
	Permissions map[string]hourlyEntry `yaml:"permissions"`
}

// LoadTables parses the reward table file into an immutable Tables value.
// Malformed entries are logged and skipped so one bad reward never takes
// the whole configuration down; only an unreadable or unparseable file is
// an error.
func LoadTables(path string, reg *rewards.ActionRegistry) (rewards.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rewards.Tables{}, fmt.Errorf("read rewards file %s: %w", path, err)
	}

	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return rewards.Tables{}, fmt.Errorf("parse rewards file %s: %w", path, err)
	}

	t := rewards.Tables{
		Daily:          buildDayTable(file.Daily, reg),
		DailyPlaytime:  buildMinuteTable("daily-playtime-goals", file.DailyPlaytime, reg),
		GlobalPlaytime: buildMinuteTable("global-playtime-goals", file.GlobalPlaytime, reg),
		Hourly:         buildMultiplierTable(file.Hourly, reg),
	}

	if file.ReminderPeriod != "" {
		period, err := time.ParseDuration(file.ReminderPeriod)
		if err != nil {
			slog.Warn("invalid reminder-period, reminders disabled", "value", file.ReminderPeriod, "error", err)
		} else {
			t.ReminderPeriod = period
		}
	}

	if len(file.CategoryTemplates) > 0 {
		t.CategoryTemplates = make(map[string]string, len(file.CategoryTemplates))
		for category, item := range file.CategoryTemplates {
			t.CategoryTemplates[strings.ToLower(category)] = item
		}
	}

	return t, nil
}

// parseDayKey accepts "default", "day-N", or a bare number.
func parseDayKey(key string) (day int, isDefault bool, err error) {
	if strings.EqualFold(key, "default") {
		return 0, true, nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, key)
	if digits == "" {
		return 0, false, fmt.Errorf("day key %q has no day number", key)
	}
	day, err = strconv.Atoi(digits)
	if err != nil || day < 1 {
		return 0, false, fmt.Errorf("day key %q is not a valid day number", key)
	}
	return day, false, nil
}

func buildDayTable(section dailySection, reg *rewards.ActionRegistry) rewards.DayTable {
	days := make(map[int]rewards.Collection, len(section.Days))
	var def rewards.Collection
	maxDay := 0
	for key, spec := range section.Days {
		day, isDefault, err := parseDayKey(key)
		if err != nil {
			slog.Warn("skipping daily reward entry", "key", key, "error", err)
			continue
		}
		c := buildCollection("daily-rewards."+key, spec, reg)
		if isDefault {
			def = c
			continue
		}
		days[day] = c
		if day > maxDay {
			maxDay = day
		}
	}
	cycle := section.CycleLength
	if cycle < 1 {
		cycle = maxDay
	}
	return rewards.NewDayTable(cycle, days, def)
}

func buildMinuteTable(name string, section goalsSection, reg *rewards.ActionRegistry) rewards.MinuteTable {
	minutes := make(map[int]rewards.Collection, len(section.Goals))
	for i, goal := range section.Goals {
		threshold := goal.PlayMinutes
		if threshold == 0 {
			threshold = goal.PlayHours * 60
		}
		if threshold < 1 {
			slog.Warn("skipping playtime goal without play-minutes or play-hours", "table", name, "index", i)
			continue
		}
		minutes[threshold] = buildCollection(fmt.Sprintf("%s[%d]", name, i), goal.collectionSpec, reg)
	}
	return rewards.NewMinuteTable(minutes)
}

func buildMultiplierTable(section hourlySection, reg *rewards.ActionRegistry) rewards.MultiplierTable {
	entries := make([]rewards.MultiplierEntry, 0, len(section.Permissions))
	for permission, raw := range section.Permissions {
		if raw.Multiplier <= 0 {
			slog.Warn("skipping hourly bonus with non-positive multiplier", "permission", permission, "multiplier", raw.Multiplier)
			continue
		}
		entries = append(entries, rewards.MultiplierEntry{
			Permission: permission,
			Multiplier: raw.Multiplier,
			Actions:    buildActions("hourly-bonus."+permission, raw.Rewards, reg),
		})
	}
	return rewards.NewMultiplierTable(entries)
}

func buildCollection(where string, spec collectionSpec, reg *rewards.ActionRegistry) rewards.Collection {
	return rewards.Collection{
		Priority:    spec.Priority,
		Category:    spec.Category,
		Lore:        spec.Lore,
		RedeemSound: spec.RedeemSound,
		DisplayItem: spec.DisplayItem,
		Actions:     buildActions(where, spec.Rewards, reg),
	}
}

func buildActions(where string, raws []map[string]any, reg *rewards.ActionRegistry) []rewards.Action {
	actions := make([]rewards.Action, 0, len(raws))
	for i, raw := range raws {
		action, err := reg.Build(raw)
		if err != nil {
			slog.Warn("skipping reward action", "at", fmt.Sprintf("%s.rewards[%d]", where, i), "error", err)
			continue
		}
		actions = append(actions, action)
	}
	return actions
}
