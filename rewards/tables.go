package rewards

import (
	"sort"
	"strings"
	"time"
)

// DayTable resolves a day number to its reward collection.
//
// Lookup is two-step: an exact match on the raw day number wins, letting
// operators define milestone days beyond the loop; otherwise the day is
// folded into [1, cycleLength] and retried; otherwise the default applies.
type DayTable struct {
	cycleLength int
	days        map[int]Collection
	def         Collection
}

// NewDayTable copies the day mapping so the table stays immutable.
func NewDayTable(cycleLength int, days map[int]Collection, def Collection) DayTable {
	if cycleLength < 1 {
		cycleLength = 1
	}
	copied := make(map[int]Collection, len(days))
	for k, v := range days {
		copied[k] = v
	}
	return DayTable{cycleLength: cycleLength, days: copied, def: def}
}

func (t DayTable) CycleLength() int { return t.cycleLength }

func (t DayTable) Default() Collection { return t.def }

// Fold maps a day number into the configured cycle: ((day-1) mod n) + 1.
// A zero-value table has no cycle; the day stands as-is.
func (t DayTable) Fold(day int) int {
	if day < 1 {
		return 1
	}
	if t.cycleLength < 1 {
		return day
	}
	return ((day - 1) % t.cycleLength) + 1
}

// Resolve picks the collection owed for a day number.
func (t DayTable) Resolve(day int) Collection {
	if c, ok := t.days[day]; ok {
		return c
	}
	if c, ok := t.days[t.Fold(day)]; ok {
		return c
	}
	return t.def
}

// NextOfCategory returns the smallest configured day key strictly greater
// than fromDay whose collection carries the category (case-insensitive).
// Storage order is irrelevant; this is a plain minimum search.
func (t DayTable) NextOfCategory(fromDay int, category string) (int, bool) {
	next := 0
	for day, c := range t.days {
		if day <= fromDay {
			continue
		}
		if next != 0 && day > next {
			continue
		}
		if strings.EqualFold(c.Category, category) {
			next = day
		}
	}
	return next, next != 0
}

// Threshold pairs a minute key with its collection.
type Threshold struct {
	Minutes    int
	Collection Collection
}

// MinuteTable resolves playtime goals by exact minute threshold. No folding.
type MinuteTable struct {
	minutes map[int]Collection
}

func NewMinuteTable(minutes map[int]Collection) MinuteTable {
	copied := make(map[int]Collection, len(minutes))
	for k, v := range minutes {
		copied[k] = v
	}
	return MinuteTable{minutes: copied}
}

func (t MinuteTable) At(minutes int) (Collection, bool) {
	c, ok := t.minutes[minutes]
	return c, ok
}

func (t MinuteTable) Len() int { return len(t.minutes) }

// InRange returns every threshold in (lower, upper] in ascending minute
// order, so offline catch-up grants chronologically.
func (t MinuteTable) InRange(lower, upper int) []Threshold {
	var due []Threshold
	for minutes, c := range t.minutes {
		if minutes > lower && minutes <= upper {
			due = append(due, Threshold{Minutes: minutes, Collection: c})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Minutes < due[j].Minutes })
	return due
}

// MultiplierEntry is one permission-gated hourly bonus.
type MultiplierEntry struct {
	Permission string
	Multiplier float64
	Actions    []Action
}

// MultiplierTable selects the greatest multiplier a user's permissions allow.
type MultiplierTable struct {
	entries []MultiplierEntry
}

func NewMultiplierTable(entries []MultiplierEntry) MultiplierTable {
	return MultiplierTable{entries: append([]MultiplierEntry(nil), entries...)}
}

func (t MultiplierTable) Len() int { return len(t.entries) }

// Select scans the table keeping the entry with the strictly greatest
// multiplier among permissions the user holds. Ties keep the first seen;
// callers must not rely on tie order. ok is false when nothing matches.
func (t MultiplierTable) Select(has func(permission string) bool) (MultiplierEntry, bool) {
	var best MultiplierEntry
	found := false
	for _, e := range t.entries {
		if !has(e.Permission) {
			continue
		}
		if !found || e.Multiplier > best.Multiplier {
			best = e
			found = true
		}
	}
	return best, found
}

// Tables is one immutable generation of reward configuration. Reload
// replaces the whole value atomically.
type Tables struct {
	Daily             DayTable
	DailyPlaytime     MinuteTable
	GlobalPlaytime    MinuteTable
	Hourly            MultiplierTable
	ReminderPeriod    time.Duration
	CategoryTemplates map[string]string
}

// CategoryTemplate resolves a display item for a category label.
func (t Tables) CategoryTemplate(category string) string {
	return t.CategoryTemplates[strings.ToLower(category)]
}
