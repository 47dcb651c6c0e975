package rewards

import "testing"

func namedCollection(category string) Collection {
	return Collection{Category: category, Actions: []Action{MessageAction{Message: category}}}
}

func TestDayTableFoldProperty(t *testing.T) {
	table := NewDayTable(7, map[int]Collection{
		1: namedCollection("small"),
		3: namedCollection("medium"),
		7: namedCollection("large"),
	}, namedCollection("default"))

	// For day > cycleLength, resolve(day) == resolve(fold(day)) when the
	// folded key exists, else the default.
	for day := 8; day <= 50; day++ {
		folded := ((day-1)%7 + 1)
		got := table.Resolve(day)
		want := table.Resolve(folded)
		if got.Category != want.Category {
			t.Fatalf("day %d: resolved %q, folded day %d resolved %q", day, got.Category, folded, want.Category)
		}
	}

	if got := table.Resolve(10); got.Category != "medium" { // folds to 3
		t.Fatalf("day 10 should fold to day 3, got %q", got.Category)
	}
	if got := table.Resolve(12); got.Category != "default" { // folds to 5, unset
		t.Fatalf("day 12 should fall back to default, got %q", got.Category)
	}
}

func TestDayTableZeroValue(t *testing.T) {
	var table DayTable // built without NewDayTable, no cycle configured

	for _, day := range []int{0, 1, 5, 366} {
		want := day
		if day < 1 {
			want = 1
		}
		if got := table.Fold(day); got != want {
			t.Fatalf("fold(%d) on a zero-value table = %d, want %d", day, got, want)
		}
	}
	if got := table.Resolve(3); !got.IsEmpty() {
		t.Fatalf("zero-value table must resolve to an empty collection, got %+v", got)
	}
}

func TestDayTableExactMatchBeatsFold(t *testing.T) {
	table := NewDayTable(3, map[int]Collection{
		1:   namedCollection("small"),
		100: namedCollection("milestone"),
	}, namedCollection("default"))

	if got := table.Resolve(100); got.Category != "milestone" {
		t.Fatalf("exact milestone day must win, got %q", got.Category)
	}
	if got := table.Resolve(4); got.Category != "small" { // folds to 1
		t.Fatalf("day 4 should fold to day 1, got %q", got.Category)
	}
}

func TestNextOfCategory(t *testing.T) {
	table := NewDayTable(30, map[int]Collection{
		2:  namedCollection("small"),
		7:  namedCollection("LARGE"),
		14: namedCollection("large"),
		21: namedCollection("small"),
	}, namedCollection("default"))

	day, ok := table.NextOfCategory(3, "large")
	if !ok || day != 7 {
		t.Fatalf("expected day 7 (case-insensitive), got %d ok=%v", day, ok)
	}
	day, ok = table.NextOfCategory(7, "large")
	if !ok || day != 14 {
		t.Fatalf("expected day 14, got %d ok=%v", day, ok)
	}
	if _, ok := table.NextOfCategory(21, "small"); ok {
		t.Fatal("no future day qualifies")
	}
}

func TestMinuteTableInRange(t *testing.T) {
	table := NewMinuteTable(map[int]Collection{
		60:  namedCollection("hour"),
		120: namedCollection("two-hours"),
		180: namedCollection("three-hours"),
	})

	due := table.InRange(0, 190)
	if len(due) != 3 {
		t.Fatalf("expected 3 thresholds, got %d", len(due))
	}
	for i, want := range []int{60, 120, 180} {
		if due[i].Minutes != want {
			t.Fatalf("expected ascending order, got %v", due)
		}
	}

	// Bounds: lower exclusive, upper inclusive.
	if got := table.InRange(60, 180); len(got) != 2 || got[0].Minutes != 120 {
		t.Fatalf("expected (60,180] = {120,180}, got %v", got)
	}
	if got := table.InRange(180, 150); len(got) != 0 {
		t.Fatalf("inverted range must be empty, got %v", got)
	}
}

func TestMultiplierSelect(t *testing.T) {
	table := NewMultiplierTable([]MultiplierEntry{
		{Permission: "vip", Multiplier: 2},
		{Permission: "mvp", Multiplier: 3},
		{Permission: "elite", Multiplier: 3},
		{Permission: "staff", Multiplier: 1.5},
	})

	holds := func(perms ...string) func(string) bool {
		set := map[string]bool{}
		for _, p := range perms {
			set[p] = true
		}
		return func(p string) bool { return set[p] }
	}

	e, ok := table.Select(holds("vip", "staff"))
	if !ok || e.Multiplier != 2 {
		t.Fatalf("expected vip x2, got %+v ok=%v", e, ok)
	}

	// Strictly-greater comparison: first of the tied entries wins.
	e, ok = table.Select(holds("mvp", "elite"))
	if !ok || e.Permission != "mvp" {
		t.Fatalf("expected first tied entry, got %+v", e)
	}

	if _, ok := table.Select(holds()); ok {
		t.Fatal("no held permission must select nothing")
	}
	if _, ok := NewMultiplierTable(nil).Select(holds("vip")); ok {
		t.Fatal("empty table must select nothing")
	}
}
