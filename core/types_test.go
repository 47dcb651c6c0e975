package core

import (
	"testing"
	"time"
)

func TestNormalizeUserID(t *testing.T) {
	id, err := NormalizeUserID("  Player-One ")
	if err != nil {
		t.Fatal(err)
	}
	if id != "player-one" {
		t.Fatalf("got %q", id)
	}
	if _, err := NormalizeUserID("   "); err == nil {
		t.Fatal("expected error for blank id")
	}
}

func TestDateWireFormat(t *testing.T) {
	d, err := ParseDate("07-03-2024")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "07-03-2024" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	if d != NewDate(2024, time.March, 7) {
		t.Fatal("parsed date does not match components")
	}
	if _, err := ParseDate("2024-03-07"); err == nil {
		t.Fatal("expected error for ISO layout")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	next := d.AddDays(1)
	if next != NewDate(2024, time.February, 29) {
		t.Fatalf("leap day expected, got %s", next)
	}
	if next.DaysSince(d) != 1 {
		t.Fatal("DaysSince across one day")
	}
	if NewDate(2024, time.March, 3).DaysSince(d) != 4 {
		t.Fatal("DaysSince across month boundary")
	}
	if !d.Before(next) || !next.After(d) {
		t.Fatal("ordering")
	}
}

func TestDateZero(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	b, err := d.MarshalJSON()
	if err != nil || string(b) != "null" {
		t.Fatalf("zero date should marshal to null, got %s", b)
	}
	var parsed Date
	if err := parsed.UnmarshalJSON([]byte("null")); err != nil || !parsed.IsZero() {
		t.Fatal("null should unmarshal to zero date")
	}
}
