package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Deadline *Date `json:"deadline"`
	}

	if err := json.Unmarshal([]byte(`{"deadline":"2026-10-19"}`), &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if payload.Deadline == nil {
		t.Fatal("expected deadline to be set")
	}
	want := Date{Year: 2026, Month: time.October, Day: 19}
	if *payload.Deadline != want {
		t.Errorf("Deadline = %+v, want %+v", *payload.Deadline, want)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"deadline":"2026-10-19"}` {
		t.Errorf("Marshal() = %s", out)
	}

	payload.Deadline = nil
	if err := json.Unmarshal([]byte(`{"deadline":null}`), &payload); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if payload.Deadline != nil {
		t.Errorf("expected nil deadline, got %v", payload.Deadline)
	}
}

func TestDate_UnmarshalInvalid(t *testing.T) {
	var d Date
	for _, input := range []string{`"19/10/2026"`, `20261019`, `"2026-13-01"`} {
		if err := json.Unmarshal([]byte(input), &d); err == nil {
			t.Errorf("Unmarshal(%s) expected error", input)
		}
	}
}

func TestDate_Scan(t *testing.T) {
	want := Date{Year: 2026, Month: time.March, Day: 7}

	sources := []any{
		time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC),
		"2026-03-07",
		[]byte("2026-03-07"),
		"2026-03-07T00:00:00Z",
	}
	for _, src := range sources {
		var d Date
		if err := d.Scan(src); err != nil {
			t.Errorf("Scan(%v) error = %v", src, err)
			continue
		}
		if d != want {
			t.Errorf("Scan(%v) = %+v, want %+v", src, d, want)
		}
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}

func TestDate_Value(t *testing.T) {
	v, err := Date{Year: 2026, Month: time.January, Day: 2}.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "2026-01-02" {
		t.Errorf("Value() = %v", v)
	}
}
