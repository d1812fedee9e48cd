package main

import (
	"testing"
	"time"
)

func TestParseNow(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	e := &env{loc: loc}

	got, err := e.parseNow("2024-03-15")
	if err != nil {
		t.Fatalf("parseNow(date) error: %v", err)
	}
	if want := time.Date(2024, 3, 15, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Errorf("parseNow(date) = %v, want %v", got, want)
	}

	got, err = e.parseNow("2024-03-15T12:00:00Z")
	if err != nil {
		t.Fatalf("parseNow(rfc3339) error: %v", err)
	}
	if got.Hour() != 9 || got.Location() != loc {
		t.Errorf("parseNow(rfc3339) = %v, want 09:00 in BRT", got)
	}

	if _, err := e.parseNow("15/03/2024"); err == nil {
		t.Error("expected error for unsupported layout")
	}

	if got, err := e.parseNow("  "); err != nil || got.IsZero() {
		t.Errorf("parseNow(blank) = %v, %v", got, err)
	}
}

func TestCommandNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range commands {
		if c.Name() == "" || c.Synopsis() == "" {
			t.Errorf("command %T is missing a name or synopsis", c)
		}
		if seen[c.Name()] {
			t.Errorf("duplicate command %q", c.Name())
		}
		seen[c.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("registered %d commands, want 6", len(seen))
	}
}
