package view

import (
	"testing"
	"time"
)

var (
	_ Timestamps = (*timestamps)(nil)
	_ Preview    = (*preview)(nil)
	_ UI         = (*RootView)(nil)
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "+00:00"},
		{65 * time.Second, "+01:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "+1:02:03"},
	}
	for _, c := range cases {
		if got := formatElapsed(c.d); got != c.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

// Unset timestamp labels are skipped rather than dereferenced.
func TestTimestamps_NilLabels(t *testing.T) {
	var s *timestamps
	s.Set(time.Now(), time.Now(), time.Second, true)
	(&timestamps{}).Set(time.Time{}, time.Time{}, 0, false)
}

func TestParseHelpers(t *testing.T) {
	if i, ok := parseIntField(" 42 "); !ok || i != 42 {
		t.Fatalf("parseIntField: %d %v", i, ok)
	}
	if _, ok := parseIntField("x"); ok {
		t.Fatal("expected failure")
	}
	if b, ok := parseBoolLoose("Yes"); !ok || !b {
		t.Fatal("parseBoolLoose yes")
	}
	if _, ok := parseBoolLoose("maybe"); ok {
		t.Fatal("parseBoolLoose accepted maybe")
	}
}
