package clock

import (
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("starts at the given time", func(t *testing.T) {
		c := NewManualClock(start)
		if !c.Now().Equal(start) {
			t.Errorf("Now() = %v, want %v", c.Now(), start)
		}
	})

	t.Run("advance moves time forward", func(t *testing.T) {
		c := NewManualClock(start)
		c.Advance(5 * time.Minute)
		want := start.Add(5 * time.Minute)
		if !c.Now().Equal(want) {
			t.Errorf("Now() = %v, want %v", c.Now(), want)
		}
	})

	t.Run("set replaces the current time", func(t *testing.T) {
		c := NewManualClock(start)
		later := start.Add(24 * time.Hour)
		c.Set(later)
		if !c.Now().Equal(later) {
			t.Errorf("Now() = %v, want %v", c.Now(), later)
		}
	})

	t.Run("zero start defaults to now", func(t *testing.T) {
		c := NewManualClock(time.Time{})
		if c.Now().IsZero() {
			t.Error("expected non-zero start time")
		}
	})
}
