package scheduling

import (
	"strings"
	"testing"
	"time"
)

func buenosAires(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// 2026-03-02 is a Monday, 2026-03-07 a Saturday, 2026-03-08 a Sunday.
func TestCheckInstantWeekdayBoundary(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"weekday morning open", time.Date(2026, 3, 2, 7, 30, 0, 0, loc), true},
		{"weekday just before morning close", time.Date(2026, 3, 2, 12, 29, 56, 0, loc), true},
		{"weekday morning close is exclusive", time.Date(2026, 3, 2, 12, 30, 0, 0, loc), false},
		{"weekday siesta", time.Date(2026, 3, 2, 14, 0, 0, 0, loc), false},
		{"weekday evening open", time.Date(2026, 3, 2, 16, 30, 0, 0, loc), true},
		{"weekday evening close is exclusive", time.Date(2026, 3, 2, 20, 30, 0, 0, loc), false},
		{"before opening", time.Date(2026, 3, 2, 7, 0, 0, 0, loc), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hours.CheckInstant(tt.at)
			if tt.valid && err != nil {
				t.Fatalf("expected %s to be open, got %v", tt.at, err)
			}
			if !tt.valid && err == nil {
				t.Fatalf("expected %s to be closed", tt.at)
			}
		})
	}
}

func TestCheckInstantSaturday(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	if err := hours.CheckInstant(time.Date(2026, 3, 7, 11, 59, 0, 0, loc)); err != nil {
		t.Fatalf("Saturday 11:59 should be open: %v", err)
	}
	if err := hours.CheckInstant(time.Date(2026, 3, 7, 12, 0, 0, 0, loc)); err == nil {
		t.Fatal("Saturday 12:00 should be closed")
	}
	if err := hours.CheckInstant(time.Date(2026, 3, 7, 16, 30, 0, 0, loc)); err == nil {
		t.Fatal("Saturday has no evening window")
	}
}

func TestCheckInstantSundayClosedAllDay(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	for hour := 0; hour < 24; hour++ {
		err := hours.CheckInstant(time.Date(2026, 3, 8, hour, 0, 0, 0, loc))
		if err == nil {
			t.Fatalf("Sunday %02d:00 should be closed", hour)
		}
		if !strings.Contains(err.Reason, "Sunday") {
			t.Fatalf("Sunday closure should name the day, got %q", err.Reason)
		}
	}
}

func TestCheckInstantIgnoresServerTimezone(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	// 13:00 UTC on a Monday is 10:00 in Buenos Aires: open, however the
	// instant is expressed.
	utc := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	if err := hours.CheckInstant(utc); err != nil {
		t.Fatalf("expected UTC-expressed instant to be open: %v", err)
	}

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if err := hours.CheckInstant(utc.In(tokyo)); err != nil {
		t.Fatalf("expected Tokyo-expressed instant to be open: %v", err)
	}
}

func TestCheckSpanOverflowsWindow(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	// Friday 2026-03-06. The evening window closes at 20:30.
	start := time.Date(2026, 3, 6, 20, 0, 0, 0, loc)

	if err := hours.CheckSpan(start, 45*time.Minute); err == nil {
		t.Fatal("45 minute visit from 20:00 should extend past close")
	} else if !strings.Contains(err.Reason, "extend") {
		t.Fatalf("expected overflow reason, got %q", err.Reason)
	}

	// Ending exactly at closing time is allowed.
	if err := hours.CheckSpan(start, 30*time.Minute); err != nil {
		t.Fatalf("visit ending exactly at close should pass: %v", err)
	}
}

func TestCheckSpanDoesNotBridgeWindows(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	// Starts inside the morning window and ends inside the evening one,
	// spanning the midday closure. Must be rejected.
	start := time.Date(2026, 3, 2, 11, 0, 0, 0, loc)
	if err := hours.CheckSpan(start, 7*time.Hour); err == nil {
		t.Fatal("visit spanning the midday closure should be rejected")
	}
}

func TestCheckSpanClosedDay(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	start := time.Date(2026, 3, 8, 10, 0, 0, 0, loc)
	err := hours.CheckSpan(start, 30*time.Minute)
	if err == nil || !strings.Contains(err.Reason, "Sunday") {
		t.Fatalf("expected Sunday closure, got %v", err)
	}
}

func TestDayBoundsUseBusinessTimezone(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, nil)

	// 01:30 UTC on March 3rd is still March 2nd, 22:30 in Buenos Aires.
	at := time.Date(2026, 3, 3, 1, 30, 0, 0, time.UTC)
	from, to := hours.DayBounds(at)

	wantFrom := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	if !from.Equal(wantFrom) {
		t.Fatalf("expected day start %s, got %s", wantFrom, from)
	}
	if !to.Equal(wantFrom.AddDate(0, 0, 1)) {
		t.Fatalf("expected day end %s, got %s", wantFrom.AddDate(0, 0, 1), to)
	}
}

func TestCustomSchedule(t *testing.T) {
	loc := buenosAires(t)
	hours := NewBusinessHours(loc, WeekSchedule{
		time.Sunday: {{Open: 10, Close: 13}},
	})

	if err := hours.CheckInstant(time.Date(2026, 3, 8, 11, 0, 0, 0, loc)); err != nil {
		t.Fatalf("custom schedule should open Sundays: %v", err)
	}
	if err := hours.CheckInstant(time.Date(2026, 3, 2, 10, 0, 0, 0, loc)); err == nil {
		t.Fatal("custom schedule should close Mondays")
	}
}
