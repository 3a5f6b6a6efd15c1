package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is the calendar the office schedule is expressed in unless
// configured otherwise.
const DefaultTimezone = "America/Argentina/Buenos_Aires"

// Window is a daily opening interval expressed in fractional hours,
// half-open on the right: a window {9, 12} admits 9:00 but not 12:00.
type Window struct {
	Open  float64
	Close float64
}

func (w Window) contains(hour float64) bool {
	return hour >= w.Open && hour < w.Close
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", formatHour(w.Open), formatHour(w.Close))
}

// WeekSchedule maps each weekday to its opening windows. Days without an
// entry are closed.
type WeekSchedule map[time.Weekday][]Window

// DefaultWeekSchedule returns the office policy: closed Sundays, Saturdays
// 9:00-12:00, weekdays 7:30-12:30 and 16:30-20:30.
func DefaultWeekSchedule() WeekSchedule {
	weekday := []Window{{Open: 7.5, Close: 12.5}, {Open: 16.5, Close: 20.5}}
	return WeekSchedule{
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday:  {{Open: 9, Close: 12}},
	}
}

// BusinessHours decides whether instants and visit spans fall inside the
// office schedule, evaluated in a fixed location regardless of the server's
// local timezone.
type BusinessHours struct {
	loc  *time.Location
	week WeekSchedule
}

// NewBusinessHours builds the rule for the given location and schedule.
// A nil schedule uses the default office policy.
func NewBusinessHours(loc *time.Location, week WeekSchedule) *BusinessHours {
	if loc == nil {
		loc = time.UTC
	}
	if week == nil {
		week = DefaultWeekSchedule()
	}
	return &BusinessHours{loc: loc, week: week}
}

// Location returns the calendar the schedule is evaluated in.
func (b *BusinessHours) Location() *time.Location {
	return b.loc
}

// CheckInstant reports whether t falls inside an opening window. It returns
// nil when open, and a reason distinguishing a closed day from an instant
// outside that day's windows.
func (b *BusinessHours) CheckInstant(t time.Time) *BusinessHoursError {
	local := t.In(b.loc)
	windows := b.week[local.Weekday()]
	if len(windows) == 0 {
		return &BusinessHoursError{
			Reason: fmt.Sprintf("no appointments on %ss", local.Weekday()),
		}
	}
	hour := fractionalHour(local)
	for _, w := range windows {
		if w.contains(hour) {
			return nil
		}
	}
	return &BusinessHoursError{
		Reason: fmt.Sprintf("outside business hours for %s (open %s)",
			local.Weekday(), describeWindows(windows)),
	}
}

// CheckSpan validates that the whole interval [start, start+d) fits inside a
// single opening window. A visit may end exactly at closing time; one that
// runs past it is rejected with a reason telling the caller to shorten the
// visit or start earlier.
func (b *BusinessHours) CheckSpan(start time.Time, d time.Duration) *BusinessHoursError {
	if err := b.CheckInstant(start); err != nil {
		return err
	}
	local := start.In(b.loc)
	hour := fractionalHour(local)

	var window Window
	for _, w := range b.week[local.Weekday()] {
		if w.contains(hour) {
			window = w
			break
		}
	}

	end := start.Add(d).In(b.loc)
	endHour := fractionalHour(end)
	sameDay := end.Year() == local.Year() && end.YearDay() == local.YearDay()
	if !sameDay || endHour > window.Close {
		return &BusinessHoursError{
			Reason: fmt.Sprintf(
				"the visit would extend past business hours (closes %s); shorten it or start earlier",
				formatHour(window.Close)),
		}
	}
	return nil
}

// DayBounds returns the midnight-to-midnight interval containing t in the
// business timezone. The conflict scan and the hours rule share this frame.
func (b *BusinessHours) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(b.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, b.loc)
	return start, start.AddDate(0, 0, 1)
}

func fractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func formatHour(h float64) string {
	whole := int(h)
	minutes := int((h - float64(whole)) * 60)
	return fmt.Sprintf("%d:%02d", whole, minutes)
}

func describeWindows(windows []Window) string {
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, " and ")
}
