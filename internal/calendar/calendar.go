// Package calendar maps points in time to the day and week bucket keys used by
// the analytics store, and renders the human labels shown next to them.
package calendar

import (
	"fmt"
	"math"
	"time"
)

const (
	dayKeyLayout = "2006-01-02"
	day          = 24 * time.Hour
)

// LabelStyle selects how FormatLabel renders a date.
type LabelStyle string

const (
	LabelShort  LabelStyle = "short"  // Mon
	LabelMedium LabelStyle = "medium" // Jun 15
	LabelLong   LabelStyle = "long"   // June 15, 2023
)

// TimeProvider supplies the current time.
type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider is the default implementation that uses the system clock.
type DefaultTimeProvider struct{}

// Now returns the current time in loc.
func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// DayKey returns the UTC calendar date of t formatted as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// WeekKey returns the YYYY-WW bucket of t, where weeks run Sunday through
// Saturday and week 1 is the one containing January 1 in loc.
//
// This is not ISO-8601 numbering. The final partial week of a year can be
// week 53 and is never folded into the next year's week 1; stored keys depend
// on this exact arithmetic, so it must not change.
func WeekKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	year := local.Year()
	firstDayOfYear := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)

	// Millisecond resolution, matching keys written by earlier clients.
	elapsedMs := t.UnixMilli() - firstDayOfYear.UnixMilli()
	daysSince := math.Floor(float64(elapsedMs) / float64(day.Milliseconds()))

	weekNumber := int(math.Ceil((daysSince + float64(firstDayOfYear.Weekday()) + 1) / 7))

	return fmt.Sprintf("%d-%02d", year, weekNumber)
}

// FormatLabel renders t in loc using en-US month and weekday names.
func FormatLabel(t time.Time, style LabelStyle, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	switch style {
	case LabelShort:
		return local.Format("Mon")
	case LabelLong:
		return local.Format("January 2, 2006")
	default:
		return local.Format("Jan 2")
	}
}

// Deriver binds key derivation to a time zone and a clock.
type Deriver struct {
	loc   *time.Location
	clock TimeProvider
}

// NewDeriver creates a Deriver. A nil loc means time.Local and a nil clock
// means the system clock.
func NewDeriver(loc *time.Location, clock TimeProvider) *Deriver {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = &DefaultTimeProvider{}
	}
	return &Deriver{loc: loc, clock: clock}
}

// Location returns the time zone used for week keys and labels.
func (d *Deriver) Location() *time.Location {
	return d.loc
}

// Now returns the current time in the deriver's location.
func (d *Deriver) Now() time.Time {
	return d.clock.Now(d.loc)
}

// DayKey returns the day bucket of t.
func (d *Deriver) DayKey(t time.Time) string {
	return DayKey(t)
}

// WeekKey returns the week bucket of t.
func (d *Deriver) WeekKey(t time.Time) string {
	return WeekKey(t, d.loc)
}

// Today returns the day bucket of the current time.
func (d *Deriver) Today() string {
	return DayKey(d.Now())
}

// ThisWeek returns the week bucket of the current time.
func (d *Deriver) ThisWeek() string {
	return WeekKey(d.Now(), d.loc)
}

// FormatLabel renders t for display.
func (d *Deriver) FormatLabel(t time.Time, style LabelStyle) string {
	return FormatLabel(t, style, d.loc)
}

// WeekLabel names a week relative to the current one. Offsets 0, -1 and -2
// have fixed names; any other offset renders the medium date of now shifted
// by that many weeks.
func (d *Deriver) WeekLabel(weekOffset int) string {
	switch weekOffset {
	case 0:
		return "This Week"
	case -1:
		return "Last Week"
	case -2:
		return "2 Weeks Ago"
	default:
		return d.FormatLabel(d.Now().AddDate(0, 0, weekOffset*7), LabelMedium)
	}
}
