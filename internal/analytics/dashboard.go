package analytics

import (
	"context"
	"fmt"
	"math"

	"thoughtburn/internal/calendar"
)

const (
	DashboardDays  = 7
	DashboardWeeks = 8
)

// Point is one labelled bar of a chart series.
type Point struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Dashboard is the summary shown on the progress screen.
type Dashboard struct {
	Today    int            `json:"today" yaml:"today"`
	Daily    []Point        `json:"daily" yaml:"daily"`
	Weekly   []Point        `json:"weekly" yaml:"weekly"`
	Progress WeeklyProgress `json:"progress" yaml:"progress"`
	Message  string         `json:"message" yaml:"message"`
}

// BuildDashboard assembles the dashboard from the store's query operations.
// Series are indexed by calendar position, so days and weeks without burns
// show as zero instead of shifting older buckets into view.
func BuildDashboard(ctx context.Context, store *Store) Dashboard {
	d := store.Deriver()
	now := d.Now()
	snap := store.Snapshot(ctx)
	progress := store.WeeklyProgress(ctx)

	daily := make([]Point, 0, DashboardDays)
	for i := 0; i < DashboardDays; i++ {
		t := now.AddDate(0, 0, i-(DashboardDays-1))
		key := d.DayKey(t)
		daily = append(daily, Point{
			Key:   key,
			Label: d.FormatLabel(t, calendar.LabelShort),
			Count: snap.DayCount(key),
		})
	}

	weekly := make([]Point, 0, DashboardWeeks)
	for i := 0; i < DashboardWeeks; i++ {
		offset := i - (DashboardWeeks - 1)
		key := d.WeekKey(now.AddDate(0, 0, offset*7))
		weekly = append(weekly, Point{
			Key:   key,
			Label: d.WeekLabel(offset),
			Count: snap.WeekCount(key),
		})
	}

	return Dashboard{
		Today:    store.TodayCount(ctx),
		Daily:    daily,
		Weekly:   weekly,
		Progress: progress,
		Message:  ProgressMessage(progress),
	}
}

// PercentDecrease returns how much lower this week is than last week, rounded
// half up. It is 0 unless the current week is below a non-zero previous week.
func (p WeeklyProgress) PercentDecrease() int {
	if p.PreviousWeek <= 0 || p.CurrentWeek >= p.PreviousWeek {
		return 0
	}
	ratio := float64(p.PreviousWeek-p.CurrentWeek) / float64(p.PreviousWeek) * 100
	return int(math.Floor(ratio + 0.5))
}

// ProgressMessage phrases the weekly comparison for the user.
func ProgressMessage(p WeeklyProgress) string {
	switch {
	case p.CurrentWeek < p.PreviousWeek:
		return fmt.Sprintf("Great progress! Your negative thoughts are down %d%% from last week.", p.PercentDecrease())
	case p.CurrentWeek > 0:
		return "Keep going! Remember that identifying negative thoughts is the first step to overcoming them."
	default:
		return "Welcome to your journey of mental wellness."
	}
}
