package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/calendar"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now(loc *time.Location) time.Time {
	return c.now.In(loc)
}

func testDeriver() *calendar.Deriver {
	return calendar.NewDeriver(time.UTC, &fixedClock{now: time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)})
}

var testSnapshot = analytics.Snapshot{
	Daily:  []analytics.DailyCount{{Date: "2023-06-15", Count: 2}},
	Weekly: []analytics.WeeklyCount{{Week: "2023-24", Count: 2}},
}

func TestWriteSnapshot(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSnapshot(&buf, testSnapshot, "json"))
		assert.JSONEq(t, `{"daily":[{"date":"2023-06-15","count":2}],"weekly":[{"week":"2023-24","count":2}]}`, buf.String())
	})

	t.Run("json of an empty snapshot", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSnapshot(&buf, analytics.Snapshot{}, "json"))
		assert.JSONEq(t, `{"daily":[],"weekly":[]}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSnapshot(&buf, testSnapshot, "yaml"))

		assert.True(t, strings.HasPrefix(buf.String(), "daily:\n"))
		var decoded analytics.Snapshot
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, testSnapshot, decoded)
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, writeSnapshot(&buf, testSnapshot, "csv"))
	})
}

func TestOutput(t *testing.T) {
	t.Run("plain output for scripts", func(t *testing.T) {
		var buf bytes.Buffer
		o := newOutput(&buf, testDeriver(), language.English, false)

		o.today(1234)
		o.progress(analytics.WeeklyProgress{CurrentWeek: 3, PreviousWeek: 5})

		assert.Equal(t, "1234\n3 5\n", buf.String())
	})

	t.Run("terminal output uses locale formatting", func(t *testing.T) {
		var buf bytes.Buffer
		o := newOutput(&buf, testDeriver(), language.English, true)

		o.today(1234)

		assert.Equal(t, "June 15, 2023: 1,234 burned\n", buf.String())
	})

	t.Run("progress message", func(t *testing.T) {
		var buf bytes.Buffer
		o := newOutput(&buf, testDeriver(), language.English, true)

		o.progress(analytics.WeeklyProgress{CurrentWeek: 15, PreviousWeek: 20})

		assert.Contains(t, buf.String(), "This week: 15\n")
		assert.Contains(t, buf.String(), "Last week: 20\n")
		assert.Contains(t, buf.String(), "down 25% from last week")
	})

	t.Run("chart bars scale to the peak", func(t *testing.T) {
		var buf bytes.Buffer
		o := newOutput(&buf, testDeriver(), language.English, true)

		o.series([]analytics.Point{
			{Key: "2023-06-14", Label: "Wed", Count: 0},
			{Key: "2023-06-15", Label: "Thu", Count: 4},
		})

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "  Wed 0", lines[0])
		assert.Equal(t, "  Thu "+strings.Repeat("#", maxBarWidth)+" 4", lines[1])
	})
}

func TestParsePreferenceArgs(t *testing.T) {
	t.Run("sets known keys", func(t *testing.T) {
		patch, err := parsePreferenceArgs([]string{"reduceMotion=true", "soundEnabled=false"})
		require.NoError(t, err)
		require.NotNil(t, patch.ReduceMotion)
		require.NotNil(t, patch.SoundEnabled)
		assert.True(t, *patch.ReduceMotion)
		assert.False(t, *patch.SoundEnabled)
	})

	tests := []struct {
		name string
		args []string
	}{
		{"missing value", []string{"reduceMotion"}},
		{"not a bool", []string{"soundEnabled=loud"}},
		{"unknown key", []string{"darkMode=true"}},
		{"empty key", []string{"=true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePreferenceArgs(tt.args)
			assert.Error(t, err)
		})
	}
}
