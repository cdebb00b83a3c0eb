package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoughtburn/internal/analytics"
)

func TestEncode(t *testing.T) {
	t.Run("empty snapshot", func(t *testing.T) {
		raw, err := analytics.Encode(analytics.EmptySnapshot())
		require.NoError(t, err)
		assert.Equal(t, `{"daily":[],"weekly":[]}`, raw)
	})

	t.Run("nil lists encode as empty arrays", func(t *testing.T) {
		raw, err := analytics.Encode(analytics.Snapshot{})
		require.NoError(t, err)
		assert.Equal(t, `{"daily":[],"weekly":[]}`, raw)
	})

	t.Run("preserves entry order", func(t *testing.T) {
		snap := analytics.Snapshot{
			Daily: []analytics.DailyCount{
				{Date: "2023-06-15", Count: 1},
				{Date: "2023-06-01", Count: 5},
			},
			Weekly: []analytics.WeeklyCount{{Week: "2023-24", Count: 6}},
		}
		raw, err := analytics.Encode(snap)
		require.NoError(t, err)
		assert.Equal(t, `{"daily":[{"date":"2023-06-15","count":1},{"date":"2023-06-01","count":5}],"weekly":[{"week":"2023-24","count":6}]}`, raw)
	})
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty lists", raw: `{"daily":[],"weekly":[]}`},
		{name: "populated", raw: `{"daily":[{"date":"2023-06-15","count":2}],"weekly":[{"week":"2023-24","count":2}]}`},
		{name: "week 53", raw: `{"daily":[],"weekly":[{"week":"2022-53","count":1}]}`},
		{name: "not json", raw: `burned`, wantErr: true},
		{name: "wrong shape", raw: `{"daily":{},"weekly":[]}`, wantErr: true},
		{name: "missing weekly", raw: `{"daily":[]}`, wantErr: true},
		{name: "bad date", raw: `{"daily":[{"date":"15/06/2023","count":1}],"weekly":[]}`, wantErr: true},
		{name: "bad week", raw: `{"daily":[],"weekly":[{"week":"2023-W24","count":1}]}`, wantErr: true},
		{name: "negative count", raw: `{"daily":[{"date":"2023-06-15","count":-1}],"weekly":[]}`, wantErr: true},
		{name: "duplicate day", raw: `{"daily":[{"date":"2023-06-15","count":1},{"date":"2023-06-15","count":2}],"weekly":[]}`, wantErr: true},
		{name: "duplicate week", raw: `{"daily":[],"weekly":[{"week":"2023-24","count":1},{"week":"2023-24","count":1}]}`, wantErr: true},
		{name: "uppercase list names", raw: `{"DAILY":[{"date":"2023-06-15","count":3}],"weekly":[]}`, wantErr: true},
		{name: "capitalized entry fields", raw: `{"daily":[{"Date":"2023-06-15","count":3}],"weekly":[]}`, wantErr: true},
		{name: "missing count", raw: `{"daily":[],"weekly":[{"week":"2023-24"}]}`, wantErr: true},
		{name: "null entry", raw: `{"daily":[null],"weekly":[]}`, wantErr: true},
		{name: "top-level array", raw: `[]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := analytics.Decode(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, analytics.ErrMalformedSnapshot)
				return
			}
			require.NoError(t, err)

			raw, err := analytics.Encode(snap)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, raw)
		})
	}
}

func TestSnapshotLookups(t *testing.T) {
	snap := analytics.Snapshot{
		Daily: []analytics.DailyCount{
			{Date: "2023-06-13", Count: 1},
			{Date: "2023-06-14", Count: 2},
			{Date: "2023-06-15", Count: 3},
		},
		Weekly: []analytics.WeeklyCount{
			{Week: "2023-23", Count: 4},
			{Week: "2023-24", Count: 5},
		},
	}

	assert.Equal(t, 2, snap.DayCount("2023-06-14"))
	assert.Equal(t, 0, snap.DayCount("2023-06-16"))
	assert.Equal(t, 5, snap.WeekCount("2023-24"))
	assert.Equal(t, 0, snap.WeekCount("2023-25"))

	assert.Equal(t, snap.Daily[1:], snap.TailDaily(2))
	assert.Equal(t, snap.Daily, snap.TailDaily(10))
	assert.Empty(t, snap.TailDaily(0))
	assert.Equal(t, snap.Weekly[1:], snap.TailWeekly(1))
	assert.Empty(t, snap.TailWeekly(-1))
}

func TestSnapshotTailsAreCopies(t *testing.T) {
	snap := analytics.Snapshot{
		Daily:  []analytics.DailyCount{{Date: "2023-06-14", Count: 1}, {Date: "2023-06-15", Count: 2}},
		Weekly: []analytics.WeeklyCount{{Week: "2023-23", Count: 4}, {Week: "2023-24", Count: 2}},
	}

	days := snap.TailDaily(1)
	days[0].Count = 99

	weeks := snap.TailWeekly(2)
	weeks[1].Count = 99

	assert.Equal(t, 2, snap.DayCount("2023-06-15"))
	assert.Equal(t, 2, snap.WeekCount("2023-24"))
	assert.Len(t, snap.Daily, 2)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	snap, err := analytics.Decode(`{"daily":[{"date":"2023-06-15","count":3,"note":"x"}],"weekly":[],"version":2}`)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.DayCount("2023-06-15"))
}

func TestPrune(t *testing.T) {
	snap := analytics.Snapshot{
		Daily: []analytics.DailyCount{
			{Date: "2022-12-30", Count: 1},
			{Date: "2023-01-02", Count: 2},
			{Date: "2023-06-15", Count: 3},
		},
		Weekly: []analytics.WeeklyCount{
			{Week: "2022-53", Count: 1},
			{Week: "2023-01", Count: 2},
			{Week: "2023-24", Count: 3},
		},
	}

	t.Run("drops buckets before the cutoff", func(t *testing.T) {
		pruned, removed := analytics.Prune(snap, "2023-01-01", "2023-01")

		assert.Equal(t, 2, removed)
		assert.Equal(t, snap.Daily[1:], pruned.Daily)
		assert.Equal(t, snap.Weekly[1:], pruned.Weekly)
	})

	t.Run("orders weeks numerically", func(t *testing.T) {
		pruned, removed := analytics.Prune(snap, "2022-01-01", "2022-9")

		assert.Equal(t, 0, removed, "week 53 is after week 9")
		assert.Equal(t, snap.Weekly, pruned.Weekly)
	})

	t.Run("keeps everything with early cutoffs", func(t *testing.T) {
		pruned, removed := analytics.Prune(snap, "2000-01-01", "2000-01")

		assert.Equal(t, 0, removed)
		assert.Equal(t, snap, pruned)
	})

	t.Run("does not modify the input", func(t *testing.T) {
		_, _ = analytics.Prune(snap, "2099-01-01", "2099-01")

		assert.Len(t, snap.Daily, 3)
		assert.Len(t, snap.Weekly, 3)
	})

	t.Run("an unparseable week cutoff keeps all weeks", func(t *testing.T) {
		pruned, removed := analytics.Prune(snap, "2023-01-01", "soon")

		assert.Equal(t, 1, removed)
		assert.Equal(t, snap.Weekly, pruned.Weekly)
	})
}
