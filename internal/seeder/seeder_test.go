package seeder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/calendar"
	"thoughtburn/internal/seeder"
	"thoughtburn/internal/storage"
	"thoughtburn/internal/testsupport"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now(loc *time.Location) time.Time {
	return c.now.In(loc)
}

func newStore() *analytics.Store {
	deriver := calendar.NewDeriver(time.UTC, &fixedClock{now: time.Date(2023, 6, 15, 23, 0, 0, 0, time.UTC)})
	return analytics.NewStore(storage.NewMemoryProvider(), deriver, testsupport.GetLogger())
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()

	t.Run("records the reported number of burns", func(t *testing.T) {
		store := newStore()

		total, err := seeder.NewSeeder(store, testsupport.GetLogger(), 21, 10).WithSeed(42).Run(ctx)
		require.NoError(t, err)

		snap := store.Snapshot(ctx)
		daily, weekly := 0, 0
		for _, d := range snap.Daily {
			assert.GreaterOrEqual(t, d.Date, "2023-05-26")
			assert.LessOrEqual(t, d.Date, "2023-06-15")
			daily += d.Count
		}
		for _, w := range snap.Weekly {
			weekly += w.Count
		}
		assert.Equal(t, total, daily)
		assert.Equal(t, total, weekly)
	})

	t.Run("same seed gives the same history", func(t *testing.T) {
		a, b := newStore(), newStore()

		_, err := seeder.NewSeeder(a, nil, 14, 6).WithSeed(7).Run(ctx)
		require.NoError(t, err)
		_, err = seeder.NewSeeder(b, nil, 14, 6).WithSeed(7).Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, a.Snapshot(ctx), b.Snapshot(ctx))
	})

	t.Run("rejects empty ranges", func(t *testing.T) {
		_, err := seeder.NewSeeder(newStore(), nil, 0, 5).Run(ctx)
		assert.Error(t, err)
	})
}
