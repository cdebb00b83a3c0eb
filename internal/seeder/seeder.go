package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"thoughtburn/internal/analytics"
)

// Seeder fills the analytics store with a plausible history for demos and
// local development.
type Seeder struct {
	Store     *analytics.Store
	Logger    *slog.Logger
	Days      int
	MaxPerDay int
	rng       *rand.Rand
}

// NewSeeder creates a new seeder instance
func NewSeeder(store *analytics.Store, logger *slog.Logger, days, maxPerDay int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		Store:     store,
		Logger:    logger,
		Days:      days,
		MaxPerDay: maxPerDay,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

// WithSeed makes the generated history reproducible.
func (s *Seeder) WithSeed(seed uint64) *Seeder {
	s.rng = rand.New(rand.NewPCG(seed, seed))
	return s
}

// Run records burns for each of the last Days days, oldest first. Daily
// volume trends downward towards today so the weekly comparison shows
// progress. It returns the number of burns recorded.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	if s.Days <= 0 || s.MaxPerDay <= 0 {
		return 0, fmt.Errorf("seeder needs positive days and max per day, got %d and %d", s.Days, s.MaxPerDay)
	}

	start := time.Now()
	s.Logger.Info("Seeding analytics history...",
		slog.Int("days", s.Days),
		slog.Int("max_per_day", s.MaxPerDay))

	now := s.Store.Deriver().Now()
	total := 0
	for i := s.Days - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		day := now.AddDate(0, 0, -i)
		count := s.dailyVolume(i)
		for n := 0; n < count; n++ {
			// Spread burns over waking hours
			at := time.Date(day.Year(), day.Month(), day.Day(), 8+s.rng.IntN(14), s.rng.IntN(60), 0, 0, day.Location())
			s.Store.RecordAt(ctx, at)
		}
		total += count
	}

	s.Logger.Info("Seeding completed",
		slog.Int("burns", total),
		slog.Duration("elapsed", time.Since(start)))
	return total, nil
}

// dailyVolume scales MaxPerDay by how far back the day is, with jitter.
func (s *Seeder) dailyVolume(daysAgo int) int {
	weight := float64(daysAgo+1) / float64(s.Days)
	upper := int(weight*float64(s.MaxPerDay)) + 1
	return s.rng.IntN(upper)
}
