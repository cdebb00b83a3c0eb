// Package analytics maintains the persisted burn counters and answers the
// queries the presentation layer needs: today's count, the weekly comparison
// and the full daily/weekly history.
//
// The store is fail-open. Persistence and parse failures never reach callers;
// reads degrade to an empty snapshot and failed writes lose that increment.
// Every failure is logged, counted and handed to the optional ErrorHandler.
//
// Record is a read-modify-write of the whole snapshot with no lock of its
// own: two concurrent Record calls can read the same base and the later write
// wins. Use WithSerializedWrites when calls may overlap within a process.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"thoughtburn/internal/calendar"
	"thoughtburn/internal/storage"
)

// WeeklyProgress compares the current calendar week with the one before it.
type WeeklyProgress struct {
	CurrentWeek  int `json:"currentWeek" yaml:"currentWeek"`
	PreviousWeek int `json:"previousWeek" yaml:"previousWeek"`
}

// Store owns the persisted Snapshot.
type Store struct {
	provider storage.Provider
	deriver  *calendar.Deriver
	logger   *slog.Logger
	onError  ErrorHandler
	writeMu  *sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithErrorHandler registers a hook that receives every swallowed failure.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Store) {
		s.onError = h
	}
}

// WithSerializedWrites makes writes in this process run one at a time:
// Record, PruneBefore and the first-access write of an empty snapshot. This
// removes the lost-update race between overlapping calls.
func WithSerializedWrites() Option {
	return func(s *Store) {
		s.writeMu = &sync.Mutex{}
	}
}

// NewStore creates a Store persisting through provider and bucketing with deriver.
func NewStore(provider storage.Provider, deriver *calendar.Deriver, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if deriver == nil {
		deriver = calendar.NewDeriver(nil, nil)
	}
	s := &Store{
		provider: provider,
		deriver:  deriver,
		logger:   logger.With(slog.String("component", "analytics_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deriver returns the calendar used for bucketing.
func (s *Store) Deriver() *calendar.Deriver {
	return s.deriver
}

// Load returns the persisted snapshot. When nothing is stored yet an empty
// snapshot is written and returned.
func (s *Store) Load(ctx context.Context) Snapshot {
	defer s.observe(OpLoad, time.Now())
	snap, _ := s.load(ctx, OpLoad, true)
	return snap
}

// Record counts one burn at the current time.
func (s *Store) Record(ctx context.Context) {
	s.RecordAt(ctx, s.deriver.Now())
}

// RecordAt counts one burn at t, incrementing its day and week buckets and
// writing the whole snapshot back once.
func (s *Store) RecordAt(ctx context.Context, t time.Time) {
	defer s.observe(OpRecord, time.Now())

	if s.writeMu != nil {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}

	// Absent storage is not initialized here; the write below covers it.
	snap, err := s.load(ctx, OpRecord, false)
	if errors.Is(err, ErrPersistenceRead) {
		// Writing now would replace stored history with a single bucket.
		RecordsTotal.WithLabelValues("dropped").Inc()
		return
	}

	snap.increment(s.deriver.DayKey(t), s.deriver.WeekKey(t))

	if err := s.persist(ctx, OpRecord, snap); err != nil {
		RecordsTotal.WithLabelValues("dropped").Inc()
		return
	}
	RecordsTotal.WithLabelValues("persisted").Inc()
}

// TodayCount returns the number of burns recorded today, or 0.
func (s *Store) TodayCount(ctx context.Context) int {
	defer s.observe(OpTodayCount, time.Now())
	snap, _ := s.load(ctx, OpTodayCount, true)
	return snap.DayCount(s.deriver.Today())
}

// WeeklyProgress returns the counts of this week and of the week containing
// the instant seven days ago. A skipped week reads as 0; it is never replaced
// by an older non-empty week.
func (s *Store) WeeklyProgress(ctx context.Context) WeeklyProgress {
	defer s.observe(OpWeeklyProgress, time.Now())
	snap, _ := s.load(ctx, OpWeeklyProgress, true)

	now := s.deriver.Now()
	return WeeklyProgress{
		CurrentWeek:  snap.WeekCount(s.deriver.WeekKey(now)),
		PreviousWeek: snap.WeekCount(s.deriver.WeekKey(now.AddDate(0, 0, -7))),
	}
}

// Snapshot returns the full history as stored. It is not truncated; see
// Snapshot.TailDaily and Snapshot.TailWeekly.
func (s *Store) Snapshot(ctx context.Context) Snapshot {
	defer s.observe(OpSnapshot, time.Now())
	snap, _ := s.load(ctx, OpSnapshot, true)
	return snap
}

func (s *Store) load(ctx context.Context, op Operation, initialize bool) (Snapshot, error) {
	snap, found, err := s.read(ctx, op)
	if err != nil || found || !initialize {
		return snap, err
	}

	if s.writeMu != nil {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		// A Record may have written while this call waited for the lock.
		snap, found, err = s.read(ctx, op)
		if err != nil || found {
			return snap, err
		}
	}
	_ = s.persist(ctx, op, snap)
	return snap, nil
}

// read fetches and decodes the stored snapshot. found is false when nothing
// usable is stored yet; an empty stored string counts as absent.
func (s *Store) read(ctx context.Context, op Operation) (Snapshot, bool, error) {
	raw, found, err := s.provider.Get(ctx, StorageKey)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistenceRead, err)
		s.report(op, err)
		return EmptySnapshot(), false, err
	}
	if !found || raw == "" {
		return EmptySnapshot(), false, nil
	}

	snap, err := Decode(raw)
	if err != nil {
		s.report(op, err)
		return EmptySnapshot(), true, err
	}
	return snap, true, nil
}

func (s *Store) persist(ctx context.Context, op Operation, snap Snapshot) error {
	raw, err := Encode(snap)
	if err == nil {
		err = s.provider.Set(ctx, StorageKey, raw)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
		s.report(op, err)
		return err
	}
	return nil
}

func (s *Store) report(op Operation, err error) {
	kind := errorKind(err)
	StoreErrorsTotal.WithLabelValues(string(op), kind).Inc()
	s.logger.Error("Analytics store operation degraded",
		slog.String("op", string(op)),
		slog.String("kind", kind),
		slog.Any("error", err))
	if s.onError != nil {
		s.onError(op, err)
	}
}

func (s *Store) observe(op Operation, start time.Time) {
	StoreOperationDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}
