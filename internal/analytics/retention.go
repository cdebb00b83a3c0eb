package analytics

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// PruneBefore removes buckets older than the day and week containing cutoff
// and returns how many entries were dropped. It shares the write lock with
// Record when serialized writes are enabled. Unlike Record it never replaces
// unreadable or malformed data; those failures are returned.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	defer s.observe(OpPrune, time.Now())

	if s.writeMu != nil {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}

	snap, err := s.load(ctx, OpPrune, false)
	if err != nil {
		return 0, err
	}

	pruned, removed := Prune(snap, s.deriver.DayKey(cutoff), s.deriver.WeekKey(cutoff))
	if removed == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, OpPrune, pruned); err != nil {
		return 0, err
	}
	return removed, nil
}

// Prune returns a copy of s without buckets older than the cutoff keys,
// along with the number of entries removed. Day keys compare as strings.
// Week keys compare by (year, week) because the raw string does not order
// correctly across years once week 53 is involved. Retained entries keep
// their order and counts.
func Prune(s Snapshot, cutoffDay, cutoffWeek string) (Snapshot, int) {
	out := EmptySnapshot()
	removed := 0

	for _, d := range s.Daily {
		if d.Date < cutoffDay {
			removed++
			continue
		}
		out.Daily = append(out.Daily, d)
	}

	cy, cw, ok := parseWeekKey(cutoffWeek)
	for _, w := range s.Weekly {
		if ok {
			if y, n, valid := parseWeekKey(w.Week); valid && (y < cy || (y == cy && n < cw)) {
				removed++
				continue
			}
		}
		out.Weekly = append(out.Weekly, w)
	}

	return out, removed
}

func parseWeekKey(key string) (year, week int, ok bool) {
	y, w, found := strings.Cut(key, "-")
	if !found {
		return 0, 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	week, err = strconv.Atoi(w)
	if err != nil {
		return 0, 0, false
	}
	return year, week, true
}
