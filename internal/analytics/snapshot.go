package analytics

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// StorageKey is the key the whole snapshot is persisted under. It is shared
// with data written by earlier clients and must not change.
const StorageKey = "ntd_analytics"

// DailyCount is the number of thoughts burned on one UTC calendar day.
type DailyCount struct {
	Date  string `json:"date" yaml:"date" validate:"datetime=2006-01-02"`
	Count int    `json:"count" yaml:"count" validate:"gte=0"`
}

// WeeklyCount is the number of thoughts burned in one calendar week.
type WeeklyCount struct {
	Week  string `json:"week" yaml:"week" validate:"weekkey"`
	Count int    `json:"count" yaml:"count" validate:"gte=0"`
}

// Snapshot is the entire persisted analytics state. Both lists keep append
// order; they are not sorted.
type Snapshot struct {
	Daily  []DailyCount  `json:"daily" yaml:"daily" validate:"required,unique=Date,dive"`
	Weekly []WeeklyCount `json:"weekly" yaml:"weekly" validate:"required,unique=Week,dive"`
}

// EmptySnapshot returns a snapshot with no buckets. Its lists are non-nil so
// they encode as [] rather than null.
func EmptySnapshot() Snapshot {
	return Snapshot{Daily: []DailyCount{}, Weekly: []WeeklyCount{}}
}

// DayCount returns the count stored for a day key, or 0.
func (s Snapshot) DayCount(dayKey string) int {
	for _, d := range s.Daily {
		if d.Date == dayKey {
			return d.Count
		}
	}
	return 0
}

// WeekCount returns the count stored for a week key, or 0.
func (s Snapshot) WeekCount(weekKey string) int {
	for _, w := range s.Weekly {
		if w.Week == weekKey {
			return w.Count
		}
	}
	return 0
}

// TailDaily returns a copy of at most the last n daily entries in stored order.
func (s Snapshot) TailDaily(n int) []DailyCount {
	if n <= 0 {
		return []DailyCount{}
	}
	return slices.Clone(s.Daily[max(0, len(s.Daily)-n):])
}

// TailWeekly returns a copy of at most the last n weekly entries in stored order.
func (s Snapshot) TailWeekly(n int) []WeeklyCount {
	if n <= 0 {
		return []WeeklyCount{}
	}
	return slices.Clone(s.Weekly[max(0, len(s.Weekly)-n):])
}

// increment bumps the day and week buckets by one, appending new entries
// for keys seen for the first time. Counts saturate at math.MaxInt.
func (s *Snapshot) increment(dayKey, weekKey string) {
	found := false
	for i := range s.Daily {
		if s.Daily[i].Date == dayKey {
			s.Daily[i].Count = bump(s.Daily[i].Count)
			found = true
			break
		}
	}
	if !found {
		s.Daily = append(s.Daily, DailyCount{Date: dayKey, Count: 1})
	}

	found = false
	for i := range s.Weekly {
		if s.Weekly[i].Week == weekKey {
			s.Weekly[i].Count = bump(s.Weekly[i].Count)
			found = true
			break
		}
	}
	if !found {
		s.Weekly = append(s.Weekly, WeeklyCount{Week: weekKey, Count: 1})
	}
}

func bump(n int) int {
	if n == math.MaxInt {
		return n
	}
	return n + 1
}

var weekKeyPattern = regexp.MustCompile(`^\d{4,}-\d{2,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("weekkey", func(fl validator.FieldLevel) bool {
		return weekKeyPattern.MatchString(fl.Field().String())
	})
	return v
}

// Encode serializes a snapshot in its persisted form.
func Encode(s Snapshot) (string, error) {
	if s.Daily == nil {
		s.Daily = []DailyCount{}
	}
	if s.Weekly == nil {
		s.Weekly = []WeeklyCount{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

// Decode parses and validates a persisted snapshot. Field names must match
// exactly; unknown fields are ignored. Any failure wraps ErrMalformedSnapshot.
func Decode(raw string) (Snapshot, error) {
	s, err := decodeFields(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Snapshot{}, fmt.Errorf("%w: field %s failed %q", ErrMalformedSnapshot, verrs[0].Namespace(), verrs[0].Tag())
		}
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	return s, nil
}

// rawObject keeps the exact member names of a JSON object. Struct decoding
// would match them case-insensitively.
type rawObject map[string]json.RawMessage

func decodeFields(raw string) (Snapshot, error) {
	var top rawObject
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return Snapshot{}, err
	}

	var days, weeks []rawObject
	if err := field(top, "daily", &days); err != nil {
		return Snapshot{}, err
	}
	if err := field(top, "weekly", &weeks); err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	if days != nil {
		s.Daily = make([]DailyCount, 0, len(days))
	}
	for i, obj := range days {
		var d DailyCount
		if err := field(obj, "date", &d.Date); err != nil {
			return Snapshot{}, fmt.Errorf("daily[%d]: %w", i, err)
		}
		if err := field(obj, "count", &d.Count); err != nil {
			return Snapshot{}, fmt.Errorf("daily[%d]: %w", i, err)
		}
		s.Daily = append(s.Daily, d)
	}

	if weeks != nil {
		s.Weekly = make([]WeeklyCount, 0, len(weeks))
	}
	for i, obj := range weeks {
		var w WeeklyCount
		if err := field(obj, "week", &w.Week); err != nil {
			return Snapshot{}, fmt.Errorf("weekly[%d]: %w", i, err)
		}
		if err := field(obj, "count", &w.Count); err != nil {
			return Snapshot{}, fmt.Errorf("weekly[%d]: %w", i, err)
		}
		s.Weekly = append(s.Weekly, w)
	}
	return s, nil
}

func field(obj rawObject, name string, dst any) error {
	v, ok := obj[name]
	if !ok {
		return fmt.Errorf("missing field %q", name)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}
