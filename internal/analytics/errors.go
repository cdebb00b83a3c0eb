package analytics

import "errors"

// Failure kinds reported by the store. None of them is ever returned to
// callers of Store methods; they reach the error handler, the log and the
// store_errors metric.
var (
	ErrPersistenceRead   = errors.New("analytics: persistence read failed")
	ErrMalformedSnapshot = errors.New("analytics: malformed snapshot")
	ErrPersistenceWrite  = errors.New("analytics: persistence write failed")
)

// Operation names the store method that hit a failure.
type Operation string

const (
	OpLoad           Operation = "load"
	OpRecord         Operation = "record"
	OpTodayCount     Operation = "today_count"
	OpWeeklyProgress Operation = "weekly_progress"
	OpSnapshot       Operation = "snapshot"
	OpPrune          Operation = "prune"
)

// ErrorHandler receives every failure the store swallows.
type ErrorHandler func(op Operation, err error)

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedSnapshot):
		return "malformed"
	case errors.Is(err, ErrPersistenceWrite):
		return "write"
	case errors.Is(err, ErrPersistenceRead):
		return "read"
	default:
		return "unknown"
	}
}
