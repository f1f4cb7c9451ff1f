package index

import (
	"fmt"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

const (
	// DefaultLimit is the number of entries returned when a query sets no limit.
	DefaultLimit = 100

	// MaxLimit is the largest limit a query may request.
	MaxLimit = 10000
)

// Validate checks a query and returns a QueryError describing the first
// invalid parameter.
func Validate(q *audit.IndexQuery) error {
	if q == nil {
		return nil
	}

	if q.Limit < 0 {
		return audit.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return audit.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return audit.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return audit.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}

	if q.Level != "" && !q.Level.Valid() {
		return audit.NewQueryError(q, fmt.Errorf("invalid level: %s", q.Level))
	}
	if q.Category != "" && !q.Category.Valid() {
		return audit.NewQueryError(q, fmt.Errorf("invalid category: %s", q.Category))
	}

	return nil
}

func limitOf(q *audit.IndexQuery) int {
	if q == nil || q.Limit == 0 {
		return DefaultLimit
	}
	return q.Limit
}
