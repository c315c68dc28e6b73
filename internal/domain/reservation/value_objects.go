package reservation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrEndRequired      = errors.New("end time required for time-ranged resources")
)

// TimeRange is a half-open interval [start, end). End is absent for
// resources that are a pure allotment (coupon slots); such reservations
// never participate in overlap detection.
type TimeRange struct {
	start time.Time
	end   *time.Time
}

func NewTimeRange(start time.Time, end *time.Time) (TimeRange, error) {
	if end != nil && !start.Before(*end) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{start: start, end: end}, nil
}

func NewClosedTimeRange(start, end time.Time) (TimeRange, error) {
	return NewTimeRange(start, &end)
}

func (tr TimeRange) Start() time.Time { return tr.start }
func (tr TimeRange) End() *time.Time  { return tr.end }

func (tr TimeRange) IsRanged() bool {
	return tr.end != nil
}

func (tr TimeRange) Duration() time.Duration {
	if tr.end == nil {
		return 0
	}
	return tr.end.Sub(tr.start)
}

// OverlapsWithBuffer applies the symmetric gap rule: [s1,e1) and [s2,e2)
// conflict when s1 < e2+buffer AND s2 < e1+buffer. Open-ended ranges never
// overlap anything.
func (tr TimeRange) OverlapsWithBuffer(other TimeRange, buffer time.Duration) bool {
	if tr.end == nil || other.end == nil {
		return false
	}
	return tr.start.Before(other.end.Add(buffer)) && other.start.Before(tr.end.Add(buffer))
}

func (tr TimeRange) String() string {
	if tr.end == nil {
		return fmt.Sprintf("[%s,)", tr.start.Format(time.RFC3339))
	}
	return fmt.Sprintf("[%s,%s)", tr.start.Format(time.RFC3339), tr.end.Format(time.RFC3339))
}
