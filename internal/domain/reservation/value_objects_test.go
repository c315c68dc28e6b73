//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"travleap-core/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("start before end", func(t *testing.T) {
		tr, err := reservation.NewClosedTimeRange(base, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.True(t, tr.IsRanged())
		assert.Equal(t, 2*time.Hour, tr.Duration())
	})

	t.Run("start equal to end is rejected", func(t *testing.T) {
		_, err := reservation.NewClosedTimeRange(base, base)
		require.ErrorIs(t, err, reservation.ErrInvalidTimeRange)
	})

	t.Run("start after end is rejected", func(t *testing.T) {
		_, err := reservation.NewClosedTimeRange(base, base.Add(-time.Minute))
		require.ErrorIs(t, err, reservation.ErrInvalidTimeRange)
	})

	t.Run("open-ended range is valid", func(t *testing.T) {
		tr, err := reservation.NewTimeRange(base, nil)
		require.NoError(t, err)
		assert.False(t, tr.IsRanged())
		assert.Equal(t, time.Duration(0), tr.Duration())
	})
}

func TestOverlapsWithBuffer(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	mustRange := func(start, end time.Time) reservation.TimeRange {
		tr, err := reservation.NewClosedTimeRange(start, end)
		require.NoError(t, err)
		return tr
	}

	tests := []struct {
		name   string
		a      reservation.TimeRange
		b      reservation.TimeRange
		buffer time.Duration
		want   bool
	}{
		{
			name:   "plain overlap",
			a:      mustRange(base, base.Add(2*time.Hour)),
			b:      mustRange(base.Add(time.Hour), base.Add(3*time.Hour)),
			buffer: 0,
			want:   true,
		},
		{
			name:   "back to back without buffer",
			a:      mustRange(base, base.Add(2*time.Hour)),
			b:      mustRange(base.Add(2*time.Hour), base.Add(4*time.Hour)),
			buffer: 0,
			want:   false,
		},
		{
			name:   "back to back falls inside buffer",
			a:      mustRange(base, base.Add(2*time.Hour)),
			b:      mustRange(base.Add(2*time.Hour), base.Add(4*time.Hour)),
			buffer: 30 * time.Minute,
			want:   true,
		},
		{
			name:   "gap exactly equal to buffer",
			a:      mustRange(base, base.Add(2*time.Hour)),
			b:      mustRange(base.Add(2*time.Hour+30*time.Minute), base.Add(4*time.Hour)),
			buffer: 30 * time.Minute,
			want:   false,
		},
		{
			name:   "gap one minute short of buffer",
			a:      mustRange(base, base.Add(2*time.Hour)),
			b:      mustRange(base.Add(2*time.Hour+29*time.Minute), base.Add(4*time.Hour)),
			buffer: 30 * time.Minute,
			want:   true,
		},
		{
			name:   "disjoint beyond buffer",
			a:      mustRange(base, base.Add(time.Hour)),
			b:      mustRange(base.Add(6*time.Hour), base.Add(7*time.Hour)),
			buffer: 30 * time.Minute,
			want:   false,
		},
		{
			name:   "containment",
			a:      mustRange(base, base.Add(4*time.Hour)),
			b:      mustRange(base.Add(time.Hour), base.Add(2*time.Hour)),
			buffer: 0,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.OverlapsWithBuffer(tt.b, tt.buffer))
			assert.Equal(t, tt.want, tt.b.OverlapsWithBuffer(tt.a, tt.buffer), "rule must be symmetric")
		})
	}

	t.Run("open-ended never overlaps", func(t *testing.T) {
		open, err := reservation.NewTimeRange(base, nil)
		require.NoError(t, err)
		closed := mustRange(base, base.Add(2*time.Hour))

		assert.False(t, open.OverlapsWithBuffer(closed, time.Hour))
		assert.False(t, closed.OverlapsWithBuffer(open, time.Hour))
	})
}
