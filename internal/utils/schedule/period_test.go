package schedule_test

import (
	"testing"
	"time"

	"github.com/paymentops/settlement-backend/internal/utils/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadPacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func TestLastCompletedWeek(t *testing.T) {
	loc := mustLoadPacific(t)

	tests := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{
			// Most recent Sunday is Jan 21; Monday start is Jan 15.
			name:      "wednesday resolves to previous completed week",
			now:       time.Date(2024, 1, 24, 10, 30, 0, 0, loc),
			wantStart: "2024-01-15",
			wantEnd:   "2024-01-21",
		},
		{
			// Monday looks back exactly one day to find the Sunday boundary.
			name:      "monday resolves to the week that just ended",
			now:       time.Date(2024, 1, 22, 0, 5, 0, 0, loc),
			wantStart: "2024-01-15",
			wantEnd:   "2024-01-21",
		},
		{
			// A Sunday invocation must not close the in-progress week: the
			// resolver jumps back a full seven days, not zero.
			name:      "sunday resolves to the previous fully completed week",
			now:       time.Date(2024, 1, 21, 23, 0, 0, 0, loc),
			wantStart: "2024-01-08",
			wantEnd:   "2024-01-14",
		},
		{
			name:      "saturday still resolves to the last closed sunday",
			now:       time.Date(2024, 1, 27, 12, 0, 0, 0, loc),
			wantStart: "2024-01-15",
			wantEnd:   "2024-01-21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := schedule.LastCompletedWeek(tt.now, loc)
			assert.Equal(t, tt.wantStart, p.Start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, p.End.Format("2006-01-02"))
			assert.Equal(t, time.Monday, p.Start.Weekday())
			assert.Equal(t, time.Sunday, p.End.Weekday())
		})
	}
}

func TestLastCompletedWeekUsesBusinessTimezone(t *testing.T) {
	loc := mustLoadPacific(t)

	// 02:00 UTC Monday Jan 22 is still Sunday evening Jan 21 in Pacific, so
	// the resolver must treat the invocation day as Sunday.
	now := time.Date(2024, 1, 22, 2, 0, 0, 0, time.UTC)
	p := schedule.LastCompletedWeek(now, loc)

	assert.Equal(t, "2024-01-08", p.Start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-14", p.End.Format("2006-01-02"))
}

func TestLastCompletedWeekIsStableAcrossTheWeek(t *testing.T) {
	loc := mustLoadPacific(t)

	// Every invocation between Monday and Sunday of the same week must
	// resolve to the same completed period; reruns are idempotent.
	first := schedule.LastCompletedWeek(time.Date(2024, 1, 22, 9, 0, 0, 0, loc), loc)
	for day := 23; day <= 28; day++ {
		p := schedule.LastCompletedWeek(time.Date(2024, 1, day, 9, 0, 0, 0, loc), loc)
		assert.True(t, p.Start.Equal(first.Start), "start drifted on day %d", day)
		assert.True(t, p.End.Equal(first.End), "end drifted on day %d", day)
	}
}

func TestPeriodEndExclusive(t *testing.T) {
	loc := mustLoadPacific(t)
	p := schedule.LastCompletedWeek(time.Date(2024, 1, 24, 10, 0, 0, 0, loc), loc)

	// The exclusive bound is midnight of the day after the inclusive end.
	assert.Equal(t, "2024-01-22", p.EndExclusive().Format("2006-01-02"))
}
