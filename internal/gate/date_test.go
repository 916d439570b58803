package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// at builds a wall-clock instant in the reference zone.
func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, referenceZone)
	require.NoError(t, err)
	return ts
}

func TestCheckDateBoundaries(t *testing.T) {
	const birthday = "2025-02-21"

	tests := []struct {
		name      string
		now       string
		eligible  bool
		remaining string
	}{
		{"minute before midnight", "2025-02-20 23:59", false, "0h 1m"},
		{"midnight of the day", "2025-02-21 00:00", true, ""},
		{"last minute of the day", "2025-02-21 23:59", true, ""},
		{"day after", "2025-02-22 00:00", true, ""},
		{"noon the day before", "2025-02-20 12:00", false, "12h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := CheckDate(at(t, tt.now), birthday, nil)
			assert.Equal(t, tt.eligible, e.Eligible)
			assert.Equal(t, tt.remaining, e.Remaining)
		})
	}
}

func TestCheckDateViewerZoneIndependent(t *testing.T) {
	// The same instant expressed in another zone must gate identically.
	ist := at(t, "2025-02-20 23:30")
	utc := ist.In(time.UTC)

	a := CheckDate(ist, "2025-02-21", nil)
	b := CheckDate(utc, "2025-02-21", nil)
	assert.Equal(t, a, b)
}

func TestCheckDateFailsOpenOnBadDate(t *testing.T) {
	e := CheckDate(at(t, "2025-02-20 12:00"), "not-a-date", nil)
	assert.True(t, e.Eligible)
	assert.Empty(t, e.Remaining)
}

func TestWatchReturnsImmediatelyWhenEligible(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var results []Eligibility
	Watch(ctx, "2000-01-01", nil, func(e Eligibility) {
		results = append(results, e)
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Eligible)
}

func TestWatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	Watch(ctx, "2999-01-01", nil, func(Eligibility) { calls++ })

	// The immediate evaluation still runs once before the cancelled
	// context is observed.
	assert.Equal(t, 1, calls)
}
