package fare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Boundaries(t *testing.T) {
	dep := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	arr := dep.Add(2 * time.Hour)

	testCases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"second before departure", dep.Add(-time.Second), StatusScheduled},
		{"at departure", dep, StatusInFlight},
		{"mid flight", dep.Add(time.Hour), StatusInFlight},
		{"at arrival", arr, StatusArrived},
		{"after arrival", arr.Add(time.Second), StatusArrived},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(dep, arr, Flags{}, tc.now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_FlagsTakePriority(t *testing.T) {
	dep := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	arr := dep.Add(90 * time.Minute)

	got, err := Classify(dep, arr, Flags{Cancelled: true, Issue: true}, dep.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got)

	got, err = Classify(dep, arr, Flags{Cancelled: true}, arr.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got)

	got, err = Classify(dep, arr, Flags{Issue: true}, dep.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusDelayed, got)

	// the issue flag only matters before departure
	got, err = Classify(dep, arr, Flags{Issue: true}, dep.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusInFlight, got)
}

func TestClassify_ZeroDuration(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	got, err := Classify(at, at, Flags{}, at.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, got)

	got, err = Classify(at, at, Flags{}, at)
	require.NoError(t, err)
	assert.Equal(t, StatusArrived, got)
}

func TestClassify_NegativeDuration(t *testing.T) {
	dep := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := Classify(dep, dep.Add(-time.Hour), Flags{}, dep)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Classify(dep, dep.Add(-time.Hour), Flags{Cancelled: true}, dep)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFlightDuration(t *testing.T) {
	dep := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	d, err := FlightDuration(dep, dep.Add(2*time.Hour+35*time.Minute+59*time.Second))
	require.NoError(t, err)
	assert.Equal(t, Duration{Hours: 2, Minutes: 35}, d)
	assert.Equal(t, "2h 35m", d.String())

	d, err = FlightDuration(dep, dep)
	require.NoError(t, err)
	assert.Equal(t, Duration{}, d)

	_, err = FlightDuration(dep, dep.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidState)
}
