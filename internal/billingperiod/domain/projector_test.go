package domain

import (
	"testing"
	"time"

	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectMonthlyAnchorsAtServiceStart(t *testing.T) {
	start := date(2025, time.January, 15)
	horizon := date(2025, time.March, 31)

	ranges, err := Project(start, catalogdomain.CadenceMonthly, nil, horizon, nil)
	require.NoError(t, err)
	require.Len(t, ranges, 3)

	assert.Equal(t, date(2025, time.January, 15), ranges[0].DateFrom)
	assert.Equal(t, date(2025, time.February, 14), ranges[0].DateTo)
	assert.Equal(t, date(2025, time.February, 15), ranges[1].DateFrom)
	assert.Equal(t, date(2025, time.March, 14), ranges[1].DateTo)
	assert.Equal(t, date(2025, time.March, 15), ranges[2].DateFrom)
	assert.Equal(t, date(2025, time.April, 14), ranges[2].DateTo)
}

func TestProjectIsDeterministic(t *testing.T) {
	start := date(2024, time.May, 1)
	horizon := date(2025, time.May, 1)

	first, err := Project(start, catalogdomain.CadenceQuarterly, nil, horizon, nil)
	require.NoError(t, err)
	second, err := Project(start, catalogdomain.CadenceQuarterly, nil, horizon, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProjectRangesAreContiguousNonOverlapping(t *testing.T) {
	cadences := []catalogdomain.BillingCadence{
		catalogdomain.CadenceMonthly,
		catalogdomain.CadenceQuarterly,
		catalogdomain.CadenceYearly,
	}
	start := date(2024, time.January, 31)
	horizon := date(2027, time.January, 1)

	for _, cadence := range cadences {
		ranges, err := Project(start, cadence, nil, horizon, nil)
		require.NoError(t, err)
		require.NotEmpty(t, ranges)

		for i := 1; i < len(ranges); i++ {
			prev := ranges[i-1]
			next := ranges[i]
			assert.Equal(t, next.DateFrom, prev.DateTo.AddDate(0, 0, 1),
				"cadence %s: range %d must start the day after the previous ends", cadence, i)
		}
	}
}

func TestProjectOneTime(t *testing.T) {
	start := date(2025, time.July, 3)

	// One-time services need no horizon.
	ranges, err := Project(start, catalogdomain.CadenceOneTime, nil, time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, start, ranges[0].DateFrom)
	assert.Equal(t, start, ranges[0].DateTo)

	// Already materialized: nothing left to project.
	ranges, err = Project(start, catalogdomain.CadenceOneTime, nil, time.Time{}, []PeriodRange{{DateFrom: start, DateTo: start}})
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestProjectSkipsExactKeysOnly(t *testing.T) {
	start := date(2025, time.January, 15)
	horizon := date(2025, time.March, 31)

	// The first period was manually shortened; its boundary no longer
	// matches cadence math, so the projected range is still emitted.
	adjusted := []PeriodRange{{DateFrom: date(2025, time.January, 15), DateTo: date(2025, time.January, 31)}}
	ranges, err := Project(start, catalogdomain.CadenceMonthly, nil, horizon, adjusted)
	require.NoError(t, err)
	require.Len(t, ranges, 3)

	// An exact-key match is skipped.
	existing := []PeriodRange{{DateFrom: date(2025, time.February, 15), DateTo: date(2025, time.March, 14)}}
	ranges, err = Project(start, catalogdomain.CadenceMonthly, nil, horizon, existing)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, date(2025, time.January, 15), ranges[0].DateFrom)
	assert.Equal(t, date(2025, time.March, 15), ranges[1].DateFrom)
}

func TestProjectRespectsServiceEnd(t *testing.T) {
	start := date(2025, time.January, 1)
	end := date(2025, time.April, 30)
	horizon := date(2026, time.January, 1)

	ranges, err := Project(start, catalogdomain.CadenceMonthly, &end, horizon, nil)
	require.NoError(t, err)
	require.Len(t, ranges, 4)
	assert.Equal(t, date(2025, time.April, 1), ranges[3].DateFrom)
}

func TestProjectValidation(t *testing.T) {
	start := date(2025, time.June, 1)
	before := date(2025, time.May, 1)

	_, err := Project(start, catalogdomain.CadenceMonthly, &before, date(2026, time.January, 1), nil)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Project(start, "WEEKLY", nil, date(2026, time.January, 1), nil)
	assert.ErrorIs(t, err, ErrInvalidCadence)

	_, err = Project(start, catalogdomain.CadenceMonthly, nil, time.Time{}, nil)
	assert.ErrorIs(t, err, ErrUnboundedProjection)
}

func TestProjectYearly(t *testing.T) {
	start := date(2025, time.June, 1)
	horizon := date(2025, time.June, 1)

	ranges, err := Project(start, catalogdomain.CadenceYearly, nil, horizon, nil)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, date(2025, time.June, 1), ranges[0].DateFrom)
	assert.Equal(t, date(2026, time.May, 31), ranges[0].DateTo)
}

func TestNormalizeDateDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2025, time.March, 10, 23, 45, 0, 0, loc)

	assert.Equal(t, date(2025, time.March, 10), NormalizeDate(ts))
	assert.Equal(t, date(2025, time.March, 10), NormalizeDateIn(ts, loc))
}
