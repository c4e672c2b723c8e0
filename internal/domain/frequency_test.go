package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		unit Unit
		desc string
	}{
		{"H", 1, UnitHour, "Hourly"},
		{"h", 1, UnitHour, "Hourly"},
		{"15T", 15, UnitMinute, "15 Minutely"},
		{"30min", 30, UnitMinute, "30 Minutely"},
		{"D", 1, UnitDay, "Daily"},
		{"W", 1, UnitWeek, "Weekly"},
		{"W-SUN", 1, UnitWeek, "Weekly"},
		{"B", 1, UnitBusinessDay, "Business Day"},
		{"M", 1, UnitMonthEnd, "Month End"},
		{"MS", 1, UnitMonthStart, "Month Start"},
		{"2QS", 2, UnitQuarterStart, "2 Quarter Start"},
		{"A", 1, UnitYearEnd, "Year End"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFrequency(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.n, f.N)
			assert.Equal(t, tt.unit, f.Unit)
			assert.Equal(t, tt.desc, f.Description())
			assert.Equal(t, tt.in, f.String())
		})
	}

	for _, bad := range []string{"", "X", "0H", "2W", "3B", "H15"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseFrequency(bad)
			assert.Error(t, err)
		})
	}
}

func TestFrequencyOrdering(t *testing.T) {
	mustParse := func(s string) Frequency {
		f, err := ParseFrequency(s)
		require.NoError(t, err)
		return f
	}

	assert.True(t, mustParse("H").IsHourly())
	assert.True(t, mustParse("60min").IsHourly())
	assert.False(t, mustParse("2H").IsHourly())
	assert.False(t, mustParse("D").IsHourly())

	assert.True(t, mustParse("15T").FinerThan(time.Hour))
	assert.False(t, mustParse("H").FinerThan(time.Hour))
	assert.False(t, mustParse("MS").FinerThan(time.Hour))
}

func TestFrequencyLabel(t *testing.T) {
	// 2023-03-04 is a Saturday.
	ts := time.Date(2023, 3, 4, 13, 47, 0, 0, time.UTC)
	origin := time.Date(2023, 3, 1, 5, 0, 0, 0, time.UTC)

	tests := []struct {
		alias string
		want  time.Time
		next  time.Time
	}{
		{"15T", time.Date(2023, 3, 4, 13, 45, 0, 0, time.UTC), time.Date(2023, 3, 4, 14, 0, 0, 0, time.UTC)},
		{"H", time.Date(2023, 3, 4, 13, 0, 0, 0, time.UTC), time.Date(2023, 3, 4, 14, 0, 0, 0, time.UTC)},
		{"D", time.Date(2023, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"W", time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"B", time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)},
		{"MS", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"M", time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"QS", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"Q", time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"YS", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"Y", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			f, err := ParseFrequency(tt.alias)
			require.NoError(t, err)
			label := f.Label(ts, origin)
			assert.Equal(t, tt.want, label)
			assert.Equal(t, tt.next, f.Next(label))
		})
	}
}

func TestFrequencyLabelMultiples(t *testing.T) {
	origin := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	f, err := ParseFrequency("2MS")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), f.Label(time.Date(2023, 4, 20, 0, 0, 0, 0, time.UTC), origin))

	f, err = ParseFrequency("7T")
	require.NoError(t, err)
	// 05:00 is 300 minutes past midnight; the 7-minute bucket starts at 294.
	assert.Equal(t, time.Date(2023, 1, 1, 4, 54, 0, 0, time.UTC), f.Label(time.Date(2023, 1, 1, 5, 0, 0, 0, time.UTC), origin))
}
