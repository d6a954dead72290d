package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_SupportedLayouts(t *testing.T) {
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"01-Jun-25",
		"01/06/2025",
		"01-06-2025",
		"01-06-25",
		"2025-06-01",
		"1 June 2025",
		"Jun 1, 2025",
		"01.06.2025",
		"June 1, 2025",
	}
	for _, in := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, "input=%q", in)
		assert.Equal(t, want, got, "input=%q", in)
	}
}

func TestParseDate_StripsBOMAndWhitespace(t *testing.T) {
	got, err := ParseDate("\uFEFF 2025-06-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDate_Unsupported(t *testing.T) {
	_, err := ParseDate("first of june")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDateFormat)
}

func TestToTwelveHour(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"13:45", "01:45 pm"},
		{"01:45 PM", "01:45 pm"},
		{"01:45 pm", "01:45 pm"},
		{"09:00", "09:00 am"},
		{"00:15", "12:15 am"},
		{"12:00", "12:00 pm"},
	}
	for _, tc := range cases {
		got, err := ToTwelveHour(tc.in)
		require.NoError(t, err, "input=%q", tc.in)
		assert.Equal(t, tc.want, got, "input=%q", tc.in)
	}
}

func TestToTwelveHour_Unsupported(t *testing.T) {
	for _, in := range []string{"bogus", "25:00", "1pm"} {
		_, err := ToTwelveHour(in)
		assert.ErrorIs(t, err, ErrUnsupportedTimeFormat, "input=%q", in)
	}
}

func TestAllDaysIn(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2025, time.June, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		days := AllDaysIn(tc.year, tc.month)
		require.Len(t, days, tc.days, "%d-%d", tc.year, tc.month)
		assert.Equal(t, 1, days[0].Day())
		assert.Equal(t, tc.days, days[len(days)-1].Day())
		for i := 1; i < len(days); i++ {
			assert.True(t, days[i].After(days[i-1]), "days must ascend")
		}
	}
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "JUNE", MonthKey(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "JANUARY", MonthKey(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestISODate(t *testing.T) {
	assert.Equal(t, "2025-06-02", ISODate(time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)))
}
