package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	// 2026-10-18 is a Sunday
	sunday := NewDate(2026, time.October, 18)
	assert.Equal(t, NewDate(2026, time.October, 12), WeekStart(sunday))

	monday := NewDate(2026, time.October, 19)
	assert.Equal(t, monday, WeekStart(monday))

	// crosses a year boundary
	assert.Equal(t, NewDate(2025, time.December, 29), WeekStart(NewDate(2026, time.January, 1)))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, 0, NewDate(2026, time.October, 19).Weekday())
	assert.Equal(t, 5, NewDate(2026, time.October, 24).Weekday())
	assert.Equal(t, 6, NewDate(2026, time.October, 25).Weekday())
	assert.True(t, NewDate(2026, time.October, 25).IsWeekend())
	assert.False(t, NewDate(2026, time.October, 23).IsWeekend())
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, time.February)
	assert.Equal(t, NewDate(2024, time.February, 1), first)
	assert.Equal(t, NewDate(2024, time.February, 29), last)

	first, last = MonthBounds(2026, time.December)
	assert.Equal(t, NewDate(2026, time.December, 1), first)
	assert.Equal(t, NewDate(2026, time.December, 31), last)
}

func TestWeekStartsCovering(t *testing.T) {
	// October 2026: Thu 1st .. Sat 31st
	starts := WeekStartsCovering(2026, time.October)
	require.Len(t, starts, 5)
	assert.Equal(t, NewDate(2026, time.September, 28), starts[0])
	assert.Equal(t, NewDate(2026, time.October, 26), starts[4])
	for _, s := range starts {
		assert.Equal(t, 0, s.Weekday())
	}

	// February 2027 starts on a Monday and spans exactly four weeks
	assert.Len(t, WeekStartsCovering(2027, time.February), 4)
}

func TestDatesBetween(t *testing.T) {
	from := NewDate(2026, time.October, 30)
	dates := DatesBetween(from, NewDate(2026, time.November, 2))
	require.Len(t, dates, 4)
	assert.Equal(t, "2026-11-01", dates[2].String())
	assert.Empty(t, DatesBetween(from, from.AddDays(-1)))
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("18:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(18*60+30), c)
	assert.Equal(t, "18:30", c.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	w, err := ParseWindow("18:00", "22:00")
	require.NoError(t, err)
	assert.Equal(t, 240, w.Minutes())
	assert.Equal(t, 4.0, w.Hours())

	_, err = ParseWindow("22:00", "18:00")
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = ParseWindow("10:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	a := Window{Start: MustClock("18:00"), End: MustClock("19:00")}
	b := Window{Start: MustClock("19:00"), End: MustClock("20:00")}
	assert.False(t, a.Overlaps(b), "touching windows do not overlap")
	assert.True(t, a.Expand(1).Overlaps(b))
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Date   Date   `json:"date"`
		Window Window `json:"window"`
	}
	in := payload{Date: NewDate(2026, time.October, 19), Window: Window{Start: MustClock("09:05"), End: MustClock("17:00")}}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-10-19","window":{"start":"09:05","end":"17:00"}}`, string(raw))

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"19/10/2026"}`), &out))
}
