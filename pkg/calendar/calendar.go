package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in storage
const DateLayout = "2006-01-02"

// ClockLayout is the zero-padded 24-hour time-of-day format
const ClockLayout = "15:04"

// MinutesPerDay bounds every Clock value
const MinutesPerDay = 24 * 60

// Date is a calendar date without time-of-day or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes y/m/d the way time.Date does (e.g. Jan 32 -> Feb 1)
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in the local zone
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days after d (n may be negative)
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than o
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// After reports whether d is strictly later than o
func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

// Weekday returns the Monday-anchored day index: 0=Monday ... 6=Sunday
func (d Date) Weekday() int {
	return (int(d.Time().Weekday()) + 6) % 7
}

// IsWeekend reports whether d falls on Saturday or Sunday
func (d Date) IsWeekend() bool {
	return d.Weekday() >= 5
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekStart returns the Monday on or before d
func WeekStart(d Date) Date {
	return d.AddDays(-d.Weekday())
}

// MonthBounds returns the first and last calendar date of the month
func MonthBounds(year int, month time.Month) (Date, Date) {
	first := NewDate(year, month, 1)
	last := NewDate(year, month+1, 0)
	return first, last
}

// WeekStartsCovering returns every Monday whose week intersects the month
func WeekStartsCovering(year int, month time.Month) []Date {
	first, last := MonthBounds(year, month)
	var starts []Date
	for monday := WeekStart(first); !monday.After(last); monday = monday.AddDays(7) {
		starts = append(starts, monday)
	}
	return starts
}

// DatesBetween returns every date from..to inclusive; empty when to < from
func DatesBetween(from, to Date) []Date {
	var dates []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// Clock is a time of day in minutes since midnight
type Clock int

// ParseClock parses a 24-hour HH:MM string
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustClock is ParseClock for constants and tests
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Valid reports whether c lies within one day
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ErrInvalidWindow is returned when a window does not satisfy start < end within one day
var ErrInvalidWindow = errors.New("start must be before end")

// Window is a half-open [Start, End) interval within one calendar day
type Window struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// ParseWindow builds a window from two HH:MM strings and validates it
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	return w, w.Validate()
}

// Validate checks start < end and that both ends stay inside the day
func (w Window) Validate() error {
	if !w.Start.Valid() || !w.End.Valid() {
		return fmt.Errorf("window %s outside a single day", w)
	}
	if w.Start >= w.End {
		return fmt.Errorf("%w (%s)", ErrInvalidWindow, w)
	}
	return nil
}

// Minutes returns the window length
func (w Window) Minutes() int {
	return int(w.End - w.Start)
}

// Hours returns the window length in fractional hours
func (w Window) Hours() float64 {
	return float64(w.Minutes()) / 60
}

// Overlaps reports whether the two half-open windows intersect
func (w Window) Overlaps(o Window) bool {
	return Overlaps(w.Start, w.End, o.Start, o.End)
}

// Expand widens the window by pad minutes on both ends; the result may leave the day
func (w Window) Expand(pad int) Window {
	return Window{Start: w.Start - Clock(pad), End: w.End + Clock(pad)}
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Overlaps checks if two half-open ranges [aStart,aEnd) and [bStart,bEnd) overlap
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}
