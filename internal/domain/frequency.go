package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Unit is the base period of a Frequency.
type Unit int

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitBusinessDay
	UnitMonthStart
	UnitMonthEnd
	UnitQuarterStart
	UnitQuarterEnd
	UnitYearStart
	UnitYearEnd
)

// Approximate calendar lengths, used only to order frequencies.
const (
	nominalMonth   = 730 * time.Hour
	nominalQuarter = 3 * nominalMonth
	nominalYear    = 8766 * time.Hour
)

// frequencyRe parses offset aliases such as "H", "15T", "30min", "MS", "W-SUN".
var frequencyRe = regexp.MustCompile(`^\s*(\d*)\s*([A-Za-z]+(?:-SUN)?)\s*$`)

var unitAliases = map[string]Unit{
	"S": UnitSecond, "s": UnitSecond,
	"T": UnitMinute, "min": UnitMinute,
	"H": UnitHour, "h": UnitHour,
	"D": UnitDay,
	"W": UnitWeek, "W-SUN": UnitWeek,
	"B":  UnitBusinessDay,
	"M":  UnitMonthEnd, "ME": UnitMonthEnd,
	"MS": UnitMonthStart,
	"Q":  UnitQuarterEnd, "QE": UnitQuarterEnd,
	"QS": UnitQuarterStart,
	"Y":  UnitYearEnd, "YE": UnitYearEnd, "A": UnitYearEnd,
	"YS": UnitYearStart, "AS": UnitYearStart,
}

var unitLabels = map[Unit]string{
	UnitSecond:       "Secondly",
	UnitMinute:       "Minutely",
	UnitHour:         "Hourly",
	UnitDay:          "Daily",
	UnitWeek:         "Weekly",
	UnitBusinessDay:  "Business Day",
	UnitMonthStart:   "Month Start",
	UnitMonthEnd:     "Month End",
	UnitQuarterStart: "Quarter Start",
	UnitQuarterEnd:   "Quarter End",
	UnitYearStart:    "Year Start",
	UnitYearEnd:      "Year End",
}

// Frequency is a parsed offset alias: a positive multiple of a base unit.
type Frequency struct {
	Alias string
	N     int
	Unit  Unit
}

// Hourly is the native grid of the cleaning pipeline.
var Hourly = Frequency{Alias: "H", N: 1, Unit: UnitHour}

// ParseFrequency parses an offset alias, e.g. "H", "15T", "D", "MS".
func ParseFrequency(s string) (Frequency, error) {
	m := frequencyRe.FindStringSubmatch(s)
	if m == nil {
		return Frequency{}, fmt.Errorf("invalid frequency %q", s)
	}
	unit, ok := unitAliases[m[2]]
	if !ok {
		return Frequency{}, fmt.Errorf("unsupported frequency unit %q in %q", m[2], s)
	}
	n := 1
	if m[1] != "" {
		v, err := strconv.Atoi(m[1])
		if err != nil || v <= 0 {
			return Frequency{}, fmt.Errorf("invalid frequency multiple in %q", s)
		}
		n = v
	}
	if n != 1 && (unit == UnitWeek || unit == UnitBusinessDay) {
		return Frequency{}, fmt.Errorf("frequency %q: multiples are not supported for this unit", s)
	}
	return Frequency{Alias: m[1] + m[2], N: n, Unit: unit}, nil
}

// String returns the alias as given, used in output file names.
func (f Frequency) String() string { return f.Alias }

// Description renders a human label, e.g. "Hourly" or "15 Minutely".
func (f Frequency) Description() string {
	if f.N == 1 {
		return unitLabels[f.Unit]
	}
	return fmt.Sprintf("%d %s", f.N, unitLabels[f.Unit])
}

// Fixed reports whether the frequency is an exact duration.
func (f Frequency) Fixed() bool {
	switch f.Unit {
	case UnitSecond, UnitMinute, UnitHour, UnitDay:
		return true
	}
	return false
}

// Step returns the bucket width of a fixed frequency.
func (f Frequency) Step() time.Duration {
	n := time.Duration(f.N)
	switch f.Unit {
	case UnitSecond:
		return n * time.Second
	case UnitMinute:
		return n * time.Minute
	case UnitHour:
		return n * time.Hour
	case UnitDay:
		return n * 24 * time.Hour
	}
	return 0
}

// Nominal returns an approximate period length for ordering frequencies.
func (f Frequency) Nominal() time.Duration {
	if f.Fixed() {
		return f.Step()
	}
	n := time.Duration(f.N)
	switch f.Unit {
	case UnitWeek:
		return 7 * 24 * time.Hour
	case UnitBusinessDay:
		return 24 * time.Hour
	case UnitMonthStart, UnitMonthEnd:
		return n * nominalMonth
	case UnitQuarterStart, UnitQuarterEnd:
		return n * nominalQuarter
	default:
		return n * nominalYear
	}
}

// IsHourly reports whether the frequency is the native hourly grid.
func (f Frequency) IsHourly() bool {
	return f.Fixed() && f.Step() == time.Hour
}

// FinerThan reports whether f produces more points per unit time than d.
func (f Frequency) FinerThan(d time.Duration) bool {
	return f.Nominal() < d
}

// Label returns the bucket label for t. Fixed frequencies are anchored at
// midnight of origin's day; calendar frequencies at calendar boundaries.
func (f Frequency) Label(t, origin time.Time) time.Time {
	switch f.Unit {
	case UnitSecond, UnitMinute, UnitHour, UnitDay:
		o := midnight(origin)
		step := f.Step()
		k := t.Sub(o) / step
		if t.Before(o) && t.Sub(o)%step != 0 {
			k--
		}
		return o.Add(k * step)
	case UnitWeek:
		d := midnight(t)
		return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
	case UnitBusinessDay:
		d := midnight(t)
		switch d.Weekday() {
		case time.Saturday:
			return d.AddDate(0, 0, -1)
		case time.Sunday:
			return d.AddDate(0, 0, -2)
		}
		return d
	default:
		start, months := f.periodStart(t, origin)
		if f.startAnchored() {
			return start
		}
		return start.AddDate(0, months, -1)
	}
}

// Next returns the label following label.
func (f Frequency) Next(label time.Time) time.Time {
	switch f.Unit {
	case UnitSecond, UnitMinute, UnitHour:
		return label.Add(f.Step())
	case UnitDay:
		return label.AddDate(0, 0, f.N)
	case UnitWeek:
		return label.AddDate(0, 0, 7)
	case UnitBusinessDay:
		switch label.Weekday() {
		case time.Friday:
			return label.AddDate(0, 0, 3)
		case time.Saturday:
			return label.AddDate(0, 0, 2)
		}
		return label.AddDate(0, 0, 1)
	default:
		months := f.monthsPerPeriod() * f.N
		if f.startAnchored() {
			return label.AddDate(0, months, 0)
		}
		first := time.Date(label.Year(), label.Month(), 1, 0, 0, 0, 0, label.Location())
		return first.AddDate(0, months+1, -1)
	}
}

func (f Frequency) startAnchored() bool {
	switch f.Unit {
	case UnitMonthStart, UnitQuarterStart, UnitYearStart:
		return true
	}
	return false
}

func (f Frequency) monthsPerPeriod() int {
	switch f.Unit {
	case UnitQuarterStart, UnitQuarterEnd:
		return 3
	case UnitYearStart, UnitYearEnd:
		return 12
	}
	return 1
}

// periodStart returns the first day of the bucket holding t and the bucket
// width in months. Multiples are grouped relative to origin's period.
func (f Frequency) periodStart(t, origin time.Time) (time.Time, int) {
	per := f.monthsPerPeriod()
	period := func(x time.Time) int {
		return (x.Year()*12 + int(x.Month()) - 1) / per
	}
	p, o := period(t), period(origin)
	g := (p - o) / f.N
	if p < o && (p-o)%f.N != 0 {
		g--
	}
	startMonth := (o + g*f.N) * per
	start := time.Date(startMonth/12, time.Month(startMonth%12+1), 1, 0, 0, 0, 0, t.Location())
	return start, per * f.N
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time { return midnight(t) }
