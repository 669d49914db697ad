package domain

import (
	"time"

	"github.com/pkg/errors"
)

// DateLayout es el formato con el que se persisten las fechas (ordenable lexicográficamente).
const DateLayout = "2006-01-02"

// Date es un día de calendario, sin hora. El valor cero significa "sin fecha".
type Date struct {
	t time.Time // siempre medianoche UTC
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf devuelve el día de calendario de t visto desde loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errors.Wrapf(err, "parse date %q", s)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysSince devuelve d - other en días.
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) Day() int { return d.t.Day() }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Time() time.Time { return d.t }
