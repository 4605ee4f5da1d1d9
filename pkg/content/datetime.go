package content

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

// ErrInvalidDateTime is returned by ParseDateTime when the input matches none
// of the accepted formats.
var ErrInvalidDateTime = errors.New("invalid date and time")

// DateTime is a calendar date and time without a timezone. Offset-qualified
// inputs are converted to UTC and the offset is dropped.
type DateTime struct {
	t time.Time
}

var _ mustache.Content = DateTime{}

// NewDateTime captures the instant t as a UTC-naive DateTime.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t: t.UTC()}
}

// Now returns the current time as a DateTime.
func Now() DateTime {
	return NewDateTime(time.Now())
}

// Layouts tried in order by ParseDateTime. The naive layouts parse into UTC,
// and time.Parse accepts a fractional second after the seconds field even
// though the layouts do not spell it out.
var (
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006-01-02 15:04:05",
	}
	offsetLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
	}
)

// ParseDateTime parses a full date-time (YYYY-MM-DDTHH:MM:SS[.frac]), a bare
// date (midnight), a space separated date-time, and finally an
// offset-qualified date-time, returning the first that succeeds.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{t: t}, nil
		}
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDateTime(t), nil
		}
	}
	return DateTime{}, fmt.Errorf("%w: unable to parse date and time from %q", ErrInvalidDateTime, s)
}

// Time returns the date-time as a time.Time in UTC.
func (d DateTime) Time() time.Time { return d.t }

func (d DateTime) Compare(other DateTime) int { return d.t.Compare(other.t) }

func (d DateTime) String() string {
	return d.t.Format("2006-01-02T15:04:05.999999999")
}

var (
	weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	months   = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

	// padded covers months 1-12, days 1-31, hours 0-23 and minutes and
	// seconds 0-59.
	padded = [60]string{
		"00", "01", "02", "03", "04", "05", "06", "07", "08", "09",
		"10", "11", "12", "13", "14", "15", "16", "17", "18", "19",
		"20", "21", "22", "23", "24", "25", "26", "27", "28", "29",
		"30", "31", "32", "33", "34", "35", "36", "37", "38", "39",
		"40", "41", "42", "43", "44", "45", "46", "47", "48", "49",
		"50", "51", "52", "53", "54", "55", "56", "57", "58", "59",
	}
)

func (d DateTime) IsTruthy() bool { return true }

// A DateTime is only meaningful through its fields, so referencing it
// directly renders nothing.
func (d DateTime) RenderEscaped(mustache.Encoder) error { return nil }

func (d DateTime) RenderUnescaped(mustache.Encoder) error { return nil }

// RenderSection renders the block once with d as the context, which is how
// templates reach the date fields: {{#date}}{{y}}-{{m}}-{{d}}{{/date}}.
func (d DateTime) RenderSection(section mustache.Section, enc mustache.Encoder) error {
	return section.With(d).Render(enc)
}

func (d DateTime) RenderInverse(section mustache.Section, enc mustache.Encoder) error {
	return mustache.RenderIfFalsy(d, section, enc)
}

// RenderFieldEscaped resolves the single character fields y, m, d, e, H, M,
// S, a and b. Longer names never match, even when they start with one of
// those characters.
func (d DateTime) RenderFieldEscaped(_ uint64, name string, enc mustache.Encoder) (bool, error) {
	if len(name) != 1 {
		return false, nil
	}

	var s string
	switch name[0] {
	case 'y':
		s = strconv.Itoa(d.t.Year())
	case 'm':
		s = padded[d.t.Month()]
	case 'd':
		s = padded[d.t.Day()]
	case 'e':
		s = strconv.Itoa(d.t.Day())
	case 'H':
		s = padded[d.t.Hour()]
	case 'M':
		s = padded[d.t.Minute()]
	case 'S':
		s = padded[d.t.Second()]
	case 'a':
		s = weekdays[d.t.Weekday()]
	case 'b':
		s = months[d.t.Month()-1]
	default:
		return false, nil
	}
	return true, enc.WriteUnescaped(s)
}

// None of the fields contain characters that need escaping.
func (d DateTime) RenderFieldUnescaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	return d.RenderFieldEscaped(hash, name, enc)
}

func (d DateTime) RenderFieldSection(uint64, string, mustache.Section, mustache.Encoder) (bool, error) {
	return false, nil
}

func (d DateTime) RenderFieldInverse(uint64, string, mustache.Section, mustache.Encoder) (bool, error) {
	return false, nil
}
