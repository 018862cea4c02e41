package codec

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	dateKey    = "_date"
	dateLayout = time.DateOnly
)

// Date is a calendar date without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// MarshalJSON encodes the date as {"_date":"YYYY-MM-DD"}.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{dateKey: d.String()})
}

// UnmarshalJSON accepts the tagged object form.
func (d *Date) UnmarshalJSON(data []byte) error {
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s, ok := obj[dateKey]
	if !ok {
		return errors.New("codec: date object without " + dateKey + " key")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func dateFromObject(obj map[string]any) (Date, bool) {
	raw, ok := obj[dateKey]
	if !ok {
		return Date{}, false
	}
	s, ok := raw.(string)
	if !ok {
		return Date{}, false
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, false
	}
	return d, true
}
