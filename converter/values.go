package converter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Tuple is the converted form of KindTuple and KindVarTuple shapes.
type Tuple []any

// LocalDateTime is a wall clock date and time that carries no zone.
// It must be localized before it can be placed on a timeline.
type LocalDateTime struct {
	wall time.Time
}

const (
	localDateTimeLayout = "2006-01-02T15:04:05.999999999"
	dateLayout          = "2006-01-02"
)

// NewLocalDateTime returns the wall clock reading of the given components.
func NewLocalDateTime(year int, month time.Month, day, hour, minute, sec, nsec int) LocalDateTime {
	return LocalDateTime{wall: time.Date(year, month, day, hour, minute, sec, nsec, time.UTC)}
}

// LocalDateTimeOf drops the zone of t, keeping its wall clock reading.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return NewLocalDateTime(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

// In localizes the wall clock reading in loc.
func (l LocalDateTime) In(loc *time.Location) time.Time {
	w := l.wall

	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
}

// IsZero reports whether l is the zero value.
func (l LocalDateTime) IsZero() bool {
	return l.wall.IsZero()
}

func (l LocalDateTime) String() string {
	return l.wall.Format(localDateTimeLayout)
}

// Date is a calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()

	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return d.Time(time.UTC).Format(dateLayout)
}

// zone aware layouts first, then the ones without an offset.
var isoZonedLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"20060102T150405Z0700",
}

var isoLocalLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"20060102T150405",
	"2006-01-02",
	"20060102",
}

// parseISO8601 parses an ISO 8601 date or date time. The returned bool
// reports whether the input carried a zone designator; when it does not the
// result is expressed in UTC.
func parseISO8601(s string) (time.Time, bool, error) {
	for _, layout := range isoZonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}

	for _, layout := range isoLocalLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, false, nil
		}
	}

	return time.Time{}, false, fmt.Errorf("unable to parse %q as ISO 8601", s)
}

// number is a JSON number classified as integral or not.
type number struct {
	i     int64
	f     float64
	isInt bool
	text  string
}

// asNumber classifies numeric Go values and json.Number.
func asNumber(v any) (number, bool) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return number{i: i, f: float64(i), isInt: true, text: v.String()}, true
		}

		f, err := v.Float64()
		if err != nil {
			return number{}, false
		}

		return number{f: f, text: v.String()}, true
	case bool, nil:
		return number{}, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		return number{i: i, f: float64(i), isInt: true}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		return number{i: int64(u), f: float64(u), isInt: u <= 1<<63-1}, true
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float()}, true
	default:
		return number{}, false
	}
}

// asSequence returns the elements of any slice or array value other than
// strings and byte slices.
func asSequence(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case Tuple:
		return v, true
	case []byte, string, nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// SequenceItems returns the elements of a sequence value: a []any, a Tuple,
// or any other slice or array except strings and byte slices.
func SequenceItems(v any) ([]any, bool) {
	return asSequence(v)
}

// asMapping returns a string keyed view of map values.
func asMapping(v any) (map[string]any, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}

	return out, true
}

// NormalizeJSON replaces json.Number values with int64 or float64,
// recursing into slices and string keyed maps.
func NormalizeJSON(v any) any {
	switch v := v.(type) {
	case json.Number:
		n, ok := asNumber(v)
		if !ok {
			return v.String()
		}

		if n.isInt {
			return n.i
		}

		return n.f
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = NormalizeJSON(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = NormalizeJSON(e)
		}

		return out
	default:
		return v
	}
}
