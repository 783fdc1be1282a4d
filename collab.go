// File: lixenwraith/stories/collab.go
package stories

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// now is the clock used by TimeAgo
var now = time.Now

// millisecondThreshold separates second from millisecond unix timestamps
const millisecondThreshold = 1e12

// TimeAgo renders ts (unix seconds or milliseconds) relative to the current
// time using the labels of lang.Time. Missing labels use the defaults.
// A zero timestamp renders as "". Past one week the date is printed.
func TimeAgo(ts int64, lang *Language) string {
	if ts == 0 {
		return ""
	}

	var t time.Time
	if ts > millisecondThreshold || ts < -millisecondThreshold {
		t = time.UnixMilli(ts)
	} else {
		t = time.Unix(ts, 0)
	}

	current := now()
	diff := current.Sub(t)
	future := diff < 0
	if future {
		diff = -diff
	}

	if diff >= 7*24*time.Hour {
		return t.Format("2006-01-02")
	}

	labels := timeLabels(lang)
	return humanize.CustomRelTime(t, current, "", labels.fromNow, relMagnitudes(labels, future))
}

// resolvedTimeLabels is a TimeLanguage with every label filled in
type resolvedTimeLabels struct {
	ago, hour, hours, minute, minutes, fromNow, seconds, yesterday, tomorrow, days string
}

func timeLabels(lang *Language) resolvedTimeLabels {
	defaults := defaultLanguage().Time
	var tl *TimeLanguage
	if lang != nil {
		tl = lang.Time
	}

	pick := func(get func(*TimeLanguage) *string) string {
		if tl != nil {
			if s := get(tl); s != nil {
				return *s
			}
		}
		return *get(defaults)
	}

	return resolvedTimeLabels{
		ago:       pick(func(t *TimeLanguage) *string { return t.Ago }),
		hour:      pick(func(t *TimeLanguage) *string { return t.Hour }),
		hours:     pick(func(t *TimeLanguage) *string { return t.Hours }),
		minute:    pick(func(t *TimeLanguage) *string { return t.Minute }),
		minutes:   pick(func(t *TimeLanguage) *string { return t.Minutes }),
		fromNow:   pick(func(t *TimeLanguage) *string { return t.FromNow }),
		seconds:   pick(func(t *TimeLanguage) *string { return t.Seconds }),
		yesterday: pick(func(t *TimeLanguage) *string { return t.Yesterday }),
		tomorrow:  pick(func(t *TimeLanguage) *string { return t.Tomorrow }),
		days:      pick(func(t *TimeLanguage) *string { return t.Days }),
	}
}

// relMagnitudes builds the humanize magnitude table for the given labels.
// Past labels already carry "ago"; future ones have it replaced by %s (from now).
func relMagnitudes(l resolvedTimeLabels, future bool) []humanize.RelTimeMagnitude {
	unit := func(label string) string {
		label = strings.ReplaceAll(label, "%", "%%")
		if !future {
			return label
		}
		suffix := " " + strings.ReplaceAll(l.ago, "%", "%%")
		return strings.TrimSuffix(label, suffix) + " %s"
	}

	day := l.yesterday
	if future {
		day = l.tomorrow
	}

	return []humanize.RelTimeMagnitude{
		{D: time.Minute, Format: "%d " + unit(l.seconds), DivBy: time.Second},
		{D: 2 * time.Minute, Format: "1 " + unit(l.minute), DivBy: 1},
		{D: time.Hour, Format: "%d " + unit(l.minutes), DivBy: time.Minute},
		{D: 2 * time.Hour, Format: "1 " + unit(l.hour), DivBy: 1},
		{D: 24 * time.Hour, Format: "%d " + unit(l.hours), DivBy: time.Hour},
		{D: 48 * time.Hour, Format: strings.ReplaceAll(day, "%", "%%"), DivBy: 1},
		{D: 7 * 24 * time.Hour, Format: "%d " + unit(l.days), DivBy: 24 * time.Hour},
	}
}

// SafeNum reports whether v is a usable number: a finite numeric value or a
// string that parses as one. Pointers are dereferenced.
func SafeNum(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return false
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return false
}

// IsPresent is the absence predicate of the resolver: nil and nil
// pointers, funcs, slices and maps are absent, everything else is present.
func IsPresent(v any) bool {
	return present(reflect.ValueOf(v))
}

// Truthy applies generic truthiness: false, zero numbers, empty strings and
// absent values are false.
func Truthy(v any) bool {
	rv := reflect.ValueOf(v)
	if !present(rv) {
		return false
	}

	switch rv.Kind() {
	case reflect.Ptr:
		return Truthy(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
