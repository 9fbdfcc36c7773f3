package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

func ParseValue(s string) interface{} {
	// Trim whitespace first
	s = strings.TrimSpace(s)

	// try int
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// FormatValue renders a decoded JSON value as a CSV cell. Whole floats print
// without a decimal point so 500.0 becomes "500".
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// numeric safely converts supported types to float64.
func Numeric(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Float64 {
			return rv.Convert(reflect.TypeOf(float64(0))).Float()
		}
		return 0
	}
}

// ParseHHMM parses a scheduling time cell holding an HHMM integer, for
// example "500" for 05:00 or "1730" for 17:30. Cells written by the
// combiner may carry a trailing ".0" from float-typed sources.
func ParseHHMM(cell string) (hour, minute int, ok bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, 0, false
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, 0, false
	}
	hhmm := int(f)
	if float64(hhmm) != f || hhmm < 0 {
		return 0, 0, false
	}
	hour = hhmm / 100
	minute = hhmm % 100
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// FormatHHMM renders an hour/minute pair as "HH:MM".
func FormatHHMM(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// HHMMToDecimal converts an hour/minute pair to decimal hours.
func HHMMToDecimal(hour, minute int) float64 {
	return float64(hour) + float64(minute)/60
}

// DurationMinutes is the minutes from start to end, rolling over midnight
// when the end time is earlier than the start time.
func DurationMinutes(startHour, startMinute, endHour, endMinute int) int {
	start := startHour*60 + startMinute
	end := endHour*60 + endMinute
	if end < start {
		end += 24 * 60
	}
	return end - start
}
