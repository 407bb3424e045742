// Package duration converts race times between the "H:MM:SS[.F]" text form
// members type and the millisecond count stored with every result.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	msPerSecond = 1_000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	// The fractional digits are read as centiseconds whatever their count.
	msPerFractionUnit = 10
)

var pattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d):([0-5]\d)(?:\.(\d{1,4}))?$`)

// Mode selects how Format renders the hour field.
type Mode int

const (
	// Full always renders H:MM:SS.
	Full Mode = iota
	// Compact drops the hour field when it is zero.
	Compact
)

// Parse converts s to milliseconds. A string outside the grammar yields a
// *FormatError; it is never treated as zero.
func Parse(s string) (int64, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &FormatError{Input: s}
	}
	// The groups are digit-only and bounded in length, so Atoi cannot fail.
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss, _ := strconv.Atoi(m[3])
	var frac int
	if m[4] != "" {
		frac, _ = strconv.Atoi(m[4])
	}
	return int64(h)*msPerHour + int64(mm)*msPerMinute + int64(ss)*msPerSecond + int64(frac)*msPerFractionUnit, nil
}

// Format renders ms in the given mode. Sub-second precision is dropped.
// Negative input is clamped to zero.
func Format(ms int64, mode Mode) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / msPerHour
	m := (ms % msPerHour) / msPerMinute
	s := (ms % msPerMinute) / msPerSecond
	if mode == Compact && h == 0 {
		return fmt.Sprintf("%02d:%02d", m, s)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatFull is shorthand for Format(ms, Full).
func FormatFull(ms int64) string { return Format(ms, Full) }

// FormatCompact is shorthand for Format(ms, Compact).
func FormatCompact(ms int64) string { return Format(ms, Compact) }
