// Package localtime converts instants into a user's wall-clock frame.
// Reminder date/time fields are stored user-local, so every due-time
// comparison starts here.
package localtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Resolve converts now into the calendar date ("YYYY-MM-DD") and clock time
// ("HH:MM", 24-hour, zero-padded) an observer in the given IANA zone would
// read. Empty or unknown zone names fall back to UTC rather than failing:
// a bad timezone on one destination must never take down a dispatch run.
func Resolve(now time.Time, timezone string) (date, clock string) {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	local := now.In(loc)
	return local.Format(DateLayout), local.Format(ClockLayout)
}

// AddMinutes shifts an "HH:MM" clock string forward by n minutes, wrapping
// around midnight. Used by snooze to push a reminder's slot forward.
func AddMinutes(clock string, n int) (string, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed clock time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("malformed clock time %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed clock time %q", clock)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("clock time %q out of range", clock)
	}
	total := (h*60 + m + n) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}
