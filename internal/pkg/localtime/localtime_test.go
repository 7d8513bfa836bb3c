package localtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_KnownZones(t *testing.T) {
	// 2024-06-15 12:00 UTC.
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		zone      string
		wantDate  string
		wantClock string
	}{
		{"UTC", "2024-06-15", "12:00"},
		{"America/New_York", "2024-06-15", "08:00"}, // EDT, UTC-4
		{"Asia/Tokyo", "2024-06-15", "21:00"},
		{"Pacific/Auckland", "2024-06-16", "00:00"}, // date rolls over
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			date, clock := Resolve(now, tt.zone)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantClock, clock)
		})
	}
}

func TestResolve_ZeroPadding(t *testing.T) {
	now := time.Date(2024, 1, 5, 7, 5, 59, 0, time.UTC)
	date, clock := Resolve(now, "UTC")
	assert.Equal(t, "2024-01-05", date)
	assert.Equal(t, "07:05", clock)
}

func TestResolve_UnknownZoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	for _, zone := range []string{"", "Not/AZone", "garbage"} {
		date, clock := Resolve(now, zone)
		assert.Equal(t, "2024-06-15", date, "zone %q", zone)
		assert.Equal(t, "12:00", clock, "zone %q", zone)
	}
}

// 2024-03-10 is the US spring-forward date: 02:00-02:59 local never happens
// in America/New_York. A reminder stored at 02:30 that day must never match.
func TestResolve_SpringForwardSkipsMissingHour(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24*60; i++ {
		instant := start.Add(time.Duration(i) * time.Minute)
		date, clock := Resolve(instant, "America/New_York")
		if date == "2024-03-10" {
			assert.NotEqual(t, "02:30", clock, "instant %s resolved into the skipped hour", instant)
		}
	}
}

// On the fall-back date every wall-clock minute in the repeated hour shows up
// twice, but the resolver must still produce well-formed output for each.
func TestResolve_FallBackRepeatedHour(t *testing.T) {
	// 2024-11-03 01:30 EDT and 01:30 EST are distinct instants.
	first := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC)  // 01:30 EDT
	second := time.Date(2024, 11, 3, 6, 30, 0, 0, time.UTC) // 01:30 EST
	for _, instant := range []time.Time{first, second} {
		date, clock := Resolve(instant, "America/New_York")
		assert.Equal(t, "2024-11-03", date)
		assert.Equal(t, "01:30", clock)
	}
}

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		clock string
		n     int
		want  string
	}{
		{"09:00", 5, "09:05"},
		{"09:58", 5, "10:03"},
		{"23:58", 5, "00:03"}, // wraps past midnight
		{"00:00", -5, "23:55"},
		{"12:30", 0, "12:30"},
		{"00:00", 1440, "00:00"}, // full day wraps to itself
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s+%d", tt.clock, tt.n), func(t *testing.T) {
			got, err := AddMinutes(tt.clock, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddMinutes_Malformed(t *testing.T) {
	for _, clock := range []string{"", "9", "9:5:0", "ab:cd", "25:00", "12:60"} {
		_, err := AddMinutes(clock, 5)
		assert.Error(t, err, "clock %q", clock)
	}
}
