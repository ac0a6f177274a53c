package refreshstate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	defaultWindowStart = 17*60 + 30
	defaultWindowEnd   = 17*60 + 36
)

// Window is the daily price-change window, inclusive at minute granularity,
// evaluated on the wall clock of Location.
type Window struct {
	Location    *time.Location
	StartMinute int
	EndMinute   int
}

// DefaultWindow is 17:30-17:36 at a fixed UTC-08:00 offset. The fixed offset
// does not follow daylight saving; use an IANA zone for that.
func DefaultWindow() Window {
	return Window{
		Location:    time.FixedZone("UTC-08:00", -8*60*60),
		StartMinute: defaultWindowStart,
		EndMinute:   defaultWindowEnd,
	}
}

// NewWindow builds a window from "HH:MM" bounds. zone takes precedence over
// utcOffset ("-08:00") when set.
func NewWindow(utcOffset, zone, start, end string) (Window, error) {
	w := DefaultWindow()

	switch {
	case strings.TrimSpace(zone) != "":
		loc, err := time.LoadLocation(strings.TrimSpace(zone))
		if err != nil {
			return Window{}, fmt.Errorf("load price window zone: %w", err)
		}
		w.Location = loc
	case strings.TrimSpace(utcOffset) != "":
		loc, err := ParseOffset(utcOffset)
		if err != nil {
			return Window{}, err
		}
		w.Location = loc
	}

	var err error
	if strings.TrimSpace(start) != "" {
		if w.StartMinute, err = ParseClock(start); err != nil {
			return Window{}, fmt.Errorf("parse price window start: %w", err)
		}
	}
	if strings.TrimSpace(end) != "" {
		if w.EndMinute, err = ParseClock(end); err != nil {
			return Window{}, fmt.Errorf("parse price window end: %w", err)
		}
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Validate() error {
	if w.Location == nil {
		return fmt.Errorf("price window location is required")
	}
	if w.StartMinute < 0 || w.StartMinute >= 24*60 || w.EndMinute < 0 || w.EndMinute >= 24*60 {
		return fmt.Errorf("price window bounds must be within a day")
	}
	if w.EndMinute < w.StartMinute {
		return fmt.Errorf("price window end must not be before start")
	}
	return nil
}

// Contains reports whether now falls inside the window.
func (w Window) Contains(now time.Time) bool {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	minute := local.Hour()*60 + local.Minute()
	return minute >= w.StartMinute && minute <= w.EndMinute
}

// ParseClock parses "HH:MM" into minutes past midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("clock %q must be HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("clock %q has invalid hour", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock %q has invalid minute", value)
	}
	return hour*60 + minute, nil
}

// ParseOffset parses "+HH:MM" or "-HH:MM" into a fixed zone.
func ParseOffset(value string) (*time.Location, error) {
	value = strings.TrimSpace(value)
	if len(value) < 2 || (value[0] != '+' && value[0] != '-') {
		return nil, fmt.Errorf("utc offset %q must look like -08:00", value)
	}
	minutes, err := ParseClock(value[1:])
	if err != nil {
		return nil, fmt.Errorf("parse utc offset: %w", err)
	}
	seconds := minutes * 60
	if value[0] == '-' {
		seconds = -seconds
	}
	return time.FixedZone("UTC"+value, seconds), nil
}
