package timesync

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Converter handles conversion from log timestamps to wall-clock time.
// V8 log timestamps are microseconds since the isolate started logging.
type Converter struct {
	base time.Time
}

// NewConverter creates a converter anchored at base, the wall-clock time
// corresponding to log timestamp zero.
func NewConverter(base time.Time) *Converter {
	return &Converter{base: base}
}

// ToWallClock converts a log timestamp (microseconds since start) to wall-clock time.
// Negative timestamps map to instants before the base.
func (c *Converter) ToWallClock(micros int64) time.Time {
	return c.base.Add(time.Duration(micros) * time.Microsecond)
}

// Base returns the anchor used for conversions.
func (c *Converter) Base() time.Time {
	return c.base
}

// Enabled reports whether conversion is configured. A nil converter is disabled.
func (c *Converter) Enabled() bool {
	return c != nil && !c.base.IsZero()
}

// ParseBaseTime parses an RFC 3339 timestamp or a Unix time in seconds.
// An empty string yields a nil converter.
func ParseBaseTime(s string) (*Converter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewConverter(time.Unix(secs, 0).UTC()), nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid base time %q: expected RFC 3339 or unix seconds: %w", s, err)
	}
	return NewConverter(t), nil
}
