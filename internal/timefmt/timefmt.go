package timefmt

import (
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// Formatter renders instants in a fixed IANA timezone. Both methods are pure
// functions of the instant; the zone database handles DST and offset changes.
type Formatter struct {
	loc *time.Location
}

// New creates a Formatter for the given IANA timezone name, e.g. "Asia/Riyadh".
func New(timezone string) (*Formatter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Formatter{loc: loc}, nil
}

// DateKey returns the local calendar date of the instant as "YYYY-MM-DD".
func (f *Formatter) DateKey(t time.Time) string {
	return t.In(f.loc).Format(dateLayout)
}

// DisplayTimestamp returns the local wall-clock time of the instant as
// "YYYY-MM-DD HH:MM:SS", 24-hour, zero-padded.
func (f *Formatter) DisplayTimestamp(t time.Time) string {
	return t.In(f.loc).Format(timestampLayout)
}

// Location exposes the configured zone for callers that need raw conversions.
func (f *Formatter) Location() *time.Location {
	return f.loc
}
