// Package biztime provides the clock and the business timezone used for date
// boundaries. Storage and transport always use UTC; the business timezone only
// decides where a "day" or "month" starts.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is used when Init is never called.
const DefaultTimezone = "UTC"

var (
	bizLocation *time.Location
	locationMu  sync.RWMutex
)

// Init sets the business timezone. An empty tz selects UTC.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load business timezone %q: %w", tz, err)
	}
	locationMu.Lock()
	bizLocation = loc
	locationMu.Unlock()
	return nil
}

// Location returns the business timezone location.
func Location() *time.Location {
	locationMu.RLock()
	defer locationMu.RUnlock()
	if bizLocation == nil {
		return time.UTC
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns midnight of t's business day, in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location()).UTC()
}

// StartOfYesterdayUTC returns midnight of the business day before t, in UTC.
func StartOfYesterdayUTC(t time.Time) time.Time {
	b := t.In(Location()).AddDate(0, 0, -1)
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location()).UTC()
}

// NextHourUTC returns the top of the hour following t.
func NextHourUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour).Add(time.Hour)
}

// StartOfNextMonthUTC returns the first instant of the business month after t, in UTC.
func StartOfNextMonthUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month()+1, 1, 0, 0, 0, 0, Location()).UTC()
}

// FormatDate formats t as a calendar date in the business timezone, e.g. "January 2, 2006".
func FormatDate(t time.Time) string {
	return t.In(Location()).Format("January 2, 2006")
}
