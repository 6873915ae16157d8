package shared

import (
	"fmt"
	"time"
)

// Clock provides the current time. Use RealClock in the app and FixedClock
// in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// RelativeFormatter returns a timestamp formatter bound to clock, suitable
// for the list and detail views.
func RelativeFormatter(clock Clock) func(time.Time) string {
	if clock == nil {
		clock = RealClock{}
	}
	return func(t time.Time) string {
		return FormatRelativeTimeFrom(t, clock.Now())
	}
}

// FormatRelativeTimeFrom returns a human-friendly timestamp relative to now.
// Examples: "now", "5m ago", "3h ago", "2d ago", "1w ago", "3mo ago", "1y ago".
// The zero time renders as "never".
func FormatRelativeTimeFrom(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < 0 {
		return "now"
	}

	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	case d < 4*7*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d.Hours()/(24*7)))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo ago", max(int(d.Hours()/(24*30)), 1))
	default:
		return fmt.Sprintf("%dy ago", int(d.Hours()/(24*365)))
	}
}
