package rulerdomain

import (
	"fmt"
	"time"
)

const (
	// TimeLayout is how last_played is stored. Values are UTC.
	TimeLayout = time.DateTime
	// NeverPlayed is the stored last_played of a fresh player.
	NeverPlayed = "2000-01-01 00:00:00"
)

// ParseLastPlayed reads a stored last_played value.
func ParseLastPlayed(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid last_played %q: %w", s, err)
	}
	return t, nil
}

// FormatLastPlayed renders t the way last_played is stored.
func FormatLastPlayed(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Eligible reports whether a full cooldown has elapsed since last.
func Eligible(last, now time.Time, cooldown time.Duration) bool {
	return now.Sub(last) >= cooldown
}

// Remaining is the time left until the next play, never negative.
func Remaining(last, now time.Time, cooldown time.Duration) time.Duration {
	return max(0, cooldown-now.Sub(last))
}

// Countdown is a duration split for display.
type Countdown struct {
	Hours   int64
	Minutes int64
	Seconds int64
}

// SplitDuration splits d into whole hours, minutes and seconds. Fractions of a
// second are dropped and negative durations read as zero.
func SplitDuration(d time.Duration) Countdown {
	total := int64(max(0, d) / time.Second)
	return Countdown{
		Hours:   total / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

func (c Countdown) String() string {
	return fmt.Sprintf("%dh. %dm. %ds.", c.Hours, c.Minutes, c.Seconds)
}
