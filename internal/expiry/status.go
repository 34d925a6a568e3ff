package expiry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for expiry dates.
const DateLayout = "2006-01-02"

// SoonDays is the last day, inclusive, that still counts as expiring soon.
const SoonDays = 3

type Status string

const (
	StatusNoDate       Status = "no_date"
	StatusExpired      Status = "expired"
	StatusExpiringSoon Status = "expiring_soon"
	StatusGood         Status = "good"
)

// Result is the derived urgency of an expiry date. DaysLeft is nil when
// there is no date.
type Result struct {
	Status   Status `json:"status"`
	Label    string `json:"label"`
	DaysLeft *int   `json:"days_left,omitempty"`
}

// Classify maps an optional expiry date to its urgency relative to now.
// It must be recomputed whenever it is shown since today advances.
func Classify(date string, now time.Time) Result {
	days, ok := DaysUntil(date, now)
	if !ok {
		return Result{Status: StatusNoDate, Label: "No Date"}
	}

	switch {
	case days < 0:
		return Result{Status: StatusExpired, Label: "Expired", DaysLeft: &days}
	case days == 0:
		return Result{Status: StatusExpiringSoon, Label: "Expiring Today", DaysLeft: &days}
	case days == 1:
		return Result{Status: StatusExpiringSoon, Label: "1 day left", DaysLeft: &days}
	case days <= SoonDays:
		return Result{Status: StatusExpiringSoon, Label: fmt.Sprintf("%d days left", days), DaysLeft: &days}
	default:
		return Result{Status: StatusGood, Label: "Good", DaysLeft: &days}
	}
}

// DaysUntil returns the whole number of days from the start of today to
// date. A bare calendar date is midnight in now's location and compared by
// calendar day. A timestamp rounds the exact delta up to whole days.
// The second return is false when date is empty or unparseable.
func DaysUntil(date string, now time.Time) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	today := startOfDay(now)

	if !strings.Contains(date, "T") {
		d, err := time.ParseInLocation(DateLayout, date, now.Location())
		if err != nil {
			return 0, false
		}
		return calendarDays(today, d), true
	}

	t, err := parseTimestamp(date, now.Location())
	if err != nil {
		return 0, false
	}
	return int(math.Ceil(t.Sub(today).Hours() / 24)), true
}

// IsUrgent reports whether an item with this status should be used first.
func IsUrgent(s Status) bool {
	return s == StatusExpired || s == StatusExpiringSoon
}

// Today formats the local calendar day of now.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// AddDays formats the calendar day n days after now.
func AddDays(now time.Time, n int) string {
	return startOfDay(now).AddDate(0, 0, n).Format(DateLayout)
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// calendarDays counts days between two dates ignoring clock changes.
func calendarDays(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
