package plan

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the billing period a plan grants per payment.
type Interval string

const (
	IntervalWeekly     Interval = "weekly"
	IntervalMonthly    Interval = "monthly"
	IntervalQuarterly  Interval = "quarterly"
	IntervalHalfYearly Interval = "half-yearly"
	IntervalYearly     Interval = "yearly"
)

var intervalDays = map[Interval]int{
	IntervalWeekly:     7,
	IntervalMonthly:    30,
	IntervalQuarterly:  90,
	IntervalHalfYearly: 180,
	IntervalYearly:     365,
}

// defaultIntervalDays applies to rows written before the interval column was
// validated.
const defaultIntervalDays = 30

func ParseInterval(s string) (Interval, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	if normalized == "semi-annual" || normalized == "halfyearly" {
		normalized = string(IntervalHalfYearly)
	}

	iv := Interval(normalized)
	if _, ok := intervalDays[iv]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return iv, nil
}

func (i Interval) String() string {
	return string(i)
}

func (i Interval) IsValid() bool {
	_, ok := intervalDays[i]
	return ok
}

// Days is the fixed length of one period.
func (i Interval) Days() int {
	if d, ok := intervalDays[i]; ok {
		return d
	}
	return defaultIntervalDays
}

// ExpiryFrom returns the access cutoff for a period starting at from.
func (i Interval) ExpiryFrom(from time.Time) time.Time {
	return from.AddDate(0, 0, i.Days())
}
