package scheduler

import (
	"math"
	"time"

	"github.com/sarpras/inventaris/internal/domain"
)

// AddPeriod advances a due date by one period. Monthly and yearly steps move
// the month/year field and clamp the day-of-month to the last valid day of
// the target month, so Jan 31 + monthly lands on Feb 28/29 and stays there
// for subsequent advancements.
func AddPeriod(t time.Time, p domain.Period) time.Time {
	switch p {
	case domain.PeriodDaily:
		return t.AddDate(0, 0, 1)
	case domain.PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case domain.PeriodMonthly:
		return addMonthsClamped(t, 1)
	case domain.PeriodYearly:
		return addMonthsClamped(t, 12)
	}
	return t
}

// addMonthsClamped moves the month field without the day-overflow
// normalization of time.AddDate
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TimeState computes the cached on_time/overdue projection for a time
// trigger: overdue iff today is strictly past the due date
func TimeState(today, due time.Time) domain.ScheduleState {
	if truncateDay(today).After(truncateDay(due)) {
		return domain.ScheduleOverdue
	}
	return domain.ScheduleOnTime
}

// TimeDueState buckets a time trigger for the dashboard
func TimeDueState(today, due time.Time) domain.DueState {
	t, d := truncateDay(today), truncateDay(due)
	switch {
	case t.After(d):
		return domain.DueStateOverdue
	case t.Equal(d):
		return domain.DueStateDue
	}
	return domain.DueStateOnTime
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WarningThreshold is the usage margin that flags a schedule as almost due:
// the last 10% of the interval, never less than one unit
func WarningThreshold(interval uint) uint {
	threshold := uint(math.Round(float64(interval) * 0.1))
	if threshold == 0 {
		return 1
	}
	return threshold
}

// UsageDueState buckets a usage trigger by comparing the latest meter value
// against the due value
func UsageDueState(latest, due, interval uint) domain.DueState {
	switch {
	case latest > due:
		return domain.DueStateOverdue
	case latest == due:
		return domain.DueStateDue
	case latest+WarningThreshold(interval) >= due:
		return domain.DueStateWarning
	}
	return domain.DueStateOnTime
}
