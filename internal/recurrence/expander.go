package recurrence

import (
	"time"

	"smarttasker/internal/model"
)

// All date arithmetic here is done on UTC midnights. Walking one day at a
// time is deliberately simple: it stays date-exact across 28/29/30/31-day
// months and year rollover, which faster month-jump variants get wrong.

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from one date to another.
func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// weekIndex numbers the week containing t, counting from the Unix epoch.
// Anchoring on a fixed epoch keeps interval counting stable regardless of
// which weekday a rule's start date falls on.
func weekIndex(t time.Time) int {
	return int(DateOnly(t).Unix()/86400) / 7
}

// monthsBetween counts whole calendar months between the (year, month) pairs.
func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// ExpandDaily returns instances for every day in [windowStart, windowEnd]
// whose whole-day distance from the rule's start date is a multiple of the
// interval, oldest first, at most limit entries.
func ExpandDaily(cfg *model.RecurringTask, tmpl *model.Task, windowStart, windowEnd time.Time, limit int) []model.Task {
	var instances []model.Task
	for d := DateOnly(windowStart); !d.After(DateOnly(windowEnd)) && len(instances) < limit; d = d.AddDate(0, 0, 1) {
		if daysBetween(cfg.StartDate, d)%cfg.IntervalCount == 0 {
			instances = append(instances, NewInstance(cfg, tmpl, d))
		}
	}
	return instances
}

// ExpandWeekly returns instances for days whose epoch-based week is an
// interval multiple of weeks away from the rule's start week and whose
// weekday is in the rule's weekday set (any weekday when the set is empty).
func ExpandWeekly(cfg *model.RecurringTask, tmpl *model.Task, windowStart, windowEnd time.Time, limit int) []model.Task {
	startWeek := weekIndex(cfg.StartDate)
	var instances []model.Task
	for d := DateOnly(windowStart); !d.After(DateOnly(windowEnd)) && len(instances) < limit; d = d.AddDate(0, 0, 1) {
		if (weekIndex(d)-startWeek)%cfg.IntervalCount != 0 {
			continue
		}
		if len(cfg.Weekdays) == 0 || containsWeekday(cfg.Weekdays, int(d.Weekday())) {
			instances = append(instances, NewInstance(cfg, tmpl, d))
		}
	}
	return instances
}

// ExpandMonthly returns instances for days in months an interval multiple of
// calendar months away from the rule's start month, restricted to the rule's
// day-of-month when one is set.
func ExpandMonthly(cfg *model.RecurringTask, tmpl *model.Task, windowStart, windowEnd time.Time, limit int) []model.Task {
	var instances []model.Task
	for d := DateOnly(windowStart); !d.After(DateOnly(windowEnd)) && len(instances) < limit; d = d.AddDate(0, 0, 1) {
		if monthsBetween(cfg.StartDate, d)%cfg.IntervalCount != 0 {
			continue
		}
		if cfg.MonthDay == nil || d.Day() == *cfg.MonthDay {
			instances = append(instances, NewInstance(cfg, tmpl, d))
		}
	}
	return instances
}

// NewInstance stamps one task instance from the template, due on the given
// date. When the template has a due timestamp its time-of-day carries over;
// otherwise the instance is due at UTC midnight. Status is always pending.
func NewInstance(cfg *model.RecurringTask, tmpl *model.Task, date time.Time) model.Task {
	due := DateOnly(date)
	if tmpl.DueDate != nil {
		t := tmpl.DueDate.UTC()
		due = time.Date(due.Year(), due.Month(), due.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	}

	templateID := tmpl.ID
	ruleID := cfg.ID
	return model.Task{
		UserID:          tmpl.UserID,
		Title:           tmpl.Title,
		Description:     tmpl.Description,
		Status:          model.StatusPending,
		Priority:        tmpl.Priority,
		DueDate:         &due,
		Tags:            tmpl.Tags,
		OriginalTaskID:  &templateID,
		RecurringTaskID: &ruleID,
	}
}

func containsWeekday(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
