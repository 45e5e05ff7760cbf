package recurrence

import (
	"fmt"
	"time"

	"smarttasker/internal/model"
)

// MaxTasksPerRun caps how many instances a single rule may produce in one
// run, independent of its own max_instances budget.
const MaxTasksPerRun = 100

// Result is the outcome of processing one recurrence rule. When Instances is
// non-empty, NewTotal and Watermark carry the counter and watermark values to
// persist alongside them. Otherwise Message explains why nothing was produced.
type Result struct {
	Instances []model.Task
	NewTotal  int
	Watermark time.Time
	Message   string
}

// ProcessConfig computes the generation window and instance budget for one
// rule, expands it, and packages what should be persisted. It is pure: today
// and the lookahead are inputs, external state is the caller's concern.
//
// The returned watermark is the effective window upper bound, not the last
// instance's date, so the next run resumes after the whole covered window.
func ProcessConfig(cfg *model.RecurringTask, tmpl *model.Task, today time.Time, lookAheadDays int) (Result, error) {
	if cfg == nil || tmpl == nil {
		return Result{}, fmt.Errorf("process config: nil config or template")
	}
	if cfg.IntervalCount < 1 {
		return Result{}, fmt.Errorf("process config %s: interval_count must be >= 1", cfg.ID)
	}

	today = DateOnly(today)

	// Resume after the watermark, or from the rule's start; never generate
	// purely historical instances.
	windowStart := DateOnly(cfg.StartDate)
	if cfg.LastGeneratedDate != nil {
		windowStart = DateOnly(*cfg.LastGeneratedDate).AddDate(0, 0, 1)
	}
	if windowStart.Before(today) {
		windowStart = today
	}

	windowEnd := today.AddDate(0, 0, lookAheadDays)
	if cfg.EndDate != nil && DateOnly(*cfg.EndDate).Before(windowEnd) {
		windowEnd = DateOnly(*cfg.EndDate)
	}

	if windowStart.After(windowEnd) {
		return Result{Message: "no tasks to generate in this period"}, nil
	}

	limit := MaxTasksPerRun
	if cfg.MaxInstances != nil {
		if remaining := *cfg.MaxInstances - cfg.CreatedInstances; remaining < limit {
			limit = remaining
		}
	}
	if limit <= 0 {
		return Result{Message: "max instances reached, no more tasks will be generated"}, nil
	}

	var instances []model.Task
	switch cfg.Frequency {
	case model.FrequencyDaily:
		instances = ExpandDaily(cfg, tmpl, windowStart, windowEnd, limit)
	case model.FrequencyWeekly:
		instances = ExpandWeekly(cfg, tmpl, windowStart, windowEnd, limit)
	case model.FrequencyMonthly:
		instances = ExpandMonthly(cfg, tmpl, windowStart, windowEnd, limit)
	default:
		// Legacy rows may carry "custom" or junk; report it distinctly so it
		// cannot be mistaken for "nothing due".
		return Result{Message: fmt.Sprintf("no expansion rule for frequency %q", cfg.Frequency)}, nil
	}

	if len(instances) == 0 {
		return Result{Message: "no tasks created in this period"}, nil
	}

	return Result{
		Instances: instances,
		NewTotal:  cfg.CreatedInstances + len(instances),
		Watermark: windowEnd,
	}, nil
}
