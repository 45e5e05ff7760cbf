package recurrence

import (
	"strings"
	"testing"
	"time"

	"smarttasker/internal/model"
)

func TestProcessResumesAfterWatermark(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	watermark := date(t, "2024-03-05")
	cfg.LastGeneratedDate = &watermark
	cfg.CreatedInstances = 5

	today := date(t, "2024-03-01")
	res, err := ProcessConfig(cfg, makeTemplate(), today, 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	assertDates(t, res.Instances,
		"2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10", "2024-03-11")
	if res.NewTotal != 11 {
		t.Errorf("expected new total 11, got %d", res.NewTotal)
	}
	if want := date(t, "2024-03-11"); !res.Watermark.Equal(want) {
		t.Errorf("expected watermark %s, got %s", want, res.Watermark)
	}
}

func TestProcessNeverGeneratesHistoricalInstances(t *testing.T) {
	// Start date far in the past: the window clamps up to today.
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2020-01-01")
	today := date(t, "2024-03-01")

	res, err := ProcessConfig(cfg, makeTemplate(), today, 3)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for _, inst := range res.Instances {
		if inst.DueDate.Before(today) {
			t.Fatalf("instance due %s precedes today %s", inst.DueDate, today)
		}
	}
	assertDates(t, res.Instances, "2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04")
}

func TestProcessWatermarkIsWindowEndNotLastInstance(t *testing.T) {
	// Every 7 days over a 10-day horizon: the last instance lands before the
	// boundary, but the watermark still covers the whole window.
	cfg := makeConfig(t, model.FrequencyDaily, 7, "2024-03-01")
	today := date(t, "2024-03-01")

	res, err := ProcessConfig(cfg, makeTemplate(), today, 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	assertDates(t, res.Instances, "2024-03-01", "2024-03-08")
	if want := date(t, "2024-03-11"); !res.Watermark.Equal(want) {
		t.Errorf("expected watermark %s, got %s", want, res.Watermark)
	}
}

func TestProcessClampsToEndDate(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	end := date(t, "2024-03-03")
	cfg.EndDate = &end
	today := date(t, "2024-03-01")

	res, err := ProcessConfig(cfg, makeTemplate(), today, 30)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	assertDates(t, res.Instances, "2024-03-01", "2024-03-02", "2024-03-03")
	if !res.Watermark.Equal(end) {
		t.Errorf("expected watermark %s, got %s", end, res.Watermark)
	}
}

func TestProcessEmptyWindowIsNotAnError(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	end := date(t, "2024-03-05")
	cfg.EndDate = &end
	watermark := date(t, "2024-03-05")
	cfg.LastGeneratedDate = &watermark

	res, err := ProcessConfig(cfg, makeTemplate(), date(t, "2024-03-01"), 30)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(res.Instances) != 0 {
		t.Fatalf("expected no instances, got %d", len(res.Instances))
	}
	if !strings.Contains(res.Message, "no tasks to generate") {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestProcessMaxInstancesReached(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	max := 5
	cfg.MaxInstances = &max
	cfg.CreatedInstances = 5

	res, err := ProcessConfig(cfg, makeTemplate(), date(t, "2024-03-01"), 30)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(res.Instances) != 0 {
		t.Fatalf("expected no instances at cap, got %d", len(res.Instances))
	}
	if !strings.Contains(res.Message, "max instances reached") {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestProcessBudgetTruncatesExpansion(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	max := 10
	cfg.MaxInstances = &max
	cfg.CreatedInstances = 7

	res, err := ProcessConfig(cfg, makeTemplate(), date(t, "2024-03-01"), 30)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(res.Instances) != 3 {
		t.Fatalf("expected 3 instances within budget, got %d", len(res.Instances))
	}
	if res.NewTotal != 10 {
		t.Errorf("expected new total 10, got %d", res.NewTotal)
	}
}

func TestProcessPerRunCeiling(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")

	res, err := ProcessConfig(cfg, makeTemplate(), date(t, "2024-03-01"), 365)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(res.Instances) != MaxTasksPerRun {
		t.Fatalf("expected ceiling of %d instances, got %d", MaxTasksPerRun, len(res.Instances))
	}
}

func TestProcessCustomFrequencyReportsNoExpansionRule(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyCustom, 1, "2024-03-01")

	res, err := ProcessConfig(cfg, makeTemplate(), date(t, "2024-03-01"), 30)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(res.Instances) != 0 {
		t.Fatalf("expected no instances, got %d", len(res.Instances))
	}
	if !strings.Contains(res.Message, "no expansion rule") {
		t.Errorf("custom frequency must be distinguishable from nothing-due, got %q", res.Message)
	}
}

func TestProcessNilTemplateIsAnError(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	if _, err := ProcessConfig(cfg, nil, date(t, "2024-03-01"), 30); err == nil {
		t.Fatal("expected error for nil template")
	}
}

func TestProcessTwiceWithAdvancedWatermarkIsIdempotent(t *testing.T) {
	cfg := makeConfig(t, model.FrequencyDaily, 1, "2024-03-01")
	end := date(t, "2024-03-10")
	cfg.EndDate = &end
	today := date(t, "2024-03-01")

	first, err := ProcessConfig(cfg, makeTemplate(), today, 30)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Instances) == 0 {
		t.Fatal("first run produced nothing")
	}

	// Persisting the result advances the watermark; a second run over the
	// same window must then produce nothing.
	cfg.CreatedInstances = first.NewTotal
	wm := first.Watermark
	cfg.LastGeneratedDate = &wm

	second, err := ProcessConfig(cfg, makeTemplate(), today, 30)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Instances) != 0 {
		t.Fatalf("second run regenerated %d instances", len(second.Instances))
	}
}

func TestProcessWindowCorrectness(t *testing.T) {
	// No instance may fall outside [today, min(today+lookahead, end_date)].
	cfg := makeConfig(t, model.FrequencyWeekly, 1, "2024-02-01")
	cfg.Weekdays = []int{2, 4}
	end := date(t, "2024-03-20")
	cfg.EndDate = &end
	today := date(t, "2024-03-01")
	lookAhead := 30

	res, err := ProcessConfig(cfg, makeTemplate(), today, lookAhead)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	upper := today.AddDate(0, 0, lookAhead)
	if end.Before(upper) {
		upper = end
	}
	for _, inst := range res.Instances {
		due := DateOnly(*inst.DueDate)
		if due.Before(today) || due.After(upper) {
			t.Fatalf("instance due %s outside window [%s, %s]", due, today, upper)
		}
	}

	var zero time.Time
	if res.Watermark == zero {
		t.Fatal("expected watermark to be set")
	}
}
