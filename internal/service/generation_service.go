package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"smarttasker/internal/recurrence"
	"smarttasker/internal/repository"
)

// ConfigResult is the per-rule outcome of one generation sweep.
type ConfigResult struct {
	ID           string `json:"id"`
	TasksCreated int    `json:"tasksCreated,omitempty"`
	NewTotal     int    `json:"newTotal,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Report aggregates one generation sweep across all candidate rules.
type Report struct {
	Processed int            `json:"processed"`
	Results   []ConfigResult `json:"results"`
}

// TasksCreated sums instance counts across all results.
func (r *Report) TasksCreated() int {
	total := 0
	for _, res := range r.Results {
		total += res.TasksCreated
	}
	return total
}

// Errors counts results that recorded an error.
func (r *Report) Errors() int {
	n := 0
	for _, res := range r.Results {
		if res.Error != "" {
			n++
		}
	}
	return n
}

// GenerationService materializes due instances for all candidate recurrence
// rules. Rules are processed sequentially; a failure on one rule is recorded
// in its result entry and never aborts the sweep.
type GenerationService struct {
	taskRepo      *repository.TaskRepository
	recurringRepo *repository.RecurringRepository
}

func NewGenerationService(taskRepo *repository.TaskRepository, recurringRepo *repository.RecurringRepository) *GenerationService {
	return &GenerationService{taskRepo: taskRepo, recurringRepo: recurringRepo}
}

// GenerateDueTasks runs one sweep: it fetches candidate rules, expands each
// against [today, today+lookAheadDays], persists the instances together with
// the advanced counter/watermark, and reports per-rule outcomes.
func (s *GenerationService) GenerateDueTasks(ctx context.Context, now time.Time, lookAheadDays int) (*Report, error) {
	if lookAheadDays <= 0 {
		return nil, fmt.Errorf("lookAheadDays must be positive, got %d", lookAheadDays)
	}

	today := recurrence.DateOnly(now)
	lookAheadDate := today.AddDate(0, 0, lookAheadDays)

	configs, err := s.recurringRepo.ListCandidates(ctx, today, lookAheadDate)
	if err != nil {
		return nil, err
	}

	report := &Report{Processed: len(configs)}
	if len(configs) == 0 {
		return report, nil
	}

	log.Printf("generating recurring tasks from %s to %s for %d configs",
		today.Format("2006-01-02"), lookAheadDate.Format("2006-01-02"), len(configs))

	for i := range configs {
		cfg := &configs[i]

		tmpl, err := s.taskRepo.GetTemplate(ctx, cfg.TaskTemplateID)
		if err != nil {
			report.Results = append(report.Results, ConfigResult{
				ID:    cfg.ID,
				Error: fmt.Sprintf("template task not found: %v", err),
			})
			continue
		}

		res, err := recurrence.ProcessConfig(cfg, tmpl, today, lookAheadDays)
		if err != nil {
			report.Results = append(report.Results, ConfigResult{ID: cfg.ID, Error: err.Error()})
			continue
		}

		if len(res.Instances) == 0 {
			report.Results = append(report.Results, ConfigResult{ID: cfg.ID, Message: res.Message})
			continue
		}

		if err := s.recurringRepo.CreateInstancesAndAdvance(ctx, cfg, res.Instances, res.NewTotal, res.Watermark); err != nil {
			report.Results = append(report.Results, ConfigResult{
				ID:    cfg.ID,
				Error: fmt.Sprintf("persist generated tasks: %v", err),
			})
			continue
		}

		report.Results = append(report.Results, ConfigResult{
			ID:           cfg.ID,
			TasksCreated: len(res.Instances),
			NewTotal:     res.NewTotal,
		})
	}

	return report, nil
}
