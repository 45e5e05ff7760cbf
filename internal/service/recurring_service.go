package service

import (
	"context"
	"fmt"
	"time"

	"smarttasker/internal/model"
	"smarttasker/internal/recurrence"
	"smarttasker/internal/repository"
)

// RecurringInput represents data required to create a recurrence rule.
type RecurringInput struct {
	TaskTemplateID string     `json:"task_template_id"`
	Frequency      string     `json:"frequency"`
	IntervalCount  int        `json:"interval_count"`
	Weekdays       []int      `json:"weekdays"`
	MonthDay       *int       `json:"month_day"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	MaxInstances   *int       `json:"max_instances"`
}

// RecurringService validates and manages recurrence rules.
type RecurringService struct {
	recurringRepo *repository.RecurringRepository
	taskRepo      *repository.TaskRepository
}

func NewRecurringService(recurringRepo *repository.RecurringRepository, taskRepo *repository.TaskRepository) *RecurringService {
	return &RecurringService{recurringRepo: recurringRepo, taskRepo: taskRepo}
}

// CreateConfig validates the rule and persists it. The template task must
// exist and belong to the same user.
func (s *RecurringService) CreateConfig(ctx context.Context, user *model.User, input RecurringInput) (*model.RecurringTask, error) {
	if err := validateRecurringInput(input); err != nil {
		return nil, err
	}

	if _, err := s.taskRepo.FindByID(ctx, user.ID, input.TaskTemplateID); err != nil {
		return nil, fmt.Errorf("template task %s: %w", input.TaskTemplateID, err)
	}

	interval := input.IntervalCount
	if interval == 0 {
		interval = 1
	}

	cfg := model.RecurringTask{
		UserID:         user.ID,
		TaskTemplateID: input.TaskTemplateID,
		Frequency:      input.Frequency,
		IntervalCount:  interval,
		StartDate:      recurrence.DateOnly(input.StartDate),
		MaxInstances:   input.MaxInstances,
	}
	if input.Frequency == model.FrequencyWeekly {
		cfg.Weekdays = input.Weekdays
	}
	if input.Frequency == model.FrequencyMonthly {
		cfg.MonthDay = input.MonthDay
	}
	if input.EndDate != nil {
		end := recurrence.DateOnly(*input.EndDate)
		cfg.EndDate = &end
	}

	if err := s.recurringRepo.Create(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *RecurringService) ListConfigs(ctx context.Context, user *model.User) ([]model.RecurringTask, error) {
	return s.recurringRepo.ListByUser(ctx, user.ID)
}

func (s *RecurringService) GetConfig(ctx context.Context, user *model.User, configID string) (*model.RecurringTask, error) {
	return s.recurringRepo.FindByID(ctx, user.ID, configID)
}

func (s *RecurringService) DeleteConfig(ctx context.Context, user *model.User, configID string) error {
	return s.recurringRepo.Delete(ctx, user.ID, configID)
}

func validateRecurringInput(input RecurringInput) error {
	if input.TaskTemplateID == "" {
		return fmt.Errorf("task_template_id is required")
	}

	switch input.Frequency {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
	case model.FrequencyCustom:
		return fmt.Errorf("frequency %q has no expansion rule and cannot be scheduled", input.Frequency)
	default:
		return fmt.Errorf("unknown frequency %q", input.Frequency)
	}

	if input.IntervalCount < 0 {
		return fmt.Errorf("interval_count must be >= 1")
	}

	if len(input.Weekdays) > 0 {
		if input.Frequency != model.FrequencyWeekly {
			return fmt.Errorf("weekdays only apply to weekly rules")
		}
		for _, d := range input.Weekdays {
			if d < 0 || d > 6 {
				return fmt.Errorf("weekday %d out of range 0..6", d)
			}
		}
	}

	if input.MonthDay != nil {
		if input.Frequency != model.FrequencyMonthly {
			return fmt.Errorf("month_day only applies to monthly rules")
		}
		if *input.MonthDay < 1 || *input.MonthDay > 31 {
			return fmt.Errorf("month_day %d out of range 1..31", *input.MonthDay)
		}
	}

	if input.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return fmt.Errorf("end_date precedes start_date")
	}
	if input.MaxInstances != nil && *input.MaxInstances < 1 {
		return fmt.Errorf("max_instances must be >= 1")
	}

	return nil
}
