package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"smarttasker/internal/model"
	"smarttasker/internal/repository"
)

func newRecurringFixture(t *testing.T) (*RecurringService, *model.User, *model.Task) {
	t.Helper()
	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	recurringRepo := repository.NewRecurringRepository(db)
	ctx := context.Background()

	user := &model.User{ID: "user-1", Email: "u@example.com", Name: "U"}
	if err := repository.NewUserRepository(db).Upsert(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	template := &model.Task{UserID: user.ID, Title: "Template", Status: model.StatusPending, Priority: model.PriorityMedium}
	if err := taskRepo.Create(ctx, template); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	return NewRecurringService(recurringRepo, taskRepo), user, template
}

func validInput(templateID string) RecurringInput {
	return RecurringInput{
		TaskTemplateID: templateID,
		Frequency:      model.FrequencyDaily,
		IntervalCount:  1,
		StartDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateConfigHappyPath(t *testing.T) {
	svc, user, template := newRecurringFixture(t)

	input := validInput(template.ID)
	input.IntervalCount = 0 // defaults to 1

	cfg, err := svc.CreateConfig(context.Background(), user, input)
	if err != nil {
		t.Fatalf("create config: %v", err)
	}
	if cfg.IntervalCount != 1 {
		t.Errorf("expected default interval 1, got %d", cfg.IntervalCount)
	}
	if len(cfg.ID) != 36 {
		t.Errorf("expected uuid id, got %q", cfg.ID)
	}
}

func TestCreateConfigValidation(t *testing.T) {
	svc, user, template := newRecurringFixture(t)
	ctx := context.Background()

	monthDay31 := 32
	badMonthDayOnWeekly := 15
	badMax := 0
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		mutate  func(*RecurringInput)
		wantErr string
	}{
		{"custom frequency rejected", func(in *RecurringInput) {
			in.Frequency = model.FrequencyCustom
		}, "no expansion rule"},
		{"unknown frequency rejected", func(in *RecurringInput) {
			in.Frequency = "fortnightly"
		}, "unknown frequency"},
		{"weekday out of range", func(in *RecurringInput) {
			in.Frequency = model.FrequencyWeekly
			in.Weekdays = []int{7}
		}, "out of range"},
		{"weekdays on daily rejected", func(in *RecurringInput) {
			in.Weekdays = []int{1}
		}, "only apply to weekly"},
		{"month_day out of range", func(in *RecurringInput) {
			in.Frequency = model.FrequencyMonthly
			in.MonthDay = &monthDay31
		}, "out of range"},
		{"month_day on weekly rejected", func(in *RecurringInput) {
			in.Frequency = model.FrequencyWeekly
			in.MonthDay = &badMonthDayOnWeekly
		}, "only applies to monthly"},
		{"missing start date", func(in *RecurringInput) {
			in.StartDate = time.Time{}
		}, "start_date is required"},
		{"end before start", func(in *RecurringInput) {
			in.EndDate = &end
		}, "precedes start_date"},
		{"max_instances below one", func(in *RecurringInput) {
			in.MaxInstances = &badMax
		}, "max_instances"},
		{"missing template", func(in *RecurringInput) {
			in.TaskTemplateID = "no-such-task"
		}, "template task"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(template.ID)
			tc.mutate(&input)
			_, err := svc.CreateConfig(ctx, user, input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateConfigRejectsForeignTemplate(t *testing.T) {
	svc, _, template := newRecurringFixture(t)
	stranger := &model.User{ID: "user-2"}

	if _, err := svc.CreateConfig(context.Background(), stranger, validInput(template.ID)); err == nil {
		t.Fatal("expected error for template owned by another user")
	}
}
