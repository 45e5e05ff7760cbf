package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smarttasker/internal/model"
	"smarttasker/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		return nil, fmt.Errorf("unknown priority %q", input.Priority)
	}

	task := model.Task{
		UserID:      user.ID,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.StatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, user.ID)
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

// ListInstances returns the generated instances of one recurrence rule.
func (s *TaskService) ListInstances(ctx context.Context, recurringID string) ([]model.Task, error) {
	return s.taskRepo.ListInstances(ctx, recurringID)
}

// CompleteTask marks a task as completed. Generated instances are inert with
// respect to recurrence once created, so completing one never touches the
// rule that produced it.
func (s *TaskService) CompleteTask(ctx context.Context, user *model.User, taskID string, completedAt time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.MarkCompleted(ctx, task, completedAt); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task, template or generated instance alike.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID string) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}
