package model

import "time"

// Task statuses. Generated recurring instances always start as pending.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a single task row. The same table holds user-created tasks (which
// may serve as recurrence templates) and generated instances; instances carry
// back-references to the template and the recurrence rule that produced them.
type Task struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"index;size:36"`
	Title           string
	Description     string
	Status          string `gorm:"default:pending"`
	Priority        string `gorm:"default:medium"`
	DueDate         *time.Time
	Tags            []string `gorm:"serializer:json"`
	OriginalTaskID  *string  `gorm:"index;size:36"`
	RecurringTaskID *string  `gorm:"index;size:36"`
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsInstance reports whether the task was generated from a recurrence rule.
func (t *Task) IsInstance() bool {
	return t.RecurringTaskID != nil
}
