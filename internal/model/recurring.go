package model

import "time"

// Recurrence frequencies. Custom is accepted by the schema for forward
// compatibility but has no expansion rule; new configs may not use it.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyCustom  = "custom"
)

// RecurringTask is a recurrence rule: it stamps new task instances from a
// template on a daily/weekly/monthly cadence.
//
// StartDate anchors all interval counting. LastGeneratedDate is the watermark:
// the date through which instances have already been generated. It only moves
// forward, and generation always resumes strictly after it.
type RecurringTask struct {
	ID                string `gorm:"primaryKey;size:36"`
	UserID            string `gorm:"index;size:36"`
	TaskTemplateID    string `gorm:"index;size:36"`
	Frequency         string
	IntervalCount     int   `gorm:"default:1"`
	Weekdays          []int `gorm:"serializer:json"` // 0 = Sunday; weekly only
	MonthDay          *int  // 1..31; monthly only
	StartDate         time.Time
	EndDate           *time.Time
	MaxInstances      *int
	CreatedInstances  int `gorm:"default:0"`
	LastGeneratedDate *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Exhausted reports whether the rule has hit its instance cap.
func (r *RecurringTask) Exhausted() bool {
	return r.MaxInstances != nil && r.CreatedInstances >= *r.MaxInstances
}
