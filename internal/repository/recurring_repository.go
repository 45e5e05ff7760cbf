package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smarttasker/internal/model"
)

// RecurringRepository manages recurrence rules and the paired write that
// materializes their instances.
type RecurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

func (r *RecurringRepository) Create(ctx context.Context, cfg *model.RecurringTask) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(cfg).Error; err != nil {
		return fmt.Errorf("create recurring config: %w", err)
	}
	return nil
}

func (r *RecurringRepository) FindByID(ctx context.Context, userID, configID string) (*model.RecurringTask, error) {
	var cfg model.RecurringTask
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, configID).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *RecurringRepository) ListByUser(ctx context.Context, userID string) ([]model.RecurringTask, error) {
	var configs []model.RecurringTask
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *RecurringRepository) Delete(ctx context.Context, userID, configID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, configID).
		Delete(&model.RecurringTask{}).Error; err != nil {
		return fmt.Errorf("delete recurring config: %w", err)
	}
	return nil
}

// ListCandidates returns the rules due for a generation sweep: the watermark
// is unset or behind the lookahead boundary, the instance budget is not
// exhausted, and the rule has not ended before today.
func (r *RecurringRepository) ListCandidates(ctx context.Context, today, lookAheadDate time.Time) ([]model.RecurringTask, error) {
	var configs []model.RecurringTask
	if err := r.db.WithContext(ctx).
		Where("last_generated_date IS NULL OR last_generated_date < ?", lookAheadDate).
		Where("max_instances IS NULL OR created_instances < max_instances").
		Where("end_date IS NULL OR end_date >= ?", today).
		Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("list candidate configs: %w", err)
	}
	return configs, nil
}

// CreateInstancesAndAdvance inserts generated instances and advances the
// rule's counter and watermark in one transaction, so a failure leaves
// neither write behind. The two phases wrap errors differently so a report
// can still tell which one failed.
func (r *RecurringRepository) CreateInstancesAndAdvance(ctx context.Context, cfg *model.RecurringTask, instances []model.Task, newTotal int, watermark time.Time) error {
	for i := range instances {
		if instances[i].ID == "" {
			instances[i].ID = uuid.NewString()
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&instances).Error; err != nil {
			return fmt.Errorf("insert instances: %w", err)
		}
		if err := tx.Model(&model.RecurringTask{}).
			Where("id = ?", cfg.ID).
			Updates(map[string]interface{}{
				"created_instances":   newTotal,
				"last_generated_date": watermark,
			}).Error; err != nil {
			return fmt.Errorf("advance recurring config: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cfg.CreatedInstances = newTotal
	cfg.LastGeneratedDate = &watermark
	return nil
}
