package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smarttasker/internal/model"
)

// UserRepository reads identity rows owned by the external auth collaborator.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates or refreshes a user row. The auth gateway calls this when it
// first sees an identity; it is also what tests use to seed owners.
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	db := r.db.WithContext(ctx)
	var existing model.User
	err := db.Where("id = ?", user.ID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"email": user.Email,
			"name":  user.Name,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
