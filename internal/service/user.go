package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
)

// UserService resolves users and manages the notification flag. Account
// lifecycle lives elsewhere; the pipeline only needs these two operations.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a user service.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ByID returns a user or errs.ErrUserNotFound.
func (s *UserService) ByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetNotification toggles the per-user notification flag.
func (s *UserService) SetNotification(ctx context.Context, userID int64, enabled bool) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("notify_status", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
