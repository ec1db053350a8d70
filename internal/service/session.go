package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
)

// placeholderStreamURL marks sessions auto-created by the pipeline when an
// anomaly arrives before any capture session exists for the camera.
const placeholderStreamURL = "rtsp://placeholder"

// SessionService resolves the capture session an anomaly belongs to.
type SessionService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSessionService creates a session resolver.
func NewSessionService(db *gorm.DB, log *zap.Logger) *SessionService {
	return &SessionService{db: db, log: log}
}

// Resolve finds the capture session for (user, cctv), in order: the active
// row for the pair, then the most recently started row for the camera alone,
// then a new inactive placeholder. It never reports "not found" for the
// session itself; only a missing camera fails, with errs.ErrCctvNotFound.
func (s *SessionService) Resolve(ctx context.Context, userID, cctvID int64) (*model.CaptureSession, error) {
	var sess model.CaptureSession

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND cctv_id = ? AND status = ?", userID, cctvID, true).
		Order("start_time DESC").
		First(&sess).Error
	if err == nil {
		return &sess, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Fall back to any session for the camera, newest start first.
	err = s.db.WithContext(ctx).
		Where("cctv_id = ?", cctvID).
		Order("start_time DESC").
		First(&sess).Error
	if err == nil {
		s.log.Info("resolved session by cctv only",
			zap.Int64("cctv_id", cctvID), zap.Int64("session_id", sess.ID))
		return &sess, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.db.WithContext(ctx).First(&model.Cctv{}, cctvID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCctvNotFound
		}
		return nil, err
	}

	sess = model.CaptureSession{
		UserID:    userID,
		CctvID:    cctvID,
		StartTime: time.Now(),
		Status:    false,
		StreamURL: placeholderStreamURL,
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, err
	}
	s.log.Info("created placeholder session",
		zap.Int64("user_id", userID), zap.Int64("cctv_id", cctvID), zap.Int64("session_id", sess.ID))
	return &sess, nil
}
