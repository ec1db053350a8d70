package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/storage"
)

// QuotaService tracks per-user storage consumption. Usage moves only through
// arithmetic UPDATEs, so concurrent ingestions never lose bytes.
type QuotaService struct {
	db           *gorm.DB
	addr         *storage.Addressing
	probe        *storage.Probe
	defaultTotal int64
	log          *zap.Logger
}

// NewQuotaService creates a quota accountant with the given default capacity
// for newly provisioned users.
func NewQuotaService(db *gorm.DB, addr *storage.Addressing, probe *storage.Probe, defaultTotal int64, log *zap.Logger) *QuotaService {
	return &QuotaService{db: db, addr: addr, probe: probe, defaultTotal: defaultTotal, log: log}
}

// Ensure provisions a quota row for the user if none exists. Existing rows
// are left untouched.
func (s *QuotaService) Ensure(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.StorageQuota{
		UserID:     userID,
		TotalSpace: s.defaultTotal,
		UsedSpace:  0,
	}).Error
}

// AddUsage charges bytes against the user's quota. A missing quota row is a
// provisioning defect and fails with errs.ErrQuotaNotFound.
func (s *QuotaService) AddUsage(ctx context.Context, userID, bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.StorageQuota{}).
		Where("user_id = ?", userID).
		Update("used_space", gorm.Expr("used_space + ?", bytes))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrQuotaNotFound
	}
	return nil
}

// AddUsageFromURL measures the clip behind the URL and charges its size.
// measured reports whether the charge came from a real measurement or from
// the fallback estimate; either way the quota is charged.
func (s *QuotaService) AddUsageFromURL(ctx context.Context, userID int64, videoURL string) (bytes int64, measured bool, err error) {
	key, kerr := s.addr.ExtractKey(videoURL)
	if kerr != nil {
		s.log.Warn("unaddressable video url, charging fallback estimate",
			zap.Int64("user_id", userID), zap.Error(kerr))
		bytes, measured = s.probe.FallbackSize(), false
	} else {
		bytes, measured = s.probe.SizeWithFallback(ctx, key)
	}
	if err := s.AddUsage(ctx, userID, bytes); err != nil {
		return 0, measured, err
	}
	return bytes, measured, nil
}

// ReleaseUsage returns bytes to the user's quota, clamped at zero so stale
// or duplicated releases never drive usage negative.
func (s *QuotaService) ReleaseUsage(ctx context.Context, userID, bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.StorageQuota{}).
		Where("user_id = ?", userID).
		Update("used_space", gorm.Expr("CASE WHEN used_space > ? THEN used_space - ? ELSE 0 END", bytes, bytes))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrQuotaNotFound
	}
	return nil
}

// Usage returns the user's capacity, consumption and percentage used.
func (s *QuotaService) Usage(ctx context.Context, userID int64) (*model.QuotaUsage, error) {
	var q model.StorageQuota
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrQuotaNotFound
		}
		return nil, err
	}
	usage := &model.QuotaUsage{
		TotalSpace: q.TotalSpace,
		UsedSpace:  q.UsedSpace,
	}
	if q.TotalSpace > 0 {
		usage.UsedPercent = float64(q.UsedSpace) / float64(q.TotalSpace) * 100
	}
	return usage, nil
}
