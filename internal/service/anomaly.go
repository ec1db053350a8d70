package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/storage"
)

// AnomalyService persists anomaly records and serves them back with
// presigned links.
type AnomalyService struct {
	db   *gorm.DB
	addr *storage.Addressing
	log  *zap.Logger
}

// NewAnomalyService creates an anomaly recorder.
func NewAnomalyService(db *gorm.DB, addr *storage.Addressing, log *zap.Logger) *AnomalyService {
	return &AnomalyService{db: db, addr: addr, log: log}
}

// Record inserts the anomaly row for one event. A blank thumbnail link is
// derived from the video link. Store failures are fatal for the pipeline
// run; downstream stages need the created id.
func (s *AnomalyService) Record(ctx context.Context, ev *model.AnomalyEvent, sess *model.CaptureSession) (*model.AnomalyRecord, error) {
	if !s.addr.IsStorageURL(ev.VideoURL) {
		s.log.Warn("video url is not a storage url", zap.String("video_url", ev.VideoURL))
	}

	thumbnail := strings.TrimSpace(ev.ThumbnailURL)
	if thumbnail == "" {
		thumbnail = s.addr.ThumbnailURLFromVideoURL(ev.VideoURL)
	}

	rec := model.AnomalyRecord{
		Type:          ev.AnomalyType,
		Time:          ev.Timestamp.Time,
		VideoLink:     ev.VideoURL,
		ThumbnailLink: thumbnail,
		SessionID:     sess.ID,
		UserID:        ev.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUser returns a user's anomalies, newest first, storage links
// materialized into presigned URLs on the way out.
func (s *AnomalyService) ListByUser(ctx context.Context, userID int64) ([]model.AnomalyItem, error) {
	var recs []model.AnomalyRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}

	items := make([]model.AnomalyItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, model.AnomalyItem{
			ID:            r.ID,
			Type:          r.Type,
			Time:          r.Time,
			VideoLink:     s.addr.MaterializeURL(ctx, r.VideoLink),
			ThumbnailLink: s.addr.MaterializeURL(ctx, r.ThumbnailLink),
			SessionID:     r.SessionID,
		})
	}
	return items, nil
}
