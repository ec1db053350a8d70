package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/storage"
)

const videoPageSize = 6

// ClipProber is the slice of the storage probe the video service needs.
type ClipProber interface {
	FallbackSize() int64
	SizeWithFallback(ctx context.Context, key string) (size int64, measured bool)
	Duration(ctx context.Context, key string) (seconds float64, playable, measured bool)
}

// ObjectRemover deletes one stored object by key.
type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

// VideoService persists video records with probed metadata and serves the
// paged, filtered listing behind the gallery view.
type VideoService struct {
	db      *gorm.DB
	addr    *storage.Addressing
	probe   ClipProber
	remover ObjectRemover
	vocab   Vocabulary
	log     *zap.Logger
}

// NewVideoService creates a video recorder.
func NewVideoService(db *gorm.DB, addr *storage.Addressing, probe ClipProber, remover ObjectRemover, vocab Vocabulary, log *zap.Logger) *VideoService {
	return &VideoService{db: db, addr: addr, probe: probe, remover: remover, vocab: vocab, log: log}
}

// Record probes the clip and inserts the 1:1 video row for an anomaly.
// A malformed video link or an unreachable store degrades the metadata
// (zero duration, fallback size, not playable) but still inserts; the
// anomaly row is already committed and must not be orphaned. degraded
// reports whether any probed field fell back to a default; a clip the
// probe genuinely measured as unplayable is not a degraded run.
func (s *VideoService) Record(ctx context.Context, ev *model.AnomalyEvent, anomaly *model.AnomalyRecord) (rec *model.VideoRecord, degraded bool, err error) {
	var (
		size        = s.probe.FallbackSize()
		measured    = false
		duration    float64
		playable    bool
		durMeasured bool
	)

	key, kerr := s.addr.ExtractKey(ev.VideoURL)
	if kerr != nil {
		s.log.Warn("video link not addressable, storing defaults",
			zap.String("video_url", ev.VideoURL), zap.Error(kerr))
	} else {
		size, measured = s.probe.SizeWithFallback(ctx, key)
		duration, playable, durMeasured = s.probe.Duration(ctx, key)
	}
	degraded = kerr != nil || !measured || !durMeasured

	rec = &model.VideoRecord{
		FilePath:      anomaly.VideoLink,
		ThumbnailPath: anomaly.ThumbnailLink,
		Duration:      int64(duration),
		FileSize:      size,
		Playable:      playable,
		SessionID:     anomaly.SessionID,
		UserID:        anomaly.UserID,
		AnomalyID:     anomaly.ID,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, degraded, err
	}
	return rec, degraded, nil
}

// VideoFilter narrows the video listing. Dates are yyyy-MM-dd; Category is
// one of the vocabulary categories.
type VideoFilter struct {
	StartDate string
	EndDate   string
	Category  string
	Page      int
}

type videoRow struct {
	ID            int64
	FilePath      string
	ThumbnailPath string
	Duration      int64
	FileSize      int64
	Playable      bool
	SessionID     int64
	AnomalyTime   time.Time
	AnomalyType   string
	CctvName      string
}

// ListByUser returns one page of a user's videos, newest anomaly first,
// storage links materialized into presigned URLs.
func (s *VideoService) ListByUser(ctx context.Context, userID int64, f VideoFilter) (*model.VideoListResponse, error) {
	q := s.db.WithContext(ctx).Table("video_records v").
		Joins("JOIN anomaly_records a ON a.id = v.anomaly_id").
		Joins("JOIN capture_sessions cs ON cs.id = v.session_id").
		Joins("JOIN cctvs c ON c.id = cs.cctv_id").
		Where("v.user_id = ?", userID)

	if f.StartDate != "" && f.EndDate != "" {
		q = q.Where("a.time >= ? AND a.time < ?::date + INTERVAL '1 day'", f.StartDate, f.EndDate)
	}
	if f.Category != "" {
		labels := s.labelsFor(Category(f.Category))
		if len(labels) > 0 {
			q = q.Where("UPPER(a.type) IN ?", labels)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pages := int((total + videoPageSize - 1) / videoPageSize)

	var rows []videoRow
	err := q.Select("v.id, v.file_path, v.thumbnail_path, v.duration, v.file_size, v.playable, v.session_id, a.time AS anomaly_time, a.type AS anomaly_type, c.name AS cctv_name").
		Order("a.time DESC").
		Limit(videoPageSize).
		Offset((page - 1) * videoPageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]model.VideoItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, model.VideoItem{
			ID:            r.ID,
			FilePath:      s.addr.MaterializeURL(ctx, r.FilePath),
			ThumbnailPath: s.addr.MaterializeURL(ctx, r.ThumbnailPath),
			Duration:      r.Duration,
			FileSize:      r.FileSize,
			Playable:      r.Playable,
			AnomalyTime:   r.AnomalyTime.Format(time.RFC3339),
			AnomalyType:   r.AnomalyType,
			SessionID:     r.SessionID,
			CctvName:      r.CctvName,
		})
	}

	return &model.VideoListResponse{
		Items: items,
		Pagination: model.Pagination{
			Total: int(total),
			Page:  page,
			Pages: pages,
			Limit: videoPageSize,
		},
	}, nil
}

// ByID returns one of the user's videos with materialized links, or
// errs.ErrVideoNotFound.
func (s *VideoService) ByID(ctx context.Context, userID, videoID int64) (*model.VideoItem, error) {
	var r videoRow
	err := s.db.WithContext(ctx).Table("video_records v").
		Joins("JOIN anomaly_records a ON a.id = v.anomaly_id").
		Joins("JOIN capture_sessions cs ON cs.id = v.session_id").
		Joins("JOIN cctvs c ON c.id = cs.cctv_id").
		Where("v.user_id = ? AND v.id = ?", userID, videoID).
		Select("v.id, v.file_path, v.thumbnail_path, v.duration, v.file_size, v.playable, v.session_id, a.time AS anomaly_time, a.type AS anomaly_type, c.name AS cctv_name").
		Scan(&r).Error
	if err != nil {
		return nil, err
	}
	if r.ID == 0 {
		return nil, errs.ErrVideoNotFound
	}
	return &model.VideoItem{
		ID:            r.ID,
		FilePath:      s.addr.MaterializeURL(ctx, r.FilePath),
		ThumbnailPath: s.addr.MaterializeURL(ctx, r.ThumbnailPath),
		Duration:      r.Duration,
		FileSize:      r.FileSize,
		Playable:      r.Playable,
		AnomalyTime:   r.AnomalyTime.Format(time.RFC3339),
		AnomalyType:   r.AnomalyType,
		SessionID:     r.SessionID,
		CctvName:      r.CctvName,
	}, nil
}

// Delete removes a user's own videos: store objects best-effort, rows
// unconditionally. Returns the ids actually deleted. Freed bytes are
// released from the quota by the caller.
func (s *VideoService) Delete(ctx context.Context, userID int64, videoIDs []int64) (deleted []int64, freedBytes int64, err error) {
	var videos []model.VideoRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, videoIDs).
		Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	for _, v := range videos {
		s.removeObject(ctx, v.FilePath)
		s.removeObject(ctx, v.ThumbnailPath)
	}

	deleted = make([]int64, 0, len(videos))
	for _, v := range videos {
		deleted = append(deleted, v.ID)
		freedBytes += v.FileSize
	}
	if len(deleted) > 0 {
		if err := s.db.WithContext(ctx).Delete(&model.VideoRecord{}, deleted).Error; err != nil {
			return nil, 0, err
		}
	}
	return deleted, freedBytes, nil
}

func (s *VideoService) removeObject(ctx context.Context, rawURL string) {
	if !s.addr.IsStorageURL(rawURL) {
		return
	}
	key, err := s.addr.ExtractKey(rawURL)
	if err != nil {
		return
	}
	if err := s.remover.Remove(ctx, key); err != nil {
		s.log.Warn("object delete failed", zap.String("key", key), zap.Error(err))
	}
}

// labelsFor returns the upper-cased vocabulary labels mapping to a category.
func (s *VideoService) labelsFor(c Category) []string {
	var labels []string
	for label, cat := range s.vocab {
		if cat == c {
			labels = append(labels, label)
		}
	}
	return labels
}
