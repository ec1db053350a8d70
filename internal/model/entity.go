package model

import "time"

// User owns CCTVs, sessions and all derived anomaly state (GORM).
// Account lifecycle is managed elsewhere; the pipeline only reads it.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"size:100;not null;uniqueIndex"`
	Name         string `gorm:"size:20;not null"`
	NotifyStatus bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Cctv is one registered camera (GORM). Connection-string management is out
// of scope; the pipeline only checks existence.
type Cctv struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:50;not null"`
	IPAddress string `gorm:"size:45;not null"`
	UserID    int64  `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cctv) TableName() string { return "cctvs" }

// CaptureSession is the "this camera is being watched" record an anomaly
// belongs to (GORM). At most one active row per (user, cctv) under normal
// operation; the resolver tolerates zero or duplicates.
type CaptureSession struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	UserID    int64      `gorm:"not null;index:idx_capture_sessions_user_cctv"`
	CctvID    int64      `gorm:"not null;index:idx_capture_sessions_user_cctv"`
	StartTime time.Time  `gorm:"not null"`
	EndTime   *time.Time `gorm:"column:end_time"`
	Status    bool       `gorm:"not null;default:false"`
	StreamURL string     `gorm:"size:250;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CaptureSession) TableName() string { return "capture_sessions" }

// AnomalyRecord is one persisted detection (GORM). Links hold raw storage
// URLs; presigned URLs are computed on read and never stored.
type AnomalyRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Type          string    `gorm:"size:50;not null"`
	Time          time.Time `gorm:"not null;index"`
	VideoLink     string    `gorm:"size:250;not null"`
	ThumbnailLink string    `gorm:"size:250;not null;default:''"`
	SessionID     int64     `gorm:"not null;index"`
	UserID        int64     `gorm:"not null;index"`
	CreatedAt     time.Time
}

func (AnomalyRecord) TableName() string { return "anomaly_records" }

// VideoRecord stores the clip metadata for one anomaly (GORM).
// One-to-one with AnomalyRecord, immutable after creation.
type VideoRecord struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	FilePath      string `gorm:"size:250;not null"`
	ThumbnailPath string `gorm:"size:250;not null;default:''"`
	Duration      int64  `gorm:"not null;default:0"`
	FileSize      int64  `gorm:"not null;default:0"`
	Playable      bool   `gorm:"not null;default:false"`
	SessionID     int64  `gorm:"not null;index"`
	UserID        int64  `gorm:"not null;index"`
	AnomalyID     int64  `gorm:"not null;uniqueIndex"`
	CreatedAt     time.Time
}

func (VideoRecord) TableName() string { return "video_records" }

// DailyAggregate is the per-user, per-day tally of anomaly counts by
// category, backing the calendar/dashboard view (GORM). Counters only grow.
type DailyAggregate struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	UserID   int64     `gorm:"not null;uniqueIndex:idx_daily_aggregates_user_date"`
	StatDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_aggregates_user_date"`

	FallCount    int64 `gorm:"not null;default:0"`
	DamageCount  int64 `gorm:"not null;default:0"`
	FireCount    int64 `gorm:"not null;default:0"`
	SmokeCount   int64 `gorm:"not null;default:0"`
	AbandonCount int64 `gorm:"not null;default:0"`
	TheftCount   int64 `gorm:"not null;default:0"`
	AssaultCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DailyAggregate) TableName() string { return "daily_aggregates" }

// StorageQuota is the per-user byte allowance (GORM). UsedSpace only grows
// through the ingestion pipeline; decrements happen in the delete flow.
type StorageQuota struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	UserID     int64 `gorm:"not null;uniqueIndex"`
	TotalSpace int64 `gorm:"not null"`
	UsedSpace  int64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (StorageQuota) TableName() string { return "storage_quotas" }
