package model

import (
	"fmt"
	"strings"
	"time"
)

const eventTimeLayout = "2006-01-02T15:04:05"

// EventTime accepts the perception service's zone-less ISO-8601 timestamps
// ("2025-01-01T12:00:00") as well as full RFC 3339.
type EventTime struct {
	time.Time
}

func (t *EventTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if parsed, err := time.Parse(eventTimeLayout, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

func (t EventTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(eventTimeLayout) + `"`), nil
}

// AnomalyEvent is the inbound webhook body from the perception service.
// Consumed once by the pipeline, never persisted as-is.
type AnomalyEvent struct {
	CctvID       int64     `json:"cctv_id"`
	VideoURL     string    `json:"videoUrl"`
	AnomalyType  string    `json:"anomalyType"`
	Confidence   *float64  `json:"confidence,omitempty"`
	Timestamp    EventTime `json:"timestamp"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UserID       int64     `json:"user_id"`
}

// Validate checks required fields and returns a field-specific message.
func (e *AnomalyEvent) Validate() error {
	if e.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(e.VideoURL) == "" {
		return fmt.Errorf("videoUrl is required")
	}
	if strings.TrimSpace(e.AnomalyType) == "" {
		return fmt.Errorf("anomalyType is required")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// AnomalyItem is the API view of one anomaly record, links already
// materialized into presigned URLs.
type AnomalyItem struct {
	ID            int64     `json:"anomaly_id"`
	Type          string    `json:"anomaly_type"`
	Time          time.Time `json:"anomaly_time"`
	VideoLink     string    `json:"video_link"`
	ThumbnailLink string    `json:"thumbnail_link"`
	SessionID     int64     `json:"session_id"`
}

// VideoItem is the API view of one video record.
type VideoItem struct {
	ID            int64  `json:"video_id"`
	FilePath      string `json:"file_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	Duration      int64  `json:"duration"`
	FileSize      int64  `json:"file_size"`
	Playable      bool   `json:"playable"`
	AnomalyTime   string `json:"anomaly_time"`
	AnomalyType   string `json:"anomaly_type"`
	SessionID     int64  `json:"session_id"`
	CctvName      string `json:"cctv_name"`
}

// Pagination describes one page of a video listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// VideoListResponse is the response for GET /api/v1/videos.
type VideoListResponse struct {
	Items      []VideoItem `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// DayCounts is one calendar day with its non-zero category counters.
type DayCounts struct {
	Date   string           `json:"date"`
	Counts map[string]int64 `json:"counts"`
}

// QuotaUsage is the response for GET /api/v1/storage.
type QuotaUsage struct {
	TotalSpace  int64   `json:"total_space"`
	UsedSpace   int64   `json:"used_space"`
	UsedPercent float64 `json:"used_percent"`
}

// NotificationUpdateRequest toggles the per-user notification flag.
type NotificationUpdateRequest struct {
	UserID       int64 `json:"user_id" binding:"required"`
	Notification *bool `json:"notification" binding:"required"`
}

// VideoDeleteRequest is the request body for DELETE /api/v1/videos.
type VideoDeleteRequest struct {
	UserID   int64   `json:"user_id" binding:"required"`
	VideoIDs []int64 `json:"video_ids" binding:"required"`
}
