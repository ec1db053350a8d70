package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/service"
)

// Status tags the outcome of one ingestion stage.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Stage names, in execution order.
const (
	StageValidate  = "validate"
	StageUser      = "user"
	StageSession   = "session"
	StageAnomaly   = "anomaly"
	StageVideo     = "video"
	StageAggregate = "aggregate"
	StageQuota     = "quota"
	StageNotify    = "notify"
)

// StageResult is the per-stage outcome reported back to the caller.
type StageResult struct {
	Stage  string `json:"stage"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result summarizes one ingestion run.
type Result struct {
	AnomalyID int64         `json:"anomaly_id"`
	VideoID   int64         `json:"video_id,omitempty"`
	SessionID int64         `json:"session_id"`
	Stages    []StageResult `json:"stages"`
}

// Warnings lists human-readable notes for every stage that fell short.
func (r *Result) Warnings() []string {
	var out []string
	for _, s := range r.Stages {
		if s.Status == StatusDegraded || s.Status == StatusFailed {
			out = append(out, s.Stage+": "+s.Detail)
		}
	}
	return out
}

// Degraded reports whether any stage after the anomaly insert fell short.
func (r *Result) Degraded() bool {
	for _, s := range r.Stages {
		if s.Status == StatusDegraded || s.Status == StatusFailed {
			return true
		}
	}
	return false
}

// UserResolver loads the event's owner.
type UserResolver interface {
	ByID(ctx context.Context, userID int64) (*model.User, error)
}

// SessionResolver attaches the event to a capture session.
type SessionResolver interface {
	Resolve(ctx context.Context, userID, cctvID int64) (*model.CaptureSession, error)
}

// AnomalyRecorder persists the anomaly row.
type AnomalyRecorder interface {
	Record(ctx context.Context, ev *model.AnomalyEvent, sess *model.CaptureSession) (*model.AnomalyRecord, error)
}

// VideoRecorder persists the 1:1 video row with probed metadata.
type VideoRecorder interface {
	Record(ctx context.Context, ev *model.AnomalyEvent, anomaly *model.AnomalyRecord) (*model.VideoRecord, bool, error)
}

// AggregateUpdater bumps the daily dashboard counter.
type AggregateUpdater interface {
	Increment(ctx context.Context, userID int64, at time.Time, label string) (service.Category, bool, error)
}

// QuotaAccountant charges the clip's size against the user's quota.
type QuotaAccountant interface {
	AddUsageFromURL(ctx context.Context, userID int64, videoURL string) (bytes int64, measured bool, err error)
}

// Notifier mails the user about the event.
type Notifier interface {
	Notify(ctx context.Context, user *model.User, ev *model.AnomalyEvent) (sent bool, err error)
}

// Pipeline runs the anomaly ingestion saga. Stages execute in a fixed order;
// everything up to and including the anomaly insert is fatal on failure,
// every later stage fails in isolation and the run continues. Committed
// stages are never rolled back.
type Pipeline struct {
	users     UserResolver
	sessions  SessionResolver
	anomalies AnomalyRecorder
	videos    VideoRecorder
	aggs      AggregateUpdater
	quotas    QuotaAccountant
	notifier  Notifier
	log       *zap.Logger
}

// New wires the ingestion pipeline.
func New(users UserResolver, sessions SessionResolver, anomalies AnomalyRecorder, videos VideoRecorder, aggs AggregateUpdater, quotas QuotaAccountant, notifier Notifier, log *zap.Logger) *Pipeline {
	return &Pipeline{
		users:     users,
		sessions:  sessions,
		anomalies: anomalies,
		videos:    videos,
		aggs:      aggs,
		quotas:    quotas,
		notifier:  notifier,
		log:       log,
	}
}

// Run ingests one anomaly event. The returned error is non-nil only when a
// fatal stage failed; a non-nil Result may still carry degraded or failed
// later stages, visible in Result.Stages.
func (p *Pipeline) Run(ctx context.Context, ev *model.AnomalyEvent) (*Result, error) {
	res := &Result{}

	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidEvent, err)
	}
	res.record(StageValidate, StatusOK, "")

	user, err := p.users.ByID(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	res.record(StageUser, StatusOK, "")

	sess, err := p.sessions.Resolve(ctx, ev.UserID, ev.CctvID)
	if err != nil {
		return nil, err
	}
	res.SessionID = sess.ID
	res.record(StageSession, StatusOK, "")

	anomaly, err := p.anomalies.Record(ctx, ev, sess)
	if err != nil {
		return nil, fmt.Errorf("record anomaly: %w", err)
	}
	res.AnomalyID = anomaly.ID
	res.record(StageAnomaly, StatusOK, "")

	// From here on, failures degrade the run instead of aborting it. The
	// anomaly row is committed and must stay visible either way.
	p.runVideo(ctx, ev, anomaly, res)
	p.runAggregate(ctx, ev, res)
	p.runQuota(ctx, ev, res)
	p.runNotify(ctx, user, ev, res)

	p.log.Info("anomaly ingested",
		zap.Int64("anomaly_id", res.AnomalyID),
		zap.Int64("session_id", res.SessionID),
		zap.Bool("degraded", res.Degraded()))
	return res, nil
}

func (p *Pipeline) runVideo(ctx context.Context, ev *model.AnomalyEvent, anomaly *model.AnomalyRecord, res *Result) {
	rec, degraded, err := p.videos.Record(ctx, ev, anomaly)
	if err != nil {
		p.log.Error("video stage failed", zap.Int64("anomaly_id", anomaly.ID), zap.Error(err))
		res.record(StageVideo, StatusFailed, err.Error())
		return
	}
	res.VideoID = rec.ID
	if degraded {
		res.record(StageVideo, StatusDegraded, "stored with default metadata")
		return
	}
	res.record(StageVideo, StatusOK, "")
}

func (p *Pipeline) runAggregate(ctx context.Context, ev *model.AnomalyEvent, res *Result) {
	_, classified, err := p.aggs.Increment(ctx, ev.UserID, ev.Timestamp.Time, ev.AnomalyType)
	if err != nil {
		p.log.Error("aggregate stage failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
		res.record(StageAggregate, StatusFailed, err.Error())
		return
	}
	if !classified {
		res.record(StageAggregate, StatusSkipped, "unrecognized anomaly type")
		return
	}
	res.record(StageAggregate, StatusOK, "")
}

func (p *Pipeline) runQuota(ctx context.Context, ev *model.AnomalyEvent, res *Result) {
	_, measured, err := p.quotas.AddUsageFromURL(ctx, ev.UserID, ev.VideoURL)
	if err != nil {
		p.log.Error("quota stage failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
		res.record(StageQuota, StatusFailed, err.Error())
		return
	}
	if !measured {
		res.record(StageQuota, StatusDegraded, "charged fallback size estimate")
		return
	}
	res.record(StageQuota, StatusOK, "")
}

func (p *Pipeline) runNotify(ctx context.Context, user *model.User, ev *model.AnomalyEvent, res *Result) {
	sent, err := p.notifier.Notify(ctx, user, ev)
	if err != nil {
		p.log.Error("notify stage failed", zap.Int64("user_id", user.ID), zap.Error(err))
		res.record(StageNotify, StatusFailed, err.Error())
		return
	}
	if !sent {
		res.record(StageNotify, StatusSkipped, "notifications disabled")
		return
	}
	res.record(StageNotify, StatusOK, "")
}

func (r *Result) record(stage string, status Status, detail string) {
	r.Stages = append(r.Stages, StageResult{Stage: stage, Status: status, Detail: detail})
}
