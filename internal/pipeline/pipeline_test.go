package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/service"
)

type fakeUsers struct {
	user *model.User
	err  error
}

func (f *fakeUsers) ByID(ctx context.Context, userID int64) (*model.User, error) {
	return f.user, f.err
}

type fakeSessions struct {
	sess *model.CaptureSession
	err  error
}

func (f *fakeSessions) Resolve(ctx context.Context, userID, cctvID int64) (*model.CaptureSession, error) {
	return f.sess, f.err
}

type fakeAnomalies struct {
	rec *model.AnomalyRecord
	err error
}

func (f *fakeAnomalies) Record(ctx context.Context, ev *model.AnomalyEvent, sess *model.CaptureSession) (*model.AnomalyRecord, error) {
	return f.rec, f.err
}

type fakeVideos struct {
	rec      *model.VideoRecord
	degraded bool
	err      error
	called   bool
}

func (f *fakeVideos) Record(ctx context.Context, ev *model.AnomalyEvent, anomaly *model.AnomalyRecord) (*model.VideoRecord, bool, error) {
	f.called = true
	return f.rec, f.degraded, f.err
}

type fakeAggs struct {
	classified bool
	err        error
	called     bool
}

func (f *fakeAggs) Increment(ctx context.Context, userID int64, at time.Time, label string) (service.Category, bool, error) {
	f.called = true
	return service.CategoryFire, f.classified, f.err
}

type fakeQuotas struct {
	bytes    int64
	measured bool
	err      error
	called   bool
}

func (f *fakeQuotas) AddUsageFromURL(ctx context.Context, userID int64, videoURL string) (int64, bool, error) {
	f.called = true
	return f.bytes, f.measured, f.err
}

type fakeNotifier struct {
	sent   bool
	err    error
	called bool
}

func (f *fakeNotifier) Notify(ctx context.Context, user *model.User, ev *model.AnomalyEvent) (bool, error) {
	f.called = true
	return f.sent, f.err
}

type fixture struct {
	users     *fakeUsers
	sessions  *fakeSessions
	anomalies *fakeAnomalies
	videos    *fakeVideos
	aggs      *fakeAggs
	quotas    *fakeQuotas
	notifier  *fakeNotifier
	pipe      *Pipeline
}

func newFixture() *fixture {
	f := &fixture{
		users:     &fakeUsers{user: &model.User{ID: 2, Email: "owner@example.com", NotifyStatus: true}},
		sessions:  &fakeSessions{sess: &model.CaptureSession{ID: 5, UserID: 2, CctvID: 1}},
		anomalies: &fakeAnomalies{rec: &model.AnomalyRecord{ID: 10, SessionID: 5, UserID: 2}},
		videos:    &fakeVideos{rec: &model.VideoRecord{ID: 20}},
		aggs:      &fakeAggs{classified: true},
		quotas:    &fakeQuotas{bytes: 1024, measured: true},
		notifier:  &fakeNotifier{sent: true},
	}
	f.pipe = New(f.users, f.sessions, f.anomalies, f.videos, f.aggs, f.quotas, f.notifier, zap.NewNop())
	return f
}

func validEvent() *model.AnomalyEvent {
	return &model.AnomalyEvent{
		CctvID:      1,
		UserID:      2,
		VideoURL:    "https://x.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_120000.mp4",
		AnomalyType: "FIRE",
		Timestamp:   model.EventTime{Time: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func stageStatus(t *testing.T, res *Result, stage string) Status {
	t.Helper()
	for _, s := range res.Stages {
		if s.Stage == stage {
			return s.Status
		}
	}
	t.Fatalf("stage %s not found in %+v", stage, res.Stages)
	return ""
}

func TestRunFullSuccess(t *testing.T) {
	f := newFixture()

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)

	assert.Equal(t, int64(10), res.AnomalyID)
	assert.Equal(t, int64(20), res.VideoID)
	assert.Equal(t, int64(5), res.SessionID)
	assert.False(t, res.Degraded())
	for _, s := range res.Stages {
		assert.Equal(t, StatusOK, s.Status, "stage %s", s.Stage)
	}
}

func TestRunInvalidEvent(t *testing.T) {
	f := newFixture()
	ev := validEvent()
	ev.VideoURL = ""

	_, err := f.pipe.Run(context.Background(), ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidEvent)
	assert.False(t, f.videos.called)
}

func TestRunUserNotFound(t *testing.T) {
	f := newFixture()
	f.users.user, f.users.err = nil, errs.ErrUserNotFound

	_, err := f.pipe.Run(context.Background(), validEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
	assert.False(t, f.videos.called)
}

func TestRunAnomalyFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.anomalies.rec, f.anomalies.err = nil, errors.New("insert failed")

	_, err := f.pipe.Run(context.Background(), validEvent())
	require.Error(t, err)
	assert.False(t, f.videos.called)
	assert.False(t, f.aggs.called)
	assert.False(t, f.quotas.called)
	assert.False(t, f.notifier.called)
}

func TestRunVideoFailureContinues(t *testing.T) {
	f := newFixture()
	f.videos.rec, f.videos.err = nil, errors.New("probe blew up")

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, stageStatus(t, res, StageVideo))
	assert.True(t, f.aggs.called)
	assert.True(t, f.quotas.called)
	assert.True(t, f.notifier.called)
	assert.True(t, res.Degraded())
	assert.Zero(t, res.VideoID)
}

func TestRunDegradedVideo(t *testing.T) {
	f := newFixture()
	f.videos.degraded = true

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, stageStatus(t, res, StageVideo))
	assert.True(t, res.Degraded())
}

func TestRunUnclassifiedLabelSkipsAggregate(t *testing.T) {
	f := newFixture()
	f.aggs.classified = false

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, stageStatus(t, res, StageAggregate))
}

func TestRunQuotaFallbackIsDegraded(t *testing.T) {
	f := newFixture()
	f.quotas.measured = false

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, stageStatus(t, res, StageQuota))
}

func TestRunNotificationsDisabledSkipped(t *testing.T) {
	f := newFixture()
	f.notifier.sent = false

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, stageStatus(t, res, StageNotify))
	assert.False(t, res.Degraded())
}

func TestWarnings(t *testing.T) {
	f := newFixture()
	f.videos.rec, f.videos.err = nil, errors.New("probe blew up")
	f.quotas.measured = false

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)

	warnings := res.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], StageVideo)
	assert.Contains(t, warnings[1], StageQuota)
}

func TestRunNotifyFailureContinues(t *testing.T) {
	f := newFixture()
	f.notifier.err = errs.ErrNotifyFailed

	res, err := f.pipe.Run(context.Background(), validEvent())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stageStatus(t, res, StageNotify))
	assert.True(t, res.Degraded())
	assert.Equal(t, int64(10), res.AnomalyID)
}
