package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Capstone-project-team7/Back/internal/model"
)

func TestIncrementCreatesRow(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndCctv(t, db)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	cat, classified, err := svc.Increment(context.Background(), userID, at, "FIRE")
	require.NoError(t, err)
	assert.True(t, classified)
	assert.Equal(t, CategoryFire, cat)

	var row model.DailyAggregate
	require.NoError(t, db.Where("user_id = ?", userID).First(&row).Error)
	assert.Equal(t, int64(1), row.FireCount)
	assert.Zero(t, row.FallCount)
	assert.Zero(t, row.TheftCount)
}

func TestIncrementAccumulatesOnlyItsCounter(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndCctv(t, db)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())
	at := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, _, err := svc.Increment(context.Background(), userID, at, "fire")
		require.NoError(t, err)
	}
	_, _, err := svc.Increment(context.Background(), userID, at, "THEFT")
	require.NoError(t, err)

	var rows []model.DailyAggregate
	require.NoError(t, db.Where("user_id = ?", userID).Find(&rows).Error)
	require.Len(t, rows, 1, "same user and day must collapse onto one row")
	assert.Equal(t, int64(5), rows[0].FireCount)
	assert.Equal(t, int64(1), rows[0].TheftCount)
	assert.Zero(t, rows[0].FallCount)
	assert.Zero(t, rows[0].DamageCount)
}

func TestIncrementSeparatesDays(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndCctv(t, db)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())

	_, _, err := svc.Increment(context.Background(), userID, time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC), "FIRE")
	require.NoError(t, err)
	_, _, err = svc.Increment(context.Background(), userID, time.Date(2025, 3, 15, 0, 1, 0, 0, time.UTC), "FIRE")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.DailyAggregate{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestIncrementUnknownLabelNoop(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndCctv(t, db)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())

	_, classified, err := svc.Increment(context.Background(), userID, time.Now().UTC(), "EXPLOSION")
	require.NoError(t, err)
	assert.False(t, classified)

	var count int64
	require.NoError(t, db.Model(&model.DailyAggregate{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIncrementRefreshesUpdatedAt(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndCctv(t, db)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())
	at := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	_, _, err := svc.Increment(context.Background(), userID, at, "FIRE")
	require.NoError(t, err)

	stale := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&model.DailyAggregate{}).
		Where("user_id = ?", userID).
		Update("updated_at", stale).Error)

	_, _, err = svc.Increment(context.Background(), userID, at, "FIRE")
	require.NoError(t, err)

	var row model.DailyAggregate
	require.NoError(t, db.Where("user_id = ?", userID).First(&row).Error)
	assert.Equal(t, int64(2), row.FireCount)
	assert.True(t, row.UpdatedAt.After(stale), "conflict branch must refresh updated_at")
}

func TestMonthly(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndCctv(t, db)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())

	_, _, err := svc.Increment(context.Background(), userID, time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC), "FIRE")
	require.NoError(t, err)
	_, _, err = svc.Increment(context.Background(), userID, time.Date(2025, 3, 20, 8, 0, 0, 0, time.UTC), "THEFT")
	require.NoError(t, err)
	_, _, err = svc.Increment(context.Background(), userID, time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC), "FALL")
	require.NoError(t, err)

	days, err := svc.Monthly(context.Background(), userID, "2025-03")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-14", days[0].Date)
	assert.Equal(t, map[string]int64{"fire_count": 1}, days[0].Counts)
	assert.Equal(t, "2025-03-20", days[1].Date)
	assert.Equal(t, map[string]int64{"theft_count": 1}, days[1].Counts)
}

func TestMonthlyBadFormat(t *testing.T) {
	db := newTestDB(t)
	svc := NewAggregateService(db, DefaultVocabulary(), zap.NewNop())

	_, err := svc.Monthly(context.Background(), 1, "March 2025")
	require.Error(t, err)
}
