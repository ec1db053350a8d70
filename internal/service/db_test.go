package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Capstone-project-team7/Back/internal/model"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Cctv{},
		&model.CaptureSession{},
		&model.AnomalyRecord{},
		&model.VideoRecord{},
		&model.DailyAggregate{},
		&model.StorageQuota{},
	))
	return db
}

func seedUserAndCctv(t *testing.T, db *gorm.DB) (userID, cctvID int64) {
	t.Helper()
	user := model.User{Email: "owner@example.com", Name: "owner", NotifyStatus: true}
	require.NoError(t, db.Create(&user).Error)
	cctv := model.Cctv{Name: "front-door", IPAddress: "192.168.0.10", UserID: user.ID}
	require.NoError(t, db.Create(&cctv).Error)
	return user.ID, cctv.ID
}
