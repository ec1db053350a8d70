package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Capstone-project-team7/Back/internal/model"
)

const statDateLayout = "2006-01-02"

// AggregateService maintains the per-user, per-day anomaly counters behind
// the calendar/dashboard view.
type AggregateService struct {
	db    *gorm.DB
	vocab Vocabulary
	log   *zap.Logger
}

// NewAggregateService creates an aggregate updater with the given
// classification vocabulary.
func NewAggregateService(db *gorm.DB, vocab Vocabulary, log *zap.Logger) *AggregateService {
	return &AggregateService{db: db, vocab: vocab, log: log}
}

// Increment bumps the counter for the event's category on the (user, day)
// row, creating the row on first anomaly of the day. The write is a single
// upsert with an arithmetic assignment, so concurrent events for the same
// user and day never lose updates. An unrecognized label increments nothing
// and is not an error; the anomaly record upstream already holds the event.
func (s *AggregateService) Increment(ctx context.Context, userID int64, at time.Time, label string) (Category, bool, error) {
	cat, ok := s.vocab.Classify(label)
	if !ok {
		s.log.Info("label outside vocabulary, counters unchanged",
			zap.Int64("user_id", userID), zap.String("label", label))
		return "", false, nil
	}

	statDate := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	row := &model.DailyAggregate{UserID: userID, StatDate: statDate}
	setCount(row, cat, 1)

	col := counterColumn(cat)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "stat_date"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			col:          gorm.Expr(col+" + ?", 1),
			"updated_at": time.Now(),
		}),
	}).Create(row).Error
	if err != nil {
		return cat, true, err
	}
	return cat, true, nil
}

// Monthly returns the days of one month ("2006-01") that have at least one
// non-zero counter, with only the non-zero counters present.
func (s *AggregateService) Monthly(ctx context.Context, userID int64, yearMonth string) ([]model.DayCounts, error) {
	start, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return nil, fmt.Errorf("month must be yyyy-MM: %w", err)
	}
	end := start.AddDate(0, 1, 0)

	var rows []model.DailyAggregate
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND stat_date >= ? AND stat_date < ?", userID, start, end).
		Order("stat_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]model.DayCounts, 0, len(rows))
	for _, row := range rows {
		counts := nonZeroCounts(&row)
		if len(counts) == 0 {
			continue
		}
		result = append(result, model.DayCounts{Date: row.StatDate.Format(statDateLayout), Counts: counts})
	}
	return result, nil
}

func setCount(row *model.DailyAggregate, c Category, n int64) {
	switch c {
	case CategoryFall:
		row.FallCount = n
	case CategoryDamage:
		row.DamageCount = n
	case CategoryFire:
		row.FireCount = n
	case CategorySmoke:
		row.SmokeCount = n
	case CategoryAbandon:
		row.AbandonCount = n
	case CategoryTheft:
		row.TheftCount = n
	case CategoryAssault:
		row.AssaultCount = n
	}
}

func nonZeroCounts(row *model.DailyAggregate) map[string]int64 {
	all := map[string]int64{
		counterColumn(CategoryFall):    row.FallCount,
		counterColumn(CategoryDamage):  row.DamageCount,
		counterColumn(CategoryFire):    row.FireCount,
		counterColumn(CategorySmoke):   row.SmokeCount,
		counterColumn(CategoryAbandon): row.AbandonCount,
		counterColumn(CategoryTheft):   row.TheftCount,
		counterColumn(CategoryAssault): row.AssaultCount,
	}
	counts := make(map[string]int64, len(all))
	for col, n := range all {
		if n > 0 {
			counts[col] = n
		}
	}
	return counts
}
