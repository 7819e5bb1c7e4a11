package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSnapshotText = 120

// FoodGetter loads a cached food by id.
type FoodGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Food, error)
}

// LogService manages per-user daily logs and their entries.
type LogService struct {
	db    *gorm.DB
	foods FoodGetter
	views ViewInvalidator
	loc   *time.Location
	now   func() time.Time
	log   *logger.Logger
}

// NewLogService creates a log manager deciding "today" in loc.
func NewLogService(db *gorm.DB, foods FoodGetter, views ViewInvalidator, loc *time.Location, log *logger.Logger) *LogService {
	if views == nil {
		views = NoopInvalidator{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LogService{
		db:    db,
		foods: foods,
		views: views,
		loc:   loc,
		now:   time.Now,
		log:   log.With("service", "log"),
	}
}

// SetClock replaces the time source.
func (s *LogService) SetClock(now func() time.Time) {
	s.now = now
}

// Today is the current calendar date in the configured timezone.
func (s *LogService) Today() string {
	return s.now().In(s.loc).Format(model.DateLayout)
}

// GetOrCreateLog returns the user's log for date, creating it if needed.
// Concurrent callers for the same (user, date) all get the same row.
func (s *LogService) GetOrCreateLog(ctx context.Context, userID uuid.UUID, date string) (*model.DailyLog, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be a YYYY-MM-DD date"}
	}

	existing, err := s.findLog(ctx, userID, date)
	if err != nil {
		return nil, persistenceErr("find daily log", err)
	}
	if existing != nil {
		return existing, nil
	}

	return s.insertLog(ctx, userID, date)
}

func (s *LogService) insertLog(ctx context.Context, userID uuid.UUID, date string) (*model.DailyLog, error) {
	created := model.DailyLog{UserID: userID, LogDate: date, CreatedAt: s.now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "log_date"}},
			DoNothing: true,
		}).
		Create(&created).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, persistenceErr("create daily log", err)
	}

	// Another request may have won the insert; the stored row is authoritative.
	stored, err := s.findLog(ctx, userID, date)
	if err != nil {
		return nil, persistenceErr("reload daily log", err)
	}
	if stored == nil {
		return nil, persistenceErr("reload daily log", gorm.ErrRecordNotFound)
	}
	return stored, nil
}

func (s *LogService) findLog(ctx context.Context, userID uuid.UUID, date string) (*model.DailyLog, error) {
	var l model.DailyLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND log_date = ?", userID, date).
		Limit(1).
		Find(&l).Error
	if err != nil {
		return nil, err
	}
	if l.ID == uuid.Nil {
		return nil, nil
	}
	return &l, nil
}

// AddEntry validates req and logs it under today's log. Nutrition values in
// req are per serving; the stored snapshot is scaled by quantity.
func (s *LogService) AddEntry(ctx context.Context, userID uuid.UUID, req types.AddEntryRequest) (*model.LogEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}

	req = normalizeEntry(req)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	dailyLog, err := s.GetOrCreateLog(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}

	entry := model.LogEntry{
		UserID:     userID,
		DailyLogID: dailyLog.ID,
		Quantity:   req.Quantity,
		Snapshot: scaleSnapshot(model.Snapshot{
			FoodName: req.FoodName,
			Brand:    req.Brand,
			Unit:     req.Unit,
			Calories: req.Calories,
			ProteinG: req.ProteinG,
			CarbsG:   req.CarbsG,
			FatG:     req.FatG,
		}, req.Quantity),
		CreatedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, persistenceErr("insert log entry", err)
	}

	s.invalidate(ctx, userID, ViewDashboard, ViewHistory)
	return &entry, nil
}

// AddEntryFromFood logs quantity servings of a cached food.
func (s *LogService) AddEntryFromFood(ctx context.Context, userID, foodID uuid.UUID, quantity float64) (*model.LogEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}
	if s.foods == nil {
		return nil, &ValidationError{Field: "food_id", Message: "is unknown"}
	}

	food, err := s.foods.Get(ctx, foodID)
	if errors.Is(err, ErrFoodNotFound) {
		return nil, &ValidationError{Field: "food_id", Message: "is unknown"}
	}
	if err != nil {
		return nil, err
	}

	req := types.AddEntryRequest{
		FoodName: truncateRunes(food.Name, maxSnapshotText),
		Quantity: quantity,
		Unit:     food.ServingUnit,
		Calories: food.Calories,
		ProteinG: food.ProteinG,
		CarbsG:   food.CarbsG,
		FatG:     food.FatG,
	}
	if food.Brand != nil {
		brand := truncateRunes(*food.Brand, maxSnapshotText)
		req.Brand = &brand
	}
	return s.AddEntry(ctx, userID, req)
}

// DeleteEntry removes one of the user's entries. Deleting an entry that does
// not exist, or belongs to someone else, is a no-op.
func (s *LogService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrNotAuthorized
	}

	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&model.LogEntry{})
	if res.Error != nil {
		return persistenceErr("delete log entry", res.Error)
	}
	if res.RowsAffected > 0 {
		s.invalidate(ctx, userID, ViewDashboard, ViewHistory)
	}
	return nil
}

// ListEntriesForToday returns today's entries, newest first.
func (s *LogService) ListEntriesForToday(ctx context.Context, userID uuid.UUID) ([]model.LogEntry, error) {
	return s.ListEntries(ctx, userID, s.Today())
}

// ListEntries returns the entries logged on date, newest first. It never
// creates a log.
func (s *LogService) ListEntries(ctx context.Context, userID uuid.UUID, date string) ([]model.LogEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}

	dailyLog, err := s.findLog(ctx, userID, date)
	if err != nil {
		return nil, persistenceErr("find daily log", err)
	}
	if dailyLog == nil {
		return []model.LogEntry{}, nil
	}
	return s.EntriesForLog(ctx, userID, dailyLog.ID)
}

// RecentLogs returns up to limit of the user's logs, latest date first.
func (s *LogService) RecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]model.DailyLog, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}

	logs := []model.DailyLog{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("log_date DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, persistenceErr("list daily logs", err)
	}
	return logs, nil
}

// EntriesForLog returns the user's entries in one log, newest first.
func (s *LogService) EntriesForLog(ctx context.Context, userID, logID uuid.UUID) ([]model.LogEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}

	entries := []model.LogEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND daily_log_id = ?", userID, logID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, persistenceErr("list log entries", err)
	}
	return entries, nil
}

func (s *LogService) invalidate(ctx context.Context, userID uuid.UUID, views ...View) {
	if err := s.views.Invalidate(ctx, userID, views...); err != nil {
		s.log.Warn("view invalidation failed", "user_id", userID, "views", views, "error", err)
	}
}

func normalizeEntry(req types.AddEntryRequest) types.AddEntryRequest {
	req.FoodName = strings.TrimSpace(req.FoodName)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Brand != nil {
		brand := strings.TrimSpace(*req.Brand)
		if brand == "" {
			req.Brand = nil
		} else {
			req.Brand = &brand
		}
	}
	return req
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
