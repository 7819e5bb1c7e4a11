package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyReader fails entry reads for one log.
type flakyReader struct {
	service.LogReader
	failLog  uuid.UUID
	failList bool
}

func (r flakyReader) RecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]model.DailyLog, error) {
	if r.failList {
		return nil, errors.New("logs unavailable")
	}
	return r.LogReader.RecentLogs(ctx, userID, limit)
}

func (r flakyReader) EntriesForLog(ctx context.Context, userID, logID uuid.UUID) ([]model.LogEntry, error) {
	if logID == r.failLog {
		return nil, errors.New("entries unavailable")
	}
	return r.LogReader.EntriesForLog(ctx, userID, logID)
}

// seedDays creates one log per day ending on logStart's date, each holding a
// single entry whose calories equal 100 + day offset.
func seedDays(t *testing.T, f *logFixture, userID uuid.UUID, n int) []model.DailyLog {
	t.Helper()
	logs := make([]model.DailyLog, 0, n)
	for i := 0; i < n; i++ {
		date := logStart.AddDate(0, 0, -i).Format(model.DateLayout)
		l, err := f.logs.GetOrCreateLog(context.Background(), userID, date)
		require.NoError(t, err)
		e := model.LogEntry{
			UserID:     userID,
			DailyLogID: l.ID,
			Quantity:   1,
			Snapshot: model.Snapshot{
				FoodName: "Rolled Oats",
				Unit:     "g",
				Calories: float64(100 + i),
				ProteinG: 5,
				CarbsG:   27,
				FatG:     3,
			},
			CreatedAt: logStart.AddDate(0, 0, -i),
		}
		require.NoError(t, f.db.Create(&e).Error)
		logs = append(logs, *l)
	}
	return logs
}

func TestHistoryDegradesFailedDay(t *testing.T) {
	f := setupLogService(t)
	userID := uuid.New()
	logs := seedDays(t, f, userID, 14)

	reader := flakyReader{LogReader: f.logs, failLog: logs[4].ID}
	history := service.NewHistoryService(reader, 90, logger.Nop())

	days, err := history.RecentLogs(context.Background(), userID, 14)
	require.NoError(t, err)
	require.Len(t, days, 14)

	for i, d := range days {
		assert.Equal(t, logs[i].LogDate, d.Date, "date descending")
		assert.Equal(t, logs[i].ID, d.LogID)
		if i == 4 {
			assert.NotNil(t, d.Entries)
			assert.Empty(t, d.Entries)
			assert.Equal(t, model.MacroTotals{}, d.Totals)
			continue
		}
		require.Len(t, d.Entries, 1)
		assert.Equal(t, float64(100+i), d.Totals.Calories)
		assert.Equal(t, 5.0, d.Totals.ProteinG)
	}
}

func TestHistoryWindow(t *testing.T) {
	f := setupLogService(t)
	userID := uuid.New()
	seedDays(t, f, userID, 30)

	history := service.NewHistoryService(f.logs, 20, logger.Nop())

	days, err := history.RecentLogs(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Len(t, days, service.DefaultHistoryDays)
	assert.Equal(t, "2026-03-01", days[0].Date)

	days, err = history.RecentLogs(context.Background(), userID, 3)
	require.NoError(t, err)
	assert.Len(t, days, 3)

	days, err = history.RecentLogs(context.Background(), userID, 365)
	require.NoError(t, err)
	assert.Len(t, days, 20)
}

func TestHistoryEmpty(t *testing.T) {
	f := setupLogService(t)
	history := service.NewHistoryService(f.logs, 90, logger.Nop())

	days, err := history.RecentLogs(context.Background(), uuid.New(), 14)
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestHistoryLogListFailureIsEmpty(t *testing.T) {
	f := setupLogService(t)
	userID := uuid.New()
	seedDays(t, f, userID, 3)

	history := service.NewHistoryService(flakyReader{LogReader: f.logs, failList: true}, 90, logger.Nop())

	days, err := history.RecentLogs(context.Background(), userID, 14)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestHistoryIncludesTodaysEntries(t *testing.T) {
	f := setupLogService(t)
	userID := uuid.New()

	_, err := f.logs.AddEntry(context.Background(), userID, chickenRequest(2))
	require.NoError(t, err)
	_, err = f.logs.AddEntry(context.Background(), userID, chickenRequest(1))
	require.NoError(t, err)

	history := service.NewHistoryService(f.logs, 90, logger.Nop())
	days, err := history.RecentLogs(context.Background(), userID, 14)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Len(t, days[0].Entries, 2)
	assert.Equal(t, 495.0, days[0].Totals.Calories)
	assert.Equal(t, 10.8, days[0].Totals.FatG)
}

func TestHistoryRequiresIdentity(t *testing.T) {
	f := setupLogService(t)
	history := service.NewHistoryService(f.logs, 90, logger.Nop())

	_, err := history.RecentLogs(context.Background(), uuid.Nil, 14)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestHistoryWindowDays(t *testing.T) {
	history := service.NewHistoryService(nil, 90, logger.Nop())
	assert.Equal(t, 14, history.WindowDays(-3))
	assert.Equal(t, 14, history.WindowDays(0))
	assert.Equal(t, 7, history.WindowDays(7))
	assert.Equal(t, 90, history.WindowDays(91))
}
