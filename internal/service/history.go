package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultHistoryDays is the window used when the caller does not pick one.
	DefaultHistoryDays = 14
	historyFetchLimit  = 8
)

// LogReader is the read side of the log store used to build history.
type LogReader interface {
	RecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]model.DailyLog, error)
	EntriesForLog(ctx context.Context, userID, logID uuid.UUID) ([]model.LogEntry, error)
}

// HistoryDay is one past log with its entries and totals.
type HistoryDay struct {
	Date    string            `json:"date"`
	LogID   uuid.UUID         `json:"log_id"`
	Entries []model.LogEntry  `json:"entries"`
	Totals  model.MacroTotals `json:"totals"`
}

// HistoryService aggregates a bounded window of a user's past logs.
type HistoryService struct {
	logs    LogReader
	maxDays int
	log     *logger.Logger
}

func NewHistoryService(logs LogReader, maxDays int, log *logger.Logger) *HistoryService {
	if maxDays < 1 {
		maxDays = DefaultHistoryDays
	}
	return &HistoryService{
		logs:    logs,
		maxDays: maxDays,
		log:     log.With("service", "history"),
	}
}

// WindowDays clamps a requested window to [1, maxDays], defaulting to 14.
func (s *HistoryService) WindowDays(requested int) int {
	if requested <= 0 {
		requested = DefaultHistoryDays
	}
	if requested > s.maxDays {
		requested = s.maxDays
	}
	return requested
}

// RecentLogs returns the user's most recent logs, latest date first. Entries
// for each day are fetched concurrently; a day whose entries cannot be read
// is returned empty with zero totals.
func (s *HistoryService) RecentLogs(ctx context.Context, userID uuid.UUID, windowDays int) ([]HistoryDay, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}

	logs, err := s.logs.RecentLogs(ctx, userID, s.WindowDays(windowDays))
	if err != nil {
		s.log.Warn("loading history logs failed", "user_id", userID, "error", err)
		return []HistoryDay{}, nil
	}

	days := make([]HistoryDay, len(logs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyFetchLimit)
	for i, l := range logs {
		i, l := i, l
		days[i] = HistoryDay{Date: l.LogDate, LogID: l.ID, Entries: []model.LogEntry{}}
		g.Go(func() error {
			entries, err := s.logs.EntriesForLog(gctx, userID, l.ID)
			if err != nil {
				s.log.Warn("loading history entries failed", "user_id", userID, "date", l.LogDate, "error", err)
				return nil
			}
			days[i].Entries = entries
			days[i].Totals = Totals(entries)
			return nil
		})
	}
	_ = g.Wait()

	return days, nil
}
