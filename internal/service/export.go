package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/logger"
)

// ExportURLExpiry is how long a presigned export link stays valid.
const ExportURLExpiry = 15 * time.Minute

// ErrExportUnavailable is returned when no object store is configured.
var ErrExportUnavailable = errors.New("history export is not configured")

// ObjectStore stores export documents and hands out temporary links to them.
type ObjectStore interface {
	PutJSON(ctx context.Context, key string, body []byte) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// HistoryReader builds the history window for a user.
type HistoryReader interface {
	RecentLogs(ctx context.Context, userID uuid.UUID, windowDays int) ([]HistoryDay, error)
}

// Export describes an uploaded history document.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Days      int       `json:"days"`
}

type exportDocument struct {
	UserID      uuid.UUID    `json:"user_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Days        []HistoryDay `json:"days"`
}

// ExportService writes a user's history window to object storage.
type ExportService struct {
	history HistoryReader
	store   ObjectStore
	now     func() time.Time
	log     *logger.Logger
}

// NewExportService creates an exporter. A nil store disables exports.
func NewExportService(history HistoryReader, store ObjectStore, log *logger.Logger) *ExportService {
	return &ExportService{
		history: history,
		store:   store,
		now:     time.Now,
		log:     log.With("service", "export"),
	}
}

// Enabled reports whether an object store is configured.
func (s *ExportService) Enabled() bool {
	return s.store != nil
}

// ExportHistory uploads the user's history window as JSON and returns a
// presigned link to it.
func (s *ExportService) ExportHistory(ctx context.Context, userID uuid.UUID, windowDays int) (*Export, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}
	if !s.Enabled() {
		return nil, ErrExportUnavailable
	}

	days, err := s.history.RecentLogs(ctx, userID, windowDays)
	if err != nil {
		return nil, err
	}

	generated := s.now().UTC()
	body, err := json.Marshal(exportDocument{UserID: userID, GeneratedAt: generated, Days: days})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, generated.Format("20060102T150405Z"))
	if err := s.store.PutJSON(ctx, key, body); err != nil {
		return nil, persistenceErr("upload export", err)
	}

	url, err := s.store.GeneratePresignedURL(ctx, key, ExportURLExpiry)
	if err != nil {
		return nil, persistenceErr("presign export", err)
	}

	s.log.Info("exported history", "user_id", userID, "key", key, "days", len(days))
	return &Export{
		Key:       key,
		URL:       url,
		ExpiresAt: generated.Add(ExportURLExpiry),
		Days:      len(days),
	}, nil
}
