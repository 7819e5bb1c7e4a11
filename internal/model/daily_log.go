package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-date format used for DailyLog.LogDate.
const DateLayout = "2006-01-02"

// DailyLog groups one user's entries for one calendar date.
type DailyLog struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_daily_logs_user_date,priority:1" json:"user_id"`
	LogDate   string    `gorm:"size:10;not null;uniqueIndex:idx_daily_logs_user_date,priority:2" json:"log_date"`
	CreatedAt time.Time `json:"created_at"`
}

func (DailyLog) TableName() string {
	return "daily_logs"
}

func (l *DailyLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Snapshot is the nutrition of a logged item as it was when it was logged,
// already scaled by quantity. It is copied, never referenced, so edits to the
// food cache do not rewrite history.
type Snapshot struct {
	FoodName string  `gorm:"column:food_name_snapshot;size:120;not null" json:"food_name"`
	Brand    *string `gorm:"column:brand_snapshot;size:120" json:"brand"`
	Unit     string  `gorm:"column:unit;size:32;not null" json:"unit"`
	Calories float64 `gorm:"column:calories_snapshot;not null" json:"calories"`
	ProteinG float64 `gorm:"column:protein_g_snapshot;not null" json:"protein_g"`
	CarbsG   float64 `gorm:"column:carbs_g_snapshot;not null" json:"carbs_g"`
	FatG     float64 `gorm:"column:fat_g_snapshot;not null" json:"fat_g"`
}

// LogEntry is one consumed item inside a DailyLog.
type LogEntry struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:varchar(36);not null;index:idx_log_entries_user_log,priority:1" json:"user_id"`
	DailyLogID uuid.UUID `gorm:"type:varchar(36);not null;index:idx_log_entries_user_log,priority:2" json:"daily_log_id"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Snapshot   `gorm:"embedded"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}

func (e *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
