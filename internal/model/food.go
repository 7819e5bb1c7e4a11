package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cache sources for foods_cached rows.
const (
	SourceSeed     = "seed"
	SourceExternal = "external"
)

// Column limits of foods_cached.
const (
	MaxFoodTextLength     = 255
	MaxSourceFoodIDLength = 128
)

// Food is a cached nutrition record. Nutrient values describe one serving of
// ServingSize x ServingUnit. Rows are only ever inserted; (Source,
// SourceFoodID) identifies a record across re-fetches.
type Food struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Source       string    `gorm:"size:32;not null;uniqueIndex:idx_foods_source_ref,priority:1" json:"source"`
	SourceFoodID string    `gorm:"size:128;not null;uniqueIndex:idx_foods_source_ref,priority:2" json:"source_food_id"`
	Name         string    `gorm:"size:255;not null;index" json:"name"`
	Brand        *string   `gorm:"size:255" json:"brand"`
	ServingUnit  string    `gorm:"size:32;not null" json:"serving_unit"`
	ServingSize  float64   `gorm:"not null" json:"serving_size"`
	Calories     float64   `gorm:"not null" json:"calories"`
	ProteinG     float64   `gorm:"not null" json:"protein_g"`
	CarbsG       float64   `gorm:"not null" json:"carbs_g"`
	FatG         float64   `gorm:"not null" json:"fat_g"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Food) TableName() string {
	return "foods_cached"
}

func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
