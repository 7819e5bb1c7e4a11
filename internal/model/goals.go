package model

import (
	"time"

	"github.com/google/uuid"
)

// Default targets for a user who has never saved goals.
const (
	DefaultCaloriesTarget = 2600
	DefaultProteinTargetG = 200
	DefaultCarbsTargetG   = 250
	DefaultFatTargetG     = 70
)

// Goals holds a user's daily targets. One row per user.
type Goals struct {
	UserID         uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	CaloriesTarget int       `gorm:"not null" json:"calories_target"`
	ProteinTargetG int       `gorm:"not null" json:"protein_target_g"`
	CarbsTargetG   int       `gorm:"not null" json:"carbs_target_g"`
	FatTargetG     int       `gorm:"not null" json:"fat_target_g"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Goals) TableName() string {
	return "goals"
}

// DefaultGoals returns the default targets for userID.
func DefaultGoals(userID uuid.UUID) Goals {
	return Goals{
		UserID:         userID,
		CaloriesTarget: DefaultCaloriesTarget,
		ProteinTargetG: DefaultProteinTargetG,
		CarbsTargetG:   DefaultCarbsTargetG,
		FatTargetG:     DefaultFatTargetG,
	}
}
