package types

import "github.com/google/uuid"

// AddEntryRequest is a food item to log for today. Nutrient values are per
// serving; the stored snapshot is scaled by Quantity.
type AddEntryRequest struct {
	FoodName string  `json:"food_name" validate:"required,max=120"`
	Brand    *string `json:"brand" validate:"omitempty,max=120"`
	Quantity float64 `json:"quantity" validate:"gte=0.1,lte=20"`
	Unit     string  `json:"unit" validate:"required,max=32"`
	Calories float64 `json:"calories" validate:"gte=0,lte=5000"`
	ProteinG float64 `json:"protein_g" validate:"gte=0,lte=500"`
	CarbsG   float64 `json:"carbs_g" validate:"gte=0,lte=500"`
	FatG     float64 `json:"fat_g" validate:"gte=0,lte=500"`
}

// AddFromFoodRequest logs a cached food record.
type AddFromFoodRequest struct {
	FoodID   uuid.UUID `json:"food_id"`
	Quantity float64   `json:"quantity"`
}

// UpdateGoalsRequest replaces a user's daily targets.
type UpdateGoalsRequest struct {
	CaloriesTarget int `json:"calories_target" validate:"gte=1000,lte=10000"`
	ProteinTargetG int `json:"protein_target_g" validate:"gte=50,lte=500"`
	CarbsTargetG   int `json:"carbs_target_g" validate:"gte=30,lte=1000"`
	FatTargetG     int `json:"fat_target_g" validate:"gte=20,lte=300"`
}

// ExportHistoryRequest selects the window to export.
type ExportHistoryRequest struct {
	Days int `json:"days"`
}
