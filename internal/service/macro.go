package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/pageza/macrolog/backend/internal/model"
)

// Totals sums the snapshot values of entries. The sum is exact in decimal,
// so the result does not depend on entry order.
func Totals(entries []model.LogEntry) model.MacroTotals {
	cal, protein, carbs, fat := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range entries {
		cal = cal.Add(decimal.NewFromFloat(e.Calories))
		protein = protein.Add(decimal.NewFromFloat(e.ProteinG))
		carbs = carbs.Add(decimal.NewFromFloat(e.CarbsG))
		fat = fat.Add(decimal.NewFromFloat(e.FatG))
	}
	return model.MacroTotals{
		Calories: cal.InexactFloat64(),
		ProteinG: protein.InexactFloat64(),
		CarbsG:   carbs.InexactFloat64(),
		FatG:     fat.InexactFloat64(),
	}
}

// ComputeProgress compares totals against the user's targets.
func ComputeProgress(totals model.MacroTotals, goals model.Goals) model.Progress {
	return model.Progress{
		Calories: progress(totals.Calories, goals.CaloriesTarget),
		Protein:  progress(totals.ProteinG, goals.ProteinTargetG),
		Carbs:    progress(totals.CarbsG, goals.CarbsTargetG),
		Fat:      progress(totals.FatG, goals.FatTargetG),
	}
}

func progress(consumed float64, target int) model.MacroProgress {
	p := model.MacroProgress{Consumed: consumed, Target: float64(target)}
	if target <= 0 {
		return p
	}
	p.Percent = math.Max(0, math.Min(1, consumed/float64(target)))
	return p
}

// scaleSnapshot multiplies per-serving nutrition by quantity, one decimal.
func scaleSnapshot(perServing model.Snapshot, quantity float64) model.Snapshot {
	s := perServing
	s.Calories = round1(perServing.Calories * quantity)
	s.ProteinG = round1(perServing.ProteinG * quantity)
	s.CarbsG = round1(perServing.CarbsG * quantity)
	s.FatG = round1(perServing.FatG * quantity)
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
