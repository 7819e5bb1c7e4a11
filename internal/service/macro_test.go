package service_test

import (
	"math/rand"
	"testing"

	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/stretchr/testify/assert"
)

func entry(cal, protein, carbs, fat float64) model.LogEntry {
	return model.LogEntry{Snapshot: model.Snapshot{Calories: cal, ProteinG: protein, CarbsG: carbs, FatG: fat}}
}

func TestTotalsEmpty(t *testing.T) {
	assert.Equal(t, model.MacroTotals{}, service.Totals(nil))
	assert.Equal(t, model.MacroTotals{}, service.Totals([]model.LogEntry{}))
}

func TestTotalsSumsEachMacro(t *testing.T) {
	totals := service.Totals([]model.LogEntry{
		entry(330, 62, 0, 7.2),
		entry(72, 6.3, 0.4, 4.8),
		entry(0.1, 0.2, 0.3, 0.4),
	})

	assert.Equal(t, 402.1, totals.Calories)
	assert.Equal(t, 68.5, totals.ProteinG)
	assert.Equal(t, 0.7, totals.CarbsG)
	assert.Equal(t, 12.4, totals.FatG)
}

func TestTotalsAreExactSums(t *testing.T) {
	totals := service.Totals([]model.LogEntry{
		entry(0.04, 10.25, 0.333, 1.005),
		entry(0.04, 10.25, 0.333, 1.005),
		entry(0.04, 0, 0.334, 0),
	})

	assert.Equal(t, 0.12, totals.Calories)
	assert.Equal(t, 20.5, totals.ProteinG)
	assert.Equal(t, 1.0, totals.CarbsG)
	assert.Equal(t, 2.01, totals.FatG)
}

func TestTotalsIndependentOfOrder(t *testing.T) {
	entries := []model.LogEntry{
		entry(0.1, 0.1, 0.1, 0.1),
		entry(0.2, 0.2, 0.2, 0.2),
		entry(0.3, 0.3, 0.3, 0.3),
		entry(165, 31, 0, 3.6),
		entry(130, 2.7, 28.2, 0.3),
		entry(98, 3.4, 3.4, 9),
		entry(0.04, 10.25, 0.333, 1.005),
		entry(0.07, 0.015, 0.2, 0.01),
	}
	want := service.Totals(entries)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]model.LogEntry(nil), entries...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, service.Totals(shuffled))
	}
}

func TestTotalsIsAdditive(t *testing.T) {
	a := []model.LogEntry{entry(10.1, 1, 2, 3), entry(20.2, 4, 5, 6)}
	b := []model.LogEntry{entry(30.3, 7, 8, 9)}

	ta, tb := service.Totals(a), service.Totals(b)
	all := service.Totals(append(append([]model.LogEntry(nil), a...), b...))

	assert.InDelta(t, ta.Calories+tb.Calories, all.Calories, 1e-9)
	assert.InDelta(t, ta.ProteinG+tb.ProteinG, all.ProteinG, 1e-9)
	assert.InDelta(t, ta.CarbsG+tb.CarbsG, all.CarbsG, 1e-9)
	assert.InDelta(t, ta.FatG+tb.FatG, all.FatG, 1e-9)
	assert.Equal(t, 60.6, all.Calories)
}

func TestComputeProgress(t *testing.T) {
	goals := model.Goals{CaloriesTarget: 2000, ProteinTargetG: 100, CarbsTargetG: 0, FatTargetG: 50}
	totals := model.MacroTotals{Calories: 500, ProteinG: 150, CarbsG: 40, FatG: 0}

	p := service.ComputeProgress(totals, goals)

	assert.Equal(t, 0.25, p.Calories.Percent)
	assert.Equal(t, 2000.0, p.Calories.Target)
	assert.Equal(t, 500.0, p.Calories.Consumed)
	assert.Equal(t, 1.0, p.Protein.Percent, "over target is clamped")
	assert.Equal(t, 0.0, p.Carbs.Percent, "zero target yields zero")
	assert.Equal(t, 40.0, p.Carbs.Consumed)
	assert.Equal(t, 0.0, p.Fat.Percent)
}
