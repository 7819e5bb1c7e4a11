package service

import "github.com/pageza/macrolog/backend/internal/model"

// builtinFoods are inserted into an empty cache so first searches return
// something without a network round-trip.
func builtinFoods() []model.Food {
	return []model.Food{
		seedFood("seed-chicken-breast", "Chicken Breast", "g", 100, 165, 31, 0, 3.6),
		seedFood("seed-jasmine-rice", "Jasmine Rice (Cooked)", "g", 100, 130, 2.7, 28.2, 0.3),
		seedFood("seed-whole-egg", "Whole Egg", "egg", 1, 72, 6.3, 0.4, 4.8),
		seedFood("seed-oats", "Rolled Oats", "g", 40, 150, 5, 27, 3),
		seedFood("seed-greek-yogurt", "Greek Yogurt (Nonfat)", "g", 170, 100, 17, 6, 0),
		seedFood("seed-almond-butter", "Almond Butter", "tbsp", 1, 98, 3.4, 3.4, 9),
	}
}

func seedFood(id, name, unit string, size, cal, protein, carbs, fat float64) model.Food {
	return model.Food{
		Source:       model.SourceSeed,
		SourceFoodID: id,
		Name:         name,
		ServingUnit:  unit,
		ServingSize:  size,
		Calories:     cal,
		ProteinG:     protein,
		CarbsG:       carbs,
		FatG:         fat,
	}
}
