package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MinQueryLength is the shortest trimmed query that reaches the cache.
const MinQueryLength = 2

var foodRefConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "source"}, {Name: "source_food_id"}},
	DoNothing: true,
}

// FoodService resolves free-text queries to cached nutrition records.
type FoodService struct {
	db       *gorm.DB
	provider NutritionProvider
	log      *logger.Logger
}

// NewFoodService creates a resolver. provider may be nil, in which case
// cache misses return no results.
func NewFoodService(db *gorm.DB, provider NutritionProvider, log *logger.Logger) *FoodService {
	return &FoodService{
		db:       db,
		provider: provider,
		log:      log.With("service", "food"),
	}
}

// Search returns up to MaxSearchResults foods matching query. It seeds an
// empty cache, falls back to the external provider when nothing matches and
// caches what the provider returns. Failures are logged and yield an empty
// list.
func (s *FoodService) Search(ctx context.Context, query string) []model.Food {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []model.Food{}
	}

	if err := s.seedIfEmpty(ctx); err != nil {
		s.log.Warn("seeding food cache failed", "error", err)
	}

	cached, err := s.searchCache(ctx, q)
	if err != nil {
		s.log.Warn("food cache lookup failed", "query", q, "error", err)
		return []model.Food{}
	}
	if len(cached) > 0 {
		return cached
	}

	if s.provider == nil {
		return []model.Food{}
	}

	found, err := s.fetchExternal(ctx, q)
	if err != nil {
		s.log.Warn("external food lookup failed", "query", q, "error", err)
		return []model.Food{}
	}
	return found
}

// Get returns one cached food.
func (s *FoodService) Get(ctx context.Context, id uuid.UUID) (*model.Food, error) {
	var food model.Food
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFoodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food %s: %w", id, err)
	}
	return &food, nil
}

// SeedBuiltins upserts the built-in foods and reports how many were new.
func (s *FoodService) SeedBuiltins(ctx context.Context) (int64, error) {
	foods := builtinFoods()
	res := s.db.WithContext(ctx).Clauses(foodRefConflict).Create(&foods)
	if res.Error != nil {
		return 0, persistenceErr("seed foods", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *FoodService) seedIfEmpty(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Food{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	n, err := s.SeedBuiltins(ctx)
	if err != nil {
		return err
	}
	s.log.Info("seeded food cache", "inserted", n)
	return nil
}

func (s *FoodService) searchCache(ctx context.Context, q string) ([]model.Food, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	var foods []model.Food
	err := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("name ASC").
		Limit(MaxSearchResults).
		Find(&foods).Error
	return foods, err
}

func (s *FoodService) fetchExternal(ctx context.Context, q string) ([]model.Food, error) {
	fetched, err := s.provider.Search(ctx, q, MaxSearchResults)
	if err != nil {
		return nil, err
	}
	if len(fetched) == 0 {
		return []model.Food{}, nil
	}

	ids := make([]string, len(fetched))
	for i := range fetched {
		fetched[i].Source = model.SourceExternal
		ids[i] = fetched[i].SourceFoodID
	}

	db := s.db.WithContext(ctx)
	if err := db.Clauses(foodRefConflict).Create(&fetched).Error; err != nil {
		return nil, fmt.Errorf("cache external foods: %w", err)
	}

	cached := []model.Food{}
	err = db.Where("source = ? AND source_food_id IN ?", model.SourceExternal, ids).
		Order("name ASC").
		Limit(MaxSearchResults).
		Find(&cached).Error
	if err != nil {
		return nil, fmt.Errorf("reload external foods: %w", err)
	}
	return cached, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
