package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalService reads and updates a user's daily targets.
type GoalService struct {
	db    *gorm.DB
	views ViewInvalidator
	log   *logger.Logger
}

func NewGoalService(db *gorm.DB, views ViewInvalidator, log *logger.Logger) *GoalService {
	if views == nil {
		views = NoopInvalidator{}
	}
	return &GoalService{
		db:    db,
		views: views,
		log:   log.With("service", "goals"),
	}
}

// GetOrCreateGoals returns the stored goals, inserting the defaults on first
// access.
func (s *GoalService) GetOrCreateGoals(ctx context.Context, userID uuid.UUID) (*model.Goals, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}

	existing, err := s.find(ctx, userID)
	if err != nil {
		return nil, persistenceErr("find goals", err)
	}
	if existing != nil {
		return existing, nil
	}

	defaults := model.DefaultGoals(userID)
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&defaults).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, persistenceErr("create goals", err)
	}

	stored, err := s.find(ctx, userID)
	if err != nil {
		return nil, persistenceErr("reload goals", err)
	}
	if stored == nil {
		return nil, persistenceErr("reload goals", gorm.ErrRecordNotFound)
	}
	return stored, nil
}

// UpdateGoals overwrites the user's targets. The row must already exist.
func (s *GoalService) UpdateGoals(ctx context.Context, userID uuid.UUID, req types.UpdateGoalsRequest) (*model.Goals, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthorized
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).
		Model(&model.Goals{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"calories_target":  req.CaloriesTarget,
			"protein_target_g": req.ProteinTargetG,
			"carbs_target_g":   req.CarbsTargetG,
			"fat_target_g":     req.FatTargetG,
		})
	if res.Error != nil {
		return nil, persistenceErr("update goals", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, persistenceErr("update goals", ErrGoalsMissing)
	}

	s.invalidate(ctx, userID, ViewDashboard, ViewSettings)

	updated, err := s.find(ctx, userID)
	if err != nil || updated == nil {
		s.log.Warn("reloading updated goals failed", "user_id", userID, "error", err)
		return &model.Goals{
			UserID:         userID,
			CaloriesTarget: req.CaloriesTarget,
			ProteinTargetG: req.ProteinTargetG,
			CarbsTargetG:   req.CarbsTargetG,
			FatTargetG:     req.FatTargetG,
		}, nil
	}
	return updated, nil
}

func (s *GoalService) find(ctx context.Context, userID uuid.UUID) (*model.Goals, error) {
	var g model.Goals
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&g).Error
	if err != nil {
		return nil, err
	}
	if g.UserID == uuid.Nil {
		return nil, nil
	}
	return &g, nil
}

func (s *GoalService) invalidate(ctx context.Context, userID uuid.UUID, views ...View) {
	if err := s.views.Invalidate(ctx, userID, views...); err != nil {
		s.log.Warn("view invalidation failed", "user_id", userID, "views", views, "error", err)
	}
}
