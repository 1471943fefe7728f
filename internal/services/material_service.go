package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var (
	ErrMaterialNotFound     = apperr.NotFound("material not found")
	ErrAdminRequired        = apperr.Forbidden("admin access required")
	ErrActiveStageRange     = apperr.Invalid("active_stage is out of range")
	ErrSubcategoryForCourse = apperr.Invalid("only course materials can be filed under a subcategory")
)

// MaterialService authors Material → Stage → Content trees and tracks
// per-user progress through them. A nil squadID addresses course materials.
type MaterialService struct {
	db      *gorm.DB
	squads  *SquadService
	catalog *CatalogService
	points  *PointsService
}

func NewMaterialService(db *gorm.DB, squads *SquadService, catalog *CatalogService, points *PointsService) *MaterialService {
	return &MaterialService{db: db, squads: squads, catalog: catalog, points: points}
}

func (s *MaterialService) List(actor Actor, squadID, subcategoryID *uuid.UUID, page, limit int) ([]models.Material, int64, error) {
	q := s.db.Model(&models.Material{})
	if squadID != nil {
		if _, err := s.squads.CanView(*squadID, actor); err != nil {
			return nil, 0, err
		}
		q = q.Where("type = ? AND squad_id = ?", models.MaterialTypeSquad, *squadID)
	} else {
		q = q.Where("type = ?", models.MaterialTypeCourse)
	}
	if subcategoryID != nil {
		q = q.Where("subcategory_id = ?", *subcategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count materials: %w", err)
	}
	var materials []models.Material
	if err := q.Order("created_at DESC").Scopes(database.Paginate(page, limit)).Find(&materials).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, total, nil
}

// Get returns the full tree with stages and contents in position order.
func (s *MaterialService) Get(actor Actor, squadID *uuid.UUID, id uuid.UUID) (*models.Material, error) {
	material, err := s.load(s.db, squadID, id, true)
	if err != nil {
		return nil, err
	}
	if material.SquadID != nil {
		if _, err := s.squads.CanView(*material.SquadID, actor); err != nil {
			return nil, err
		}
	}
	return material, nil
}

func (s *MaterialService) Create(actor Actor, squadID *uuid.UUID, req *dto.MaterialRequest) (*models.Material, error) {
	if err := s.validate(squadID, req); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(actor, squadID); err != nil {
		return nil, err
	}

	material := models.Material{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		XPReward:      req.XPReward,
		EstimatedTime: req.EstimatedTime,
		Type:          models.MaterialTypeCourse,
		SubcategoryID: req.SubcategoryID,
		CreatedBy:     actor.UserID,
	}
	if squadID != nil {
		material.Type = models.MaterialTypeSquad
		material.SquadID = squadID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Stages").Create(&material).Error; err != nil {
			return err
		}
		return createStages(tx, material.ID, req.Stages)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return s.load(s.db, squadID, material.ID, true)
}

// Update replaces the material's fields and its whole stage tree.
func (s *MaterialService) Update(actor Actor, squadID *uuid.UUID, id uuid.UUID, req *dto.MaterialRequest) (*models.Material, error) {
	material, err := s.load(s.db, squadID, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.validate(material.SquadID, req); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(actor, material.SquadID); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Material{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":          strings.TrimSpace(req.Title),
			"description":    req.Description,
			"xp_reward":      req.XPReward,
			"estimated_time": req.EstimatedTime,
			"subcategory_id": req.SubcategoryID,
		}).Error; err != nil {
			return err
		}
		if err := deleteStages(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		return createStages(tx, id, req.Stages)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	return s.load(s.db, squadID, id, true)
}

func (s *MaterialService) Delete(actor Actor, squadID *uuid.UUID, id uuid.UUID) error {
	material, err := s.load(s.db, squadID, id, false)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(actor, material.SquadID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteMaterialTrees(tx, []uuid.UUID{id})
	})
}

func (s *MaterialService) GetProgress(actor Actor, materialID uuid.UUID) (*models.MaterialProgress, error) {
	if _, err := s.Get(actor, nil, materialID); err != nil {
		return nil, err
	}
	var progress models.MaterialProgress
	err := s.db.Where("user_id = ? AND material_id = ?", actor.UserID, materialID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.MaterialProgress{UserID: actor.UserID, MaterialID: materialID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return &progress, nil
}

// UpdateProgress upserts the caller's progress. Progress is clamped to [0,1]
// and never decreases; the first time it reaches 1 the material's XP reward
// is awarded in the same transaction.
func (s *MaterialService) UpdateProgress(ctx context.Context, actor Actor, materialID uuid.UUID, req *dto.ProgressRequest) (*dto.ProgressResponse, error) {
	material, err := s.Get(actor, nil, materialID)
	if err != nil {
		return nil, err
	}
	if req.ActiveStage < 0 || req.ActiveStage >= len(material.Stages) {
		return nil, ErrActiveStageRange
	}
	reported := ClampProgress(req.Progress)
	now := time.Now().UTC()

	resp := &dto.ProgressResponse{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		row := models.MaterialProgress{
			ID:         uuid.New(),
			UserID:     actor.UserID,
			MaterialID: materialID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND material_id = ?", actor.UserID, materialID).First(&row).Error; err != nil {
			return err
		}

		progress := math.Max(row.Progress, reported)
		if err := tx.Model(&row).Updates(map[string]interface{}{
			"progress":     progress,
			"active_stage": req.ActiveStage,
		}).Error; err != nil {
			return err
		}

		if progress >= 1 {
			res := tx.Model(&models.MaterialProgress{}).
				Where("id = ? AND completed_at IS NULL", row.ID).
				Update("completed_at", now)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 && material.XPReward > 0 {
				if _, err := s.points.Award(tx, actor.UserID, material.XPReward, models.PointSourceMaterial, &materialID); err != nil {
					return err
				}
				resp.AwardedXP = material.XPReward
			}
		}
		return tx.First(&resp.MaterialProgress, "id = ?", row.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	if resp.AwardedXP > 0 {
		s.points.Invalidate(ctx)
	}
	return resp, nil
}

// ClampProgress bounds a client-reported fraction to [0,1].
func ClampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (s *MaterialService) validate(squadID *uuid.UUID, req *dto.MaterialRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.SubcategoryID == nil {
		return nil
	}
	if squadID != nil {
		return ErrSubcategoryForCourse
	}
	ok, err := s.catalog.SubcategoryExists(*req.SubcategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NewValidation(map[string]string{"subcategory_id": "does not reference an existing subcategory"})
	}
	return nil
}

// authorizeWrite: course materials are admin-only, squad materials need a
// squad admin or moderator.
func (s *MaterialService) authorizeWrite(actor Actor, squadID *uuid.UUID) error {
	if squadID == nil {
		if !actor.Admin {
			return ErrAdminRequired
		}
		return nil
	}
	_, err := s.squads.Authorize(*squadID, actor, models.SquadRoleAdmin, models.SquadRoleModerator)
	return err
}

// load fetches a material; with a squadID it must belong to that squad.
func (s *MaterialService) load(db *gorm.DB, squadID *uuid.UUID, id uuid.UUID, tree bool) (*models.Material, error) {
	q := db
	if tree {
		q = q.Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).Preload("Stages.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	}
	var material models.Material
	if err := q.First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to load material: %w", err)
	}
	if squadID != nil && (material.SquadID == nil || *material.SquadID != *squadID) {
		return nil, ErrMaterialNotFound
	}
	return &material, nil
}

func createStages(tx *gorm.DB, materialID uuid.UUID, inputs []dto.StageInput) error {
	stages := make([]models.Stage, len(inputs))
	for i, in := range inputs {
		stage := models.Stage{
			ID:         uuid.New(),
			MaterialID: materialID,
			Title:      strings.TrimSpace(in.Title),
			Position:   i,
			Contents:   make([]models.Content, len(in.Contents)),
		}
		for j, c := range in.Contents {
			stage.Contents[j] = models.Content{
				ID:       uuid.New(),
				StageID:  stage.ID,
				Type:     c.Type,
				Content:  c.Content,
				Position: j,
			}
		}
		stages[i] = stage
	}
	return tx.Create(&stages).Error
}

func deleteStages(tx *gorm.DB, materialIDs []uuid.UUID) error {
	var stageIDs []uuid.UUID
	if err := tx.Model(&models.Stage{}).Where("material_id IN ?", materialIDs).Pluck("id", &stageIDs).Error; err != nil {
		return err
	}
	if len(stageIDs) == 0 {
		return nil
	}
	if err := tx.Where("stage_id IN ?", stageIDs).Delete(&models.Content{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", stageIDs).Delete(&models.Stage{}).Error
}

// deleteMaterialTrees removes materials with everything that hangs off
// them. Earned points are kept.
func deleteMaterialTrees(tx *gorm.DB, materialIDs []uuid.UUID) error {
	if len(materialIDs) == 0 {
		return nil
	}
	if err := deleteStages(tx, materialIDs); err != nil {
		return err
	}
	if err := tx.Where("material_id IN ?", materialIDs).Delete(&models.MaterialProgress{}).Error; err != nil {
		return err
	}

	var discussionIDs []uuid.UUID
	if err := tx.Model(&models.Discussion{}).Where("material_id IN ?", materialIDs).Pluck("id", &discussionIDs).Error; err != nil {
		return err
	}
	if len(discussionIDs) > 0 {
		if err := tx.Where("discussion_id IN ?", discussionIDs).Delete(&models.DiscussionLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", discussionIDs).Delete(&models.Discussion{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("material_id IN ?", materialIDs).Delete(&models.LearningPathItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", materialIDs).Delete(&models.Material{}).Error
}
