package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var ErrLearningPathNotFound = apperr.NotFound("learning path not found")

type LearningPathService struct {
	db     *gorm.DB
	squads *SquadService
}

func NewLearningPathService(db *gorm.DB, squads *SquadService) *LearningPathService {
	return &LearningPathService{db: db, squads: squads}
}

func (s *LearningPathService) List(squadID uuid.UUID, actor Actor) ([]models.LearningPath, error) {
	if _, err := s.squads.CanView(squadID, actor); err != nil {
		return nil, err
	}
	var paths []models.LearningPath
	if err := s.withItems(s.db).
		Where("squad_id = ?", squadID).
		Order("created_at ASC").
		Find(&paths).Error; err != nil {
		return nil, fmt.Errorf("failed to list learning paths: %w", err)
	}
	return paths, nil
}

func (s *LearningPathService) Get(squadID, pathID uuid.UUID, actor Actor) (*models.LearningPath, error) {
	if _, err := s.squads.CanView(squadID, actor); err != nil {
		return nil, err
	}
	return s.find(s.withItems(s.db), squadID, pathID)
}

// Create builds an ordered path. Every material must be a course or belong
// to the same squad.
func (s *LearningPathService) Create(squadID uuid.UUID, actor Actor, req *dto.LearningPathRequest) (*models.LearningPath, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.squads.Authorize(squadID, actor, models.SquadRoleAdmin, models.SquadRoleModerator); err != nil {
		return nil, err
	}

	var materials []models.Material
	if err := s.db.Select("id", "type", "squad_id").Where("id IN ?", req.MaterialIDs).Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	byID := make(map[uuid.UUID]models.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}
	fields := map[string]string{}
	for i, id := range req.MaterialIDs {
		m, ok := byID[id]
		switch {
		case !ok:
			fields[fmt.Sprintf("material_ids[%d]", i)] = "does not reference an existing material"
		case m.Type == models.MaterialTypeSquad && (m.SquadID == nil || *m.SquadID != squadID):
			fields[fmt.Sprintf("material_ids[%d]", i)] = "belongs to another squad"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidation(fields)
	}

	path := models.LearningPath{
		ID:          uuid.New(),
		SquadID:     squadID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedBy:   actor.UserID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(&path).Error; err != nil {
			return err
		}
		items := make([]models.LearningPathItem, len(req.MaterialIDs))
		for i, id := range req.MaterialIDs {
			items[i] = models.LearningPathItem{
				ID:             uuid.New(),
				LearningPathID: path.ID,
				MaterialID:     id,
				Position:       i,
			}
		}
		return tx.Omit("Material").Create(&items).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create learning path: %w", err)
	}
	return s.find(s.withItems(s.db), squadID, path.ID)
}

func (s *LearningPathService) Delete(squadID, pathID uuid.UUID, actor Actor) error {
	if _, err := s.squads.Authorize(squadID, actor, models.SquadRoleAdmin, models.SquadRoleModerator); err != nil {
		return err
	}
	if _, err := s.find(s.db, squadID, pathID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("learning_path_id = ?", pathID).Delete(&models.LearningPathItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", pathID).Delete(&models.LearningPath{}).Error
	})
}

func (s *LearningPathService) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Items.Material")
}

func (s *LearningPathService) find(db *gorm.DB, squadID, pathID uuid.UUID) (*models.LearningPath, error) {
	var path models.LearningPath
	if err := db.Where("id = ? AND squad_id = ?", pathID, squadID).First(&path).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLearningPathNotFound
		}
		return nil, fmt.Errorf("failed to load learning path: %w", err)
	}
	return &path, nil
}
