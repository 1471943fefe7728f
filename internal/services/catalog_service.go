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

var (
	ErrCategoryNotFound    = apperr.NotFound("category not found")
	ErrSubcategoryNotFound = apperr.NotFound("subcategory not found")
	ErrCategoryExists      = apperr.Conflict("a category with this name already exists")
	ErrUnknownCategory     = apperr.Invalid("category_id does not reference an existing category")
)

// CatalogService manages the category → subcategory tree course materials
// are filed under.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.db.Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(req *dto.CategoryRequest) (*models.Category, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(name, uuid.Nil); err != nil {
		return nil, err
	}

	category := models.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.db.Omit("Subcategories").Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(id uuid.UUID, req *dto.CategoryRequest) (*models.Category, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.GetCategory(id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(name, id); err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        name,
		"description": strings.TrimSpace(req.Description),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return s.GetCategory(id)
}

// DeleteCategory removes the category and its subcategories. Materials filed
// under them are kept and detached.
func (s *CatalogService) DeleteCategory(id uuid.UUID) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var subIDs []uuid.UUID
		if err := tx.Model(&models.Subcategory{}).Where("category_id = ?", id).Pluck("id", &subIDs).Error; err != nil {
			return err
		}
		if len(subIDs) > 0 {
			if err := tx.Model(&models.Material{}).Where("subcategory_id IN ?", subIDs).
				Update("subcategory_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", subIDs).Delete(&models.Subcategory{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Category{}).Error
	})
}

func (s *CatalogService) ensureUniqueName(name string, except uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), except).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if count > 0 {
		return ErrCategoryExists
	}
	return nil
}

// ListSubcategories returns subcategories, optionally of one category.
func (s *CatalogService) ListSubcategories(categoryID *uuid.UUID) ([]models.Subcategory, error) {
	q := s.db.Model(&models.Subcategory{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var subs []models.Subcategory
	if err := q.Order("name ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	return subs, nil
}

func (s *CatalogService) GetSubcategory(id uuid.UUID) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := s.db.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("failed to load subcategory: %w", err)
	}
	return &sub, nil
}

func (s *CatalogService) CreateSubcategory(req *dto.SubcategoryRequest) (*models.Subcategory, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.categoryExists(req.CategoryID); err != nil {
		return nil, err
	}

	sub := models.Subcategory{
		ID:         uuid.New(),
		CategoryID: req.CategoryID,
		Name:       strings.TrimSpace(req.Name),
	}
	if err := s.db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}
	return &sub, nil
}

func (s *CatalogService) UpdateSubcategory(id uuid.UUID, req *dto.SubcategoryRequest) (*models.Subcategory, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.GetSubcategory(id); err != nil {
		return nil, err
	}
	if err := s.categoryExists(req.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Subcategory{}).Where("id = ?", id).Updates(map[string]interface{}{
		"category_id": req.CategoryID,
		"name":        strings.TrimSpace(req.Name),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update subcategory: %w", err)
	}
	return s.GetSubcategory(id)
}

func (s *CatalogService) DeleteSubcategory(id uuid.UUID) error {
	if _, err := s.GetSubcategory(id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Material{}).Where("subcategory_id = ?", id).
			Update("subcategory_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Subcategory{}).Error
	})
}

// SubcategoryExists is used by material authoring to validate filing.
func (s *CatalogService) SubcategoryExists(id uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Subcategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subcategory: %w", err)
	}
	return count > 0, nil
}

func (s *CatalogService) categoryExists(id uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return ErrUnknownCategory
	}
	return nil
}
