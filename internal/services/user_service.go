package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

type UserService struct {
	db     *gorm.DB
	points *PointsService
}

func NewUserService(db *gorm.DB, points *PointsService) *UserService {
	return &UserService{db: db, points: points}
}

func (s *UserService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("School").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of req. A nil-UUID school_id
// detaches the user from their school.
func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if req.SchoolID != nil {
		if *req.SchoolID == uuid.Nil {
			updates["school_id"] = nil
		} else {
			if err := s.db.Select("id").First(&models.School{}, "id = ?", *req.SchoolID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrSchoolNotFound
				}
				return nil, fmt.Errorf("failed to load school: %w", err)
			}
			updates["school_id"] = *req.SchoolID
		}
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	// names and schools are part of every leaderboard row
	s.points.Invalidate(context.Background())
	return s.Get(userID)
}

// ListSchools returns schools ordered by name, optionally restricted to a
// province or city.
func (s *UserService) ListSchools(region string) ([]models.School, error) {
	q := s.db.Model(&models.School{})
	if strings.TrimSpace(region) != "" {
		q = q.Scopes(database.InRegion(region))
	}
	var schools []models.School
	if err := q.Order("name ASC").Find(&schools).Error; err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	return schools, nil
}
