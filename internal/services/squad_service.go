package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var (
	ErrSquadNotFound     = apperr.NotFound("squad not found")
	ErrMemberNotFound    = apperr.NotFound("member not found")
	ErrNotSquadMember    = apperr.Forbidden("you are not a member of this squad")
	ErrSquadRoleRequired = apperr.Forbidden("insufficient squad role")
	ErrSquadPrivate      = apperr.Forbidden("this squad is private")
	ErrAlreadyMember     = apperr.Conflict("already a member of this squad")
	ErrLastAdmin         = apperr.Conflict("a squad must keep at least one admin")
	ErrInvalidSettings   = apperr.Invalid("settings must be a JSON object")
)

// Actor is the caller of a service operation. Admin is the site-wide admin
// flag, not a squad role.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

type SquadService struct {
	db *gorm.DB
}

func NewSquadService(db *gorm.DB) *SquadService {
	return &SquadService{db: db}
}

// Create stores the squad and its creator as the sole admin atomically.
func (s *SquadService) Create(userID uuid.UUID, req *dto.CreateSquadRequest) (*models.Squad, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	squad := models.Squad{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		About:       req.About,
		Rules:       req.Rules,
		Settings:    datatypes.JSON("{}"),
		IsPublic:    true,
		CreatedBy:   userID,
	}
	if req.IsPublic != nil {
		squad.IsPublic = *req.IsPublic
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(&squad).Error; err != nil {
			return err
		}
		member := models.SquadMember{
			ID:       uuid.New(),
			SquadID:  squad.ID,
			UserID:   userID,
			Role:     models.SquadRoleAdmin,
			JoinedAt: time.Now().UTC(),
		}
		return tx.Omit("User").Create(&member).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create squad: %w", err)
	}

	squad.MemberCount = 1
	squad.MyRole = models.SquadRoleAdmin
	return &squad, nil
}

// List returns public squads plus private squads the caller belongs to.
func (s *SquadService) List(userID uuid.UUID, page, limit int) ([]models.Squad, int64, error) {
	memberOf := s.db.Model(&models.SquadMember{}).Select("squad_id").Where("user_id = ?", userID)
	q := s.db.Model(&models.Squad{}).Where("is_public = ? OR id IN (?)", true, memberOf)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count squads: %w", err)
	}

	var squads []models.Squad
	if err := q.Order("created_at DESC").Scopes(database.Paginate(page, limit)).Find(&squads).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list squads: %w", err)
	}
	if err := s.decorate(squads, userID); err != nil {
		return nil, 0, err
	}
	return squads, total, nil
}

// Mine returns the squads the caller is a member of.
func (s *SquadService) Mine(userID uuid.UUID) ([]models.Squad, error) {
	var squads []models.Squad
	err := s.db.Model(&models.Squad{}).
		Joins("JOIN squad_members ON squad_members.squad_id = squads.id").
		Where("squad_members.user_id = ?", userID).
		Order("squad_members.joined_at DESC").
		Find(&squads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list squads: %w", err)
	}
	if err := s.decorate(squads, userID); err != nil {
		return nil, err
	}
	return squads, nil
}

func (s *SquadService) decorate(squads []models.Squad, userID uuid.UUID) error {
	if len(squads) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(squads))
	for i, sq := range squads {
		ids[i] = sq.ID
	}

	var counts []struct {
		SquadID uuid.UUID
		Total   int64
	}
	if err := s.db.Model(&models.SquadMember{}).
		Select("squad_id, COUNT(*) AS total").
		Where("squad_id IN ?", ids).
		Group("squad_id").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	var mine []models.SquadMember
	if err := s.db.Where("squad_id IN ? AND user_id = ?", ids, userID).Find(&mine).Error; err != nil {
		return fmt.Errorf("failed to load memberships: %w", err)
	}

	countBy := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countBy[c.SquadID] = c.Total
	}
	roleBy := make(map[uuid.UUID]string, len(mine))
	for _, m := range mine {
		roleBy[m.SquadID] = m.Role
	}
	for i := range squads {
		squads[i].MemberCount = countBy[squads[i].ID]
		squads[i].MyRole = roleBy[squads[i].ID]
	}
	return nil
}

// Get returns a squad with its members. Private squads are visible to
// members and site admins only.
func (s *SquadService) Get(squadID uuid.UUID, actor Actor) (*models.Squad, error) {
	var squad models.Squad
	err := s.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC")
	}).Preload("Members.User").First(&squad, "id = ?", squadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSquadNotFound
		}
		return nil, fmt.Errorf("failed to load squad: %w", err)
	}

	for _, m := range squad.Members {
		if m.UserID == actor.UserID {
			squad.MyRole = m.Role
		}
	}
	if !squad.IsPublic && squad.MyRole == "" && !actor.Admin {
		return nil, ErrSquadPrivate
	}
	squad.MemberCount = int64(len(squad.Members))
	return &squad, nil
}

func (s *SquadService) Update(squadID uuid.UUID, actor Actor, req *dto.UpdateSquadRequest) (*models.Squad, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Authorize(squadID, actor, models.SquadRoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.About != nil {
		updates["about"] = *req.About
	}
	if req.Rules != nil {
		updates["rules"] = *req.Rules
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(req.Settings) > 0 {
		var settings map[string]interface{}
		if err := json.Unmarshal(req.Settings, &settings); err != nil || settings == nil {
			return nil, ErrInvalidSettings
		}
		updates["settings"] = datatypes.JSON(bytes.TrimSpace(req.Settings))
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Squad{}).Where("id = ?", squadID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update squad: %w", err)
		}
	}
	return s.Get(squadID, actor)
}

// Join adds the caller to a public squad as a member.
func (s *SquadService) Join(squadID, userID uuid.UUID) (*models.SquadMember, error) {
	squad, err := s.find(s.db, squadID)
	if err != nil {
		return nil, err
	}
	if !squad.IsPublic {
		return nil, ErrSquadPrivate
	}

	var existing int64
	if err := s.db.Model(&models.SquadMember{}).
		Where("squad_id = ? AND user_id = ?", squadID, userID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyMember
	}

	member := models.SquadMember{
		ID:       uuid.New(),
		SquadID:  squadID,
		UserID:   userID,
		Role:     models.SquadRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.db.Omit("User").Create(&member).Error; err != nil {
		return nil, fmt.Errorf("failed to join squad: %w", err)
	}
	return &member, nil
}

func (s *SquadService) Leave(squadID, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSquad(tx, squadID); err != nil {
			return err
		}
		member, err := s.membership(tx, squadID, userID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrNotSquadMember
		}
		if err := guardLastAdmin(tx, member, ""); err != nil {
			return err
		}
		return tx.Delete(member).Error
	})
}

// ManageMember changes a member's role or removes them. Only squad admins
// (or site admins) may call it.
func (s *SquadService) ManageMember(squadID, targetID uuid.UUID, actor Actor, req *dto.ManageMemberRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.Authorize(squadID, actor, models.SquadRoleAdmin); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSquad(tx, squadID); err != nil {
			return err
		}
		member, err := s.membership(tx, squadID, targetID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrMemberNotFound
		}

		switch req.Action {
		case "remove":
			if err := guardLastAdmin(tx, member, ""); err != nil {
				return err
			}
			return tx.Delete(member).Error
		default:
			if member.Role == req.Role {
				return nil
			}
			if err := guardLastAdmin(tx, member, req.Role); err != nil {
				return err
			}
			return tx.Model(member).Update("role", req.Role).Error
		}
	})
}

// lockedSquad selects the squad row FOR UPDATE. Role changes and departures
// take this lock first so the admin count read by guardLastAdmin cannot go
// stale before the write commits.
func lockedSquad(tx *gorm.DB, squadID uuid.UUID) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", squadID)
}

func lockSquad(tx *gorm.DB, squadID uuid.UUID) error {
	var squad models.Squad
	if err := lockedSquad(tx, squadID).First(&squad).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSquadNotFound
		}
		return fmt.Errorf("failed to lock squad: %w", err)
	}
	return nil
}

// guardLastAdmin rejects changes that would leave the squad without an admin.
// newRole is "" when the member is leaving. Callers hold lockSquad.
func guardLastAdmin(tx *gorm.DB, member *models.SquadMember, newRole string) error {
	if member.Role != models.SquadRoleAdmin || newRole == models.SquadRoleAdmin {
		return nil
	}
	var admins int64
	if err := tx.Model(&models.SquadMember{}).
		Where("squad_id = ? AND role = ?", member.SquadID, models.SquadRoleAdmin).
		Count(&admins).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// Delete removes the squad with its members, learning paths and squad
// materials in a single transaction.
func (s *SquadService) Delete(squadID uuid.UUID, actor Actor) error {
	if _, err := s.Authorize(squadID, actor, models.SquadRoleAdmin); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var materialIDs []uuid.UUID
		if err := tx.Model(&models.Material{}).Where("squad_id = ?", squadID).Pluck("id", &materialIDs).Error; err != nil {
			return err
		}
		if err := deleteMaterialTrees(tx, materialIDs); err != nil {
			return err
		}

		var pathIDs []uuid.UUID
		if err := tx.Model(&models.LearningPath{}).Where("squad_id = ?", squadID).Pluck("id", &pathIDs).Error; err != nil {
			return err
		}
		if len(pathIDs) > 0 {
			if err := tx.Where("learning_path_id IN ?", pathIDs).Delete(&models.LearningPathItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", pathIDs).Delete(&models.LearningPath{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("squad_id = ?", squadID).Delete(&models.SquadMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", squadID).Delete(&models.Squad{}).Error
	})
}

// Authorize loads the squad and checks that the actor holds one of roles.
// Site admins pass regardless of membership.
func (s *SquadService) Authorize(squadID uuid.UUID, actor Actor, roles ...string) (*models.Squad, error) {
	squad, err := s.find(s.db, squadID)
	if err != nil {
		return nil, err
	}
	if actor.Admin {
		return squad, nil
	}
	member, err := s.membership(s.db, squadID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotSquadMember
	}
	for _, r := range roles {
		if member.Role == r {
			return squad, nil
		}
	}
	return nil, ErrSquadRoleRequired
}

// CanView reports whether the actor may read the squad's content.
func (s *SquadService) CanView(squadID uuid.UUID, actor Actor) (*models.Squad, error) {
	squad, err := s.find(s.db, squadID)
	if err != nil {
		return nil, err
	}
	if squad.IsPublic || actor.Admin {
		return squad, nil
	}
	member, err := s.membership(s.db, squadID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrSquadPrivate
	}
	return squad, nil
}

func (s *SquadService) find(db *gorm.DB, squadID uuid.UUID) (*models.Squad, error) {
	var squad models.Squad
	if err := db.First(&squad, "id = ?", squadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSquadNotFound
		}
		return nil, fmt.Errorf("failed to load squad: %w", err)
	}
	return &squad, nil
}

// membership returns nil, nil when the user is not a member.
func (s *SquadService) membership(db *gorm.DB, squadID, userID uuid.UUID) (*models.SquadMember, error) {
	var member models.SquadMember
	err := db.Where("squad_id = ? AND user_id = ?", squadID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	return &member, nil
}
