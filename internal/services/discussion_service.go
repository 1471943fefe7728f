package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var (
	ErrDiscussionNotFound = apperr.NotFound("discussion not found")
	ErrParentMismatch     = apperr.Invalid("parent_id belongs to another material")
	ErrNotAuthor          = apperr.Forbidden("only the author can do this")
)

// DiscussionService runs the threaded forum under each material. Replies
// are one level deep: replying to a reply attaches to its root thread.
type DiscussionService struct {
	db        *gorm.DB
	materials *MaterialService
	content   *ContentService
}

func NewDiscussionService(db *gorm.DB, materials *MaterialService, content *ContentService) *DiscussionService {
	return &DiscussionService{db: db, materials: materials, content: content}
}

// List returns threads newest first, each with its replies oldest first.
func (s *DiscussionService) List(materialID uuid.UUID, actor Actor) ([]models.Discussion, error) {
	if _, err := s.materials.Get(actor, nil, materialID); err != nil {
		return nil, err
	}

	var threads []models.Discussion
	if err := s.db.Preload("User").
		Where("material_id = ? AND parent_id IS NULL", materialID).
		Order("created_at DESC").
		Find(&threads).Error; err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}
	if len(threads) == 0 {
		return threads, nil
	}

	ids := make([]uuid.UUID, len(threads))
	for i, t := range threads {
		ids[i] = t.ID
	}
	var replies []models.Discussion
	if err := s.db.Preload("User").
		Where("parent_id IN ?", ids).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}

	liked, err := s.likedBy(actor.UserID, append(ids, discussionIDs(replies)...))
	if err != nil {
		return nil, err
	}

	byParent := make(map[uuid.UUID][]models.Discussion, len(threads))
	for _, r := range replies {
		r.LikedByMe = liked[r.ID]
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}
	for i := range threads {
		threads[i].LikedByMe = liked[threads[i].ID]
		threads[i].Replies = byParent[threads[i].ID]
	}
	return threads, nil
}

func (s *DiscussionService) Create(materialID uuid.UUID, actor Actor, req *dto.CreateDiscussionRequest) (*models.Discussion, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.materials.Get(actor, nil, materialID); err != nil {
		return nil, err
	}
	text, err := s.content.Clean(req.Content, false)
	if err != nil {
		return nil, err
	}

	discussion := models.Discussion{
		ID:         uuid.New(),
		MaterialID: materialID,
		UserID:     actor.UserID,
		Content:    text,
	}
	if req.ParentID != nil {
		parent, err := s.find(*req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.MaterialID != materialID {
			return nil, ErrParentMismatch
		}
		root := parent.ID
		if parent.ParentID != nil {
			root = *parent.ParentID
		}
		discussion.ParentID = &root
	}

	if err := s.db.Omit("User").Create(&discussion).Error; err != nil {
		return nil, fmt.Errorf("failed to create discussion: %w", err)
	}
	if err := s.db.Preload("User").First(&discussion, "id = ?", discussion.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload discussion: %w", err)
	}
	return &discussion, nil
}

// ToggleLike flips the caller's like and recounts inside the transaction.
func (s *DiscussionService) ToggleLike(discussionID, userID uuid.UUID) (*dto.LikeResponse, error) {
	resp := &dto.LikeResponse{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var discussion models.Discussion
		if err := tx.Select("id").First(&discussion, "id = ?", discussionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDiscussionNotFound
			}
			return err
		}

		res := tx.Where("discussion_id = ? AND user_id = ?", discussionID, userID).Delete(&models.DiscussionLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent first like may win the insert; the like still stands
			like := models.DiscussionLike{ID: uuid.New(), DiscussionID: discussionID, UserID: userID}
			if _, err := database.InsertOnce(tx, &like); err != nil {
				return err
			}
			resp.Liked = true
		}

		var count int64
		if err := tx.Model(&models.DiscussionLike{}).Where("discussion_id = ?", discussionID).Count(&count).Error; err != nil {
			return err
		}
		resp.Likes = int(count)
		return tx.Model(&models.Discussion{}).Where("id = ?", discussionID).Update("likes", count).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return resp, nil
}

// Delete removes a post (and, for a thread, its replies). Authors and site
// admins may delete.
func (s *DiscussionService) Delete(discussionID uuid.UUID, actor Actor) error {
	discussion, err := s.find(discussionID)
	if err != nil {
		return err
	}
	if discussion.UserID != actor.UserID && !actor.Admin {
		return ErrNotAuthor
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ids := []uuid.UUID{discussionID}
		if discussion.ParentID == nil {
			var replyIDs []uuid.UUID
			if err := tx.Model(&models.Discussion{}).Where("parent_id = ?", discussionID).Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			ids = append(ids, replyIDs...)
		}
		if err := tx.Where("discussion_id IN ?", ids).Delete(&models.DiscussionLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Discussion{}).Error
	})
}

func (s *DiscussionService) find(id uuid.UUID) (*models.Discussion, error) {
	var discussion models.Discussion
	if err := s.db.First(&discussion, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("failed to load discussion: %w", err)
	}
	return &discussion, nil
}

func (s *DiscussionService) likedBy(userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	var likedIDs []uuid.UUID
	if err := s.db.Model(&models.DiscussionLike{}).
		Where("user_id = ? AND discussion_id IN ?", userID, ids).
		Pluck("discussion_id", &likedIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	liked := make(map[uuid.UUID]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	return liked, nil
}

func discussionIDs(list []models.Discussion) []uuid.UUID {
	ids := make([]uuid.UUID, len(list))
	for i, d := range list {
		ids[i] = d.ID
	}
	return ids
}
