package creations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var (
	ErrCreationNotFound = apperr.NotFound("creation not found")
	ErrCommentNotFound  = apperr.NotFound("comment not found")
	ErrNotOwner         = apperr.Forbidden("only the owner can do this")
)

type CreationService struct {
	db      *gorm.DB
	content *services.ContentService
}

func NewCreationService(db *gorm.DB, content *services.ContentService) *CreationService {
	return &CreationService{db: db, content: content}
}

// List returns creations newest first.
func (s *CreationService) List(viewerID uuid.UUID, page, limit int) ([]Creation, int64, error) {
	var total int64
	if err := s.db.Model(&Creation{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count creations: %w", err)
	}

	var items []Creation
	if err := s.db.Preload("User").
		Order("created_at DESC").
		Scopes(database.Paginate(page, limit)).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list creations: %w", err)
	}
	if err := s.decorate(items, viewerID); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *CreationService) Get(id, viewerID uuid.UUID) (*Creation, error) {
	var creation Creation
	if err := s.db.Preload("User").First(&creation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreationNotFound
		}
		return nil, fmt.Errorf("failed to load creation: %w", err)
	}
	items := []Creation{creation}
	if err := s.decorate(items, viewerID); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *CreationService) Create(userID uuid.UUID, req *CreateCreationRequest) (*Creation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	title, err := s.content.Clean(req.Title, false)
	if err != nil {
		return nil, err
	}
	description, err := s.content.Clean(req.Description, true)
	if err != nil {
		return nil, err
	}

	creation := Creation{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Link:        strings.TrimSpace(req.Link),
	}
	if err := s.db.Omit("User").Create(&creation).Error; err != nil {
		return nil, fmt.Errorf("failed to create creation: %w", err)
	}
	return s.Get(creation.ID, userID)
}

// Delete removes a creation with its comments and likes.
func (s *CreationService) Delete(id uuid.UUID, actor services.Actor) error {
	creation, err := s.Get(id, actor.UserID)
	if err != nil {
		return err
	}
	if creation.UserID != actor.UserID && !actor.Admin {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uuid.UUID
		if err := tx.Model(&CreationComment{}).Where("creation_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&CreationComment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("creation_id = ?", id).Delete(&CreationLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Creation{}).Error
	})
}

// ToggleLike flips the caller's like on a creation.
func (s *CreationService) ToggleLike(id, userID uuid.UUID) (*dto.LikeResponse, error) {
	resp := &dto.LikeResponse{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Creation{}, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCreationNotFound
			}
			return err
		}

		res := tx.Where("creation_id = ? AND user_id = ?", id, userID).Delete(&CreationLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := database.InsertOnce(tx, &CreationLike{ID: uuid.New(), CreationID: id, UserID: userID}); err != nil {
				return err
			}
			resp.Liked = true
		}

		var count int64
		if err := tx.Model(&CreationLike{}).Where("creation_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		resp.Likes = int(count)
		return tx.Model(&Creation{}).Where("id = ?", id).Update("likes", count).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return resp, nil
}

// Comments returns top-level comments oldest first with their replies.
func (s *CreationService) Comments(creationID, viewerID uuid.UUID) ([]CreationComment, error) {
	if _, err := s.Get(creationID, viewerID); err != nil {
		return nil, err
	}

	var all []CreationComment
	if err := s.db.Preload("User").
		Where("creation_id = ?", creationID).
		Order("created_at ASC").
		Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	ids := make([]uuid.UUID, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	liked := map[uuid.UUID]bool{}
	if len(ids) > 0 {
		var likedIDs []uuid.UUID
		if err := s.db.Model(&CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, ids).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to load likes: %w", err)
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	replies := map[uuid.UUID][]CreationComment{}
	roots := make([]CreationComment, 0, len(all))
	for _, c := range all {
		c.LikedByMe = liked[c.ID]
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}
	for i := range roots {
		roots[i].Replies = replies[roots[i].ID]
	}
	return roots, nil
}

// AddComment comments on a creation, or replies when parentID is set.
// Replies to replies attach to the root comment.
func (s *CreationService) AddComment(creationID, userID uuid.UUID, parentID *uuid.UUID, req *CommentRequest) (*CreationComment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(creationID, userID); err != nil {
		return nil, err
	}
	text, err := s.content.Clean(req.Content, false)
	if err != nil {
		return nil, err
	}

	comment := CreationComment{
		ID:         uuid.New(),
		CreationID: creationID,
		UserID:     userID,
		Content:    text,
	}
	if parentID != nil {
		parent, err := s.comment(creationID, *parentID)
		if err != nil {
			return nil, err
		}
		root := parent.ID
		if parent.ParentID != nil {
			root = *parent.ParentID
		}
		comment.ParentID = &root
	}

	if err := s.db.Omit("User").Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if err := s.db.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return &comment, nil
}

func (s *CreationService) ToggleCommentLike(creationID, commentID, userID uuid.UUID) (*dto.LikeResponse, error) {
	if _, err := s.comment(creationID, commentID); err != nil {
		return nil, err
	}

	resp := &dto.LikeResponse{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := database.InsertOnce(tx, &CommentLike{ID: uuid.New(), CommentID: commentID, UserID: userID}); err != nil {
				return err
			}
			resp.Liked = true
		}

		var count int64
		if err := tx.Model(&CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
			return err
		}
		resp.Likes = int(count)
		return tx.Model(&CreationComment{}).Where("id = ?", commentID).Update("likes", count).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle comment like: %w", err)
	}
	return resp, nil
}

func (s *CreationService) comment(creationID, commentID uuid.UUID) (*CreationComment, error) {
	var comment CreationComment
	if err := s.db.Where("id = ? AND creation_id = ?", commentID, creationID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &comment, nil
}

func (s *CreationService) decorate(items []Creation, viewerID uuid.UUID) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}

	var likedIDs []uuid.UUID
	if err := s.db.Model(&CreationLike{}).
		Where("user_id = ? AND creation_id IN ?", viewerID, ids).
		Pluck("creation_id", &likedIDs).Error; err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}
	var counts []struct {
		CreationID uuid.UUID
		Total      int64
	}
	if err := s.db.Model(&CreationComment{}).
		Select("creation_id, COUNT(*) AS total").
		Where("creation_id IN ?", ids).
		Group("creation_id").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}

	liked := make(map[uuid.UUID]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	countBy := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countBy[c.CreationID] = c.Total
	}
	for i := range items {
		items[i].LikedByMe = liked[items[i].ID]
		items[i].CommentCount = countBy[items[i].ID]
	}
	return nil
}
