package creations

import (
	"time"

	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/models"
)

// Creation is a project a user shows off to the community.
type Creation struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	ImageURL    string      `gorm:"size:500" json:"image_url"`
	Link        string      `gorm:"size:500" json:"link"`
	Likes       int         `gorm:"default:0" json:"likes"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	User        models.User `gorm:"foreignKey:UserID" json:"author"`

	LikedByMe    bool  `gorm:"-" json:"liked_by_me"`
	CommentCount int64 `gorm:"-" json:"comment_count"`
}

type CreationLike struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creation_likes_target_user"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creation_likes_target_user"`
	CreatedAt  time.Time
}

// CreationComment is a comment or, with ParentID set, a reply to one.
type CreationComment struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"creation_id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentID   *uuid.UUID        `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	Likes      int               `gorm:"default:0" json:"likes"`
	CreatedAt  time.Time         `json:"created_at"`
	User       models.User       `gorm:"foreignKey:UserID" json:"author"`
	Replies    []CreationComment `gorm:"-" json:"replies,omitempty"`
	LikedByMe  bool              `gorm:"-" json:"liked_by_me"`
}

type CommentLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_target_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_target_user"`
	CreatedAt time.Time
}

// --- DTOs ---

type CreateCreationRequest struct {
	Title       string `json:"title" validate:"nonblank,max=200"`
	Description string `json:"description" validate:"nonblank,max=5000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=500"`
	Link        string `json:"link" validate:"omitempty,url,max=500"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"nonblank,max=2000"`
}
