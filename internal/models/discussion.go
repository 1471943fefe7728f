package models

import (
	"time"

	"github.com/google/uuid"
)

// Discussion is a thread or reply under a material. Replies point at their
// root thread through ParentID.
type Discussion struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID    `gorm:"type:uuid;not null;index" json:"material_id"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentID   *uuid.UUID   `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Content    string       `gorm:"type:text;not null" json:"content"`
	Likes      int          `gorm:"default:0" json:"likes"`
	CreatedAt  time.Time    `json:"created_at"`
	User       User         `gorm:"foreignKey:UserID" json:"author"`
	Replies    []Discussion `gorm:"-" json:"replies,omitempty"`
	LikedByMe  bool         `gorm:"-" json:"liked_by_me"`
}

type DiscussionLike struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DiscussionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_discussion_likes_target_user"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_discussion_likes_target_user"`
	CreatedAt    time.Time
}
