package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaterialTypeSquad  = "squad"
	MaterialTypeCourse = "course"

	ContentTypeText  = "text"
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
)

// Material is the aggregate root of a Stage/Content tree. The tree is always
// written as a whole.
type Material struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	XPReward      int        `gorm:"column:xp_reward;default:0" json:"xp_reward"`
	EstimatedTime int        `gorm:"default:0" json:"estimated_time"`
	Type          string     `gorm:"size:20;not null;index" json:"type"`
	SquadID       *uuid.UUID `gorm:"type:uuid;index" json:"squad_id,omitempty"`
	SubcategoryID *uuid.UUID `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Stages        []Stage    `gorm:"foreignKey:MaterialID" json:"stages,omitempty"`
}

type Stage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Position   int       `gorm:"not null" json:"order"`
	Contents   []Content `gorm:"foreignKey:StageID" json:"contents"`
}

type Content struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StageID  uuid.UUID `gorm:"type:uuid;not null;index" json:"stage_id"`
	Type     string    `gorm:"size:10;not null" json:"type"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	Position int       `gorm:"not null" json:"order"`
}

// MaterialProgress is upserted per (user, material).
type MaterialProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_material" json:"user_id"`
	MaterialID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_material;index" json:"material_id"`
	Progress    float64    `gorm:"not null;default:0" json:"progress"`
	ActiveStage int        `gorm:"not null;default:0" json:"active_stage"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (MaterialProgress) TableName() string {
	return "material_progress"
}
