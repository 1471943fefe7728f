package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PointSourceMaterial = "material"
	PointSourceBonus    = "bonus"
)

// Point is one immutable XP ledger row. MaterialID is kept as a plain column
// so earned XP survives deletion of the material.
type Point struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_points_user_created,priority:1" json:"user_id"`
	Value      int        `gorm:"not null" json:"value"`
	Source     string     `gorm:"size:20;not null;default:'bonus'" json:"source"`
	MaterialID *uuid.UUID `gorm:"type:uuid;index" json:"material_id,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;index;index:idx_points_user_created,priority:2" json:"created_at"`
}
