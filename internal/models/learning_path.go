package models

import (
	"time"

	"github.com/google/uuid"
)

type LearningPath struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	SquadID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"squad_id"`
	Title       string             `gorm:"size:200;not null" json:"title"`
	Description string             `gorm:"type:text" json:"description"`
	CreatedBy   uuid.UUID          `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	Items       []LearningPathItem `gorm:"foreignKey:LearningPathID" json:"items"`
}

type LearningPathItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearningPathID uuid.UUID `gorm:"type:uuid;not null;index" json:"learning_path_id"`
	MaterialID     uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Position       int       `gorm:"not null" json:"position"`
	Material       Material  `gorm:"foreignKey:MaterialID" json:"material"`
}
