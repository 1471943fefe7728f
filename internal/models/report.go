package models

import (
	"time"

	"github.com/google/uuid"
)

// Report targets.
const (
	ReportTargetDiscussion = "discussion"
	ReportTargetComment    = "comment"
	ReportTargetCreation   = "creation"
	ReportTargetService    = "service"
	ReportTargetUser       = "user"
)

// Report flags a discussion post, comment, creation, listing or user for
// admin review.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ContentType string     `gorm:"size:20;not null;index:idx_reports_target" json:"content_type"`
	ContentID   string     `gorm:"size:36;not null;index:idx_reports_target" json:"content_id"`
	Reason      string     `gorm:"size:500;not null" json:"reason"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	AdminNote   string     `gorm:"size:1000" json:"admin_note,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Reporter    User       `gorm:"foreignKey:ReporterID" json:"-"`
}
