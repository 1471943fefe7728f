package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"size:120;not null" json:"name"`
	Email         string         `gorm:"not null;size:255;uniqueIndex" json:"-"`
	Password      string         `gorm:"not null" json:"-"`
	Role          string         `gorm:"size:20;default:'user'" json:"role"`
	SchoolID      *uuid.UUID     `gorm:"type:uuid;index" json:"school_id"`
	School        *School        `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	AvatarURL     string         `gorm:"size:500" json:"avatar_url"`
	StudyStreak   int            `gorm:"default:0" json:"study_streak"`
	LongestStreak int            `gorm:"default:0" json:"longest_streak"`
	LastStudyDate *time.Time     `json:"last_study_date,omitempty"`
	RankLabel     string         `gorm:"size:40;default:'Novice'" json:"rank_label"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// School is static reference data seeded at startup.
type School struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	City     string    `gorm:"size:120;index" json:"city"`
	Province string    `gorm:"size:120;index" json:"province"`
}
