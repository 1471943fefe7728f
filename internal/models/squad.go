package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SquadRoleAdmin     = "admin"
	SquadRoleModerator = "moderator"
	SquadRoleMember    = "member"
)

type Squad struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:120;not null" json:"name"`
	Description string         `gorm:"type:text;not null" json:"description"`
	About       string         `gorm:"type:text" json:"about"`
	Rules       string         `gorm:"type:text" json:"rules"`
	Settings    datatypes.JSON `json:"settings"`
	IsPublic    bool           `gorm:"not null" json:"is_public"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Members     []SquadMember  `gorm:"foreignKey:SquadID" json:"members,omitempty"`

	MemberCount int64  `gorm:"-" json:"member_count"`
	MyRole      string `gorm:"-" json:"my_role,omitempty"`
}

// SquadMember holds exactly one role per (squad, user).
type SquadMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SquadID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_squad_members_squad_user" json:"squad_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_squad_members_squad_user;index" json:"user_id"`
	Role     string    `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func ValidSquadRole(role string) bool {
	switch role {
	case SquadRoleAdmin, SquadRoleModerator, SquadRoleMember:
		return true
	}
	return false
}
