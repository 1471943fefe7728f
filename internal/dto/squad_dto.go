package dto

import "encoding/json"

type CreateSquadRequest struct {
	Name        string `json:"name" validate:"nonblank,max=120"`
	Description string `json:"description" validate:"nonblank,max=2000"`
	About       string `json:"about" validate:"max=5000"`
	Rules       string `json:"rules" validate:"max=5000"`
	IsPublic    *bool  `json:"is_public"`
}

// UpdateSquadRequest is a partial update; nil fields are left unchanged.
type UpdateSquadRequest struct {
	Name        *string         `json:"name" validate:"omitempty,nonblank,max=120"`
	Description *string         `json:"description" validate:"omitempty,nonblank,max=2000"`
	About       *string         `json:"about" validate:"omitempty,max=5000"`
	Rules       *string         `json:"rules" validate:"omitempty,max=5000"`
	Settings    json.RawMessage `json:"settings"`
	IsPublic    *bool           `json:"is_public"`
}

type ManageMemberRequest struct {
	Action string `json:"action" validate:"required,oneof=update-role remove"`
	Role   string `json:"role" validate:"required_if=Action update-role,omitempty,oneof=admin moderator member"`
}
