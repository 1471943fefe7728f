package dto

import (
	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/models"
)

type ContentInput struct {
	Type    string `json:"type" validate:"required,oneof=text image video"`
	Content string `json:"content" validate:"nonblank"`
}

type StageInput struct {
	Title    string         `json:"title" validate:"nonblank,max=200"`
	Contents []ContentInput `json:"contents" validate:"min=1,dive"`
}

// MaterialRequest carries a whole material tree. Updates replace the stored
// tree with this one; stage and content order is the array order.
type MaterialRequest struct {
	Title         string       `json:"title" validate:"nonblank,max=200"`
	Description   string       `json:"description"`
	XPReward      int          `json:"xp_reward" validate:"gte=0"`
	EstimatedTime int          `json:"estimated_time" validate:"gte=0"`
	SubcategoryID *uuid.UUID   `json:"subcategory_id"`
	Stages        []StageInput `json:"stages" validate:"min=1,dive"`
}

type ProgressRequest struct {
	Progress    float64 `json:"progress"`
	ActiveStage int     `json:"active_stage"`
}

type ProgressResponse struct {
	models.MaterialProgress
	AwardedXP int `json:"awarded_xp"`
}
