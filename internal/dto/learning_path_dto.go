package dto

import "github.com/google/uuid"

type LearningPathRequest struct {
	Title       string      `json:"title" validate:"nonblank,max=200"`
	Description string      `json:"description" validate:"max=5000"`
	MaterialIDs []uuid.UUID `json:"material_ids" validate:"min=1,unique"`
}
