package dto

import "github.com/google/uuid"

type CategoryRequest struct {
	Name        string `json:"name" validate:"nonblank,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type SubcategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Name       string    `json:"name" validate:"nonblank,max=120"`
}
