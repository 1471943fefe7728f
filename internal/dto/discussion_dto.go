package dto

import "github.com/google/uuid"

type CreateDiscussionRequest struct {
	Content  string     `json:"content" validate:"nonblank,max=5000"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// LikeResponse is returned by every like toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}
