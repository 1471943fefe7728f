package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/models"
)

type SignupRequest struct {
	Name     string     `json:"name" validate:"nonblank,max=120"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	SchoolID *uuid.UUID `json:"school_id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             UserResponse `json:"user"`
}

type UserResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Role          string         `json:"role"`
	AvatarURL     string         `json:"avatar_url"`
	School        *SchoolSummary `json:"school,omitempty"`
	StudyStreak   int            `json:"study_streak"`
	LongestStreak int            `json:"longest_streak"`
	RankLabel     string         `json:"rank_label"`
	CreatedAt     time.Time      `json:"created_at"`
}

type SchoolSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	City     string    `json:"city"`
	Province string    `json:"province"`
}

type UpdateProfileRequest struct {
	Name      *string    `json:"name" validate:"omitempty,nonblank,max=120"`
	AvatarURL *string    `json:"avatar_url" validate:"omitempty,max=500"`
	SchoolID  *uuid.UUID `json:"school_id"`
}

// NewUserResponse renders a user. Email is only included for the owner.
func NewUserResponse(u *models.User, withEmail bool) UserResponse {
	resp := UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Role:          u.Role,
		AvatarURL:     u.AvatarURL,
		StudyStreak:   u.StudyStreak,
		LongestStreak: u.LongestStreak,
		RankLabel:     u.RankLabel,
		CreatedAt:     u.CreatedAt,
	}
	if withEmail {
		resp.Email = u.Email
	}
	if u.School != nil {
		resp.School = &SchoolSummary{
			ID:       u.School.ID,
			Name:     u.School.Name,
			City:     u.School.City,
			Province: u.School.Province,
		}
	}
	return resp
}
