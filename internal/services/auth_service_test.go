package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/testutil"
)

func TestAuthSignupLoginRefresh(t *testing.T) {
	env := newTestEnv(t)
	cfg := testutil.TestConfig(t)
	cfg.AdminEmails = "boss@example.com"
	auth := NewAuthService(env.db, cfg, env.points)
	school := env.fx.CreateSchool("SMA 1", "Jakarta", "DKI Jakarta")

	resp, err := auth.Signup(&dto.SignupRequest{
		Name:     "Boss",
		Email:    "Boss@Example.com",
		Password: "password123",
		SchoolID: &school.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", resp.User.Email)
	require.NotNil(t, resp.User.School)
	assert.Equal(t, "SMA 1", resp.User.School.Name)
	assert.Equal(t, "Novice", resp.User.RankLabel)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = auth.Signup(&dto.SignupRequest{Name: "Dup", Email: "boss@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = auth.Login(&dto.LoginRequest{Email: "boss@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := auth.Login(&dto.LoginRequest{Email: "BOSS@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// rotated tokens cannot be reused
	_, err = auth.Refresh(login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, auth.Logout(refreshed.RefreshToken))
	_, err = auth.Refresh(refreshed.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.db, testutil.TestConfig(t), env.points)

	_, err := auth.Signup(&dto.SignupRequest{Name: "", Email: "not-an-email", Password: "short"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")

	missing := uuid.New()
	_, err = auth.Signup(&dto.SignupRequest{Name: "A", Email: "a@example.com", Password: "password123", SchoolID: &missing})
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestSignupAppearsOnCachedBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := NewAuthService(env.db, testutil.TestConfig(t), env.points)
	env.fx.CreateUser("Existing", nil, testNow.AddDate(-1, 0, 0))

	board, err := env.points.Leaderboard(ctx, CategoryAllTime, "")
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)

	resp, err := auth.Signup(&dto.SignupRequest{Name: "Newcomer", Email: "new@example.com", Password: "password123"})
	require.NoError(t, err)

	board, err = env.points.Leaderboard(ctx, CategoryAllTime, "")
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, resp.User.ID, board.Entries[1].ID)
}
