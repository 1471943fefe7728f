package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
)

func materialRequest(stages ...dto.StageInput) *dto.MaterialRequest {
	return &dto.MaterialRequest{
		Title:    "Kinematics",
		XPReward: 40,
		Stages:   stages,
	}
}

func textStage(title string, bodies ...string) dto.StageInput {
	stage := dto.StageInput{Title: title}
	for _, b := range bodies {
		stage.Contents = append(stage.Contents, dto.ContentInput{Type: models.ContentTypeText, Content: b})
	}
	return stage
}

func TestMaterialCreateTree(t *testing.T) {
	env := newTestEnv(t)
	admin := env.fx.CreateAdmin("Admin")

	m, err := env.materials.Create(Actor{UserID: admin.ID, Admin: true}, nil, materialRequest(
		textStage("Intro", "one", "two"),
		textStage("Practice", "three"),
	))
	require.NoError(t, err)
	assert.Equal(t, models.MaterialTypeCourse, m.Type)
	require.Len(t, m.Stages, 2)
	assert.Equal(t, "Intro", m.Stages[0].Title)
	assert.Equal(t, 0, m.Stages[0].Position)
	require.Len(t, m.Stages[0].Contents, 2)
	assert.Equal(t, "one", m.Stages[0].Contents[0].Content)
	assert.Equal(t, 1, m.Stages[0].Contents[1].Position)
	assert.Equal(t, "Practice", m.Stages[1].Title)
}

func TestMaterialCreateRejectsEmptyTree(t *testing.T) {
	env := newTestEnv(t)
	admin := Actor{UserID: env.fx.CreateAdmin("Admin").ID, Admin: true}

	_, err := env.materials.Create(admin, nil, materialRequest())
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "stages")

	_, err = env.materials.Create(admin, nil, materialRequest(dto.StageInput{Title: "Empty"}))
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "stages[0].contents")

	_, err = env.materials.Create(admin, nil, materialRequest(dto.StageInput{
		Title:    "Bad",
		Contents: []dto.ContentInput{{Type: "audio", Content: "x"}},
	}))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be one of: text, image, video", ve.Fields["stages[0].contents[0].type"])

	assert.Equal(t, int64(0), env.fx.Count(&models.Material{}, ""))
	assert.Equal(t, int64(0), env.fx.Count(&models.Stage{}, ""))
	assert.Equal(t, int64(0), env.fx.Count(&models.Content{}, ""))
}

func TestMaterialWritePermissions(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.CreateUser("Owner", nil, time.Now())
	mod := env.fx.CreateUser("Mod", nil, time.Now())
	member := env.fx.CreateUser("Member", nil, time.Now())
	squad := env.fx.CreateSquad("Open", owner.ID, true)
	env.fx.AddMember(squad.ID, mod.ID, models.SquadRoleModerator)
	env.fx.AddMember(squad.ID, member.ID, models.SquadRoleMember)
	squadID := squad.ID
	req := materialRequest(textStage("Intro", "body"))

	_, err := env.materials.Create(Actor{UserID: owner.ID}, nil, req)
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = env.materials.Create(Actor{UserID: member.ID}, &squadID, req)
	assert.ErrorIs(t, err, ErrSquadRoleRequired)

	m, err := env.materials.Create(Actor{UserID: mod.ID}, &squadID, req)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialTypeSquad, m.Type)
	require.NotNil(t, m.SquadID)
	assert.Equal(t, squad.ID, *m.SquadID)

	// a squad material is not reachable through another squad
	other := env.fx.CreateSquad("Other", owner.ID, true)
	otherID := other.ID
	_, err = env.materials.Get(Actor{UserID: owner.ID}, &otherID, m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestMaterialSubcategoryRules(t *testing.T) {
	env := newTestEnv(t)
	admin := Actor{UserID: env.fx.CreateAdmin("Admin").ID, Admin: true}
	owner := env.fx.CreateUser("Owner", nil, time.Now())
	squad := env.fx.CreateSquad("Open", owner.ID, true)
	squadID := squad.ID

	missing := uuid.New()
	req := materialRequest(textStage("Intro", "body"))
	req.SubcategoryID = &missing
	_, err := env.materials.Create(admin, nil, req)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "subcategory_id")

	_, err = env.materials.Create(Actor{UserID: owner.ID}, &squadID, req)
	assert.ErrorIs(t, err, ErrSubcategoryForCourse)

	cat, err := env.catalog.CreateCategory(&dto.CategoryRequest{Name: "Science"})
	require.NoError(t, err)
	sub, err := env.catalog.CreateSubcategory(&dto.SubcategoryRequest{CategoryID: cat.ID, Name: "Physics"})
	require.NoError(t, err)
	req.SubcategoryID = &sub.ID
	m, err := env.materials.Create(admin, nil, req)
	require.NoError(t, err)

	list, total, err := env.materials.List(admin, nil, &sub.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, m.ID, list[0].ID)
}

func TestMaterialUpdateReplacesTree(t *testing.T) {
	env := newTestEnv(t)
	admin := Actor{UserID: env.fx.CreateAdmin("Admin").ID, Admin: true}

	m, err := env.materials.Create(admin, nil, materialRequest(textStage("A", "1"), textStage("B", "2")))
	require.NoError(t, err)

	req := materialRequest(textStage("C", "3", "4"))
	req.Title = "Dynamics"
	updated, err := env.materials.Update(admin, nil, m.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Dynamics", updated.Title)
	require.Len(t, updated.Stages, 1)
	assert.Equal(t, "C", updated.Stages[0].Title)
	assert.Len(t, updated.Stages[0].Contents, 2)
	assert.Equal(t, int64(1), env.fx.Count(&models.Stage{}, ""))
	assert.Equal(t, int64(2), env.fx.Count(&models.Content{}, ""))

	// a failing update leaves the stored tree alone
	_, err = env.materials.Update(admin, nil, m.ID, materialRequest())
	require.Error(t, err)
	assert.Equal(t, int64(1), env.fx.Count(&models.Stage{}, ""))
}

func TestMaterialProgressIsMonotonicAndAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.fx.CreateAdmin("Admin")
	learner := env.fx.CreateUser("Learner", nil, testNow.AddDate(-1, 0, 0))
	m := env.fx.CreateMaterial("Course", admin.ID, nil, 50, 3)
	actor := Actor{UserID: learner.ID}

	empty, err := env.materials.GetProgress(actor, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Progress)

	resp, err := env.materials.UpdateProgress(ctx, actor, m.ID, &dto.ProgressRequest{Progress: 0.5, ActiveStage: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, resp.Progress)
	assert.Zero(t, resp.AwardedXP)

	resp, err = env.materials.UpdateProgress(ctx, actor, m.ID, &dto.ProgressRequest{Progress: 0.2, ActiveStage: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, resp.Progress, "progress never decreases")
	assert.Equal(t, 0, resp.ActiveStage)

	resp, err = env.materials.UpdateProgress(ctx, actor, m.ID, &dto.ProgressRequest{Progress: 1.7, ActiveStage: 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Progress)
	assert.NotNil(t, resp.CompletedAt)
	assert.Equal(t, 50, resp.AwardedXP)

	resp, err = env.materials.UpdateProgress(ctx, actor, m.ID, &dto.ProgressRequest{Progress: 1, ActiveStage: 2})
	require.NoError(t, err)
	assert.Zero(t, resp.AwardedXP)

	assert.Equal(t, int64(1), env.fx.Count(&models.MaterialProgress{}, ""))
	assert.Equal(t, int64(1), env.fx.Count(&models.Point{}, "user_id = ? AND source = ?", learner.ID, models.PointSourceMaterial))

	board, err := env.points.Leaderboard(ctx, CategoryWeekly, "")
	require.NoError(t, err)
	assert.Equal(t, learner.ID, board.Entries[0].ID)
	assert.Equal(t, int64(50), board.Entries[0].Points)

	_, err = env.materials.UpdateProgress(ctx, actor, m.ID, &dto.ProgressRequest{Progress: 0.5, ActiveStage: 3})
	assert.ErrorIs(t, err, ErrActiveStageRange)
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 0.0, ClampProgress(-0.3))
	assert.Equal(t, 0.25, ClampProgress(0.25))
	assert.Equal(t, 1.0, ClampProgress(3))
}

func TestMaterialDeleteKeepsPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := Actor{UserID: env.fx.CreateAdmin("Admin").ID, Admin: true}
	learner := env.fx.CreateUser("Learner", nil, time.Now())
	m := env.fx.CreateMaterial("Course", admin.UserID, nil, 20, 1)

	_, err := env.materials.UpdateProgress(ctx, Actor{UserID: learner.ID}, m.ID, &dto.ProgressRequest{Progress: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, env.materials.Delete(Actor{UserID: learner.ID}, nil, m.ID), ErrAdminRequired)
	require.NoError(t, env.materials.Delete(admin, nil, m.ID))

	_, err = env.materials.Get(admin, nil, m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
	assert.Equal(t, int64(0), env.fx.Count(&models.MaterialProgress{}, ""))
	assert.Equal(t, int64(0), env.fx.Count(&models.Stage{}, ""))
	assert.Equal(t, int64(1), env.fx.Count(&models.Point{}, ""))
}
