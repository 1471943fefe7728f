package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
)

func TestLearningPathKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.CreateUser("Owner", nil, time.Now())
	squad := env.fx.CreateSquad("Open", owner.ID, true)
	squadID := squad.ID
	first := env.fx.CreateMaterial("First", owner.ID, &squadID, 0, 1)
	second := env.fx.CreateMaterial("Second", owner.ID, nil, 0, 1)
	third := env.fx.CreateMaterial("Third", owner.ID, &squadID, 0, 1)

	path, err := env.paths.Create(squad.ID, Actor{UserID: owner.ID}, &dto.LearningPathRequest{
		Title:       "Mechanics track",
		MaterialIDs: []uuid.UUID{third.ID, first.ID, second.ID},
	})
	require.NoError(t, err)
	require.Len(t, path.Items, 3)
	assert.Equal(t, "Third", path.Items[0].Material.Title)
	assert.Equal(t, "First", path.Items[1].Material.Title)
	assert.Equal(t, "Second", path.Items[2].Material.Title)

	list, err := env.paths.List(squad.ID, Actor{UserID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLearningPathValidatesMaterials(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.CreateUser("Owner", nil, time.Now())
	member := env.fx.CreateUser("Member", nil, time.Now())
	squad := env.fx.CreateSquad("Open", owner.ID, true)
	other := env.fx.CreateSquad("Other", owner.ID, true)
	env.fx.AddMember(squad.ID, member.ID, models.SquadRoleMember)
	otherID := other.ID
	foreign := env.fx.CreateMaterial("Foreign", owner.ID, &otherID, 0, 1)

	_, err := env.paths.Create(squad.ID, Actor{UserID: owner.ID}, &dto.LearningPathRequest{
		Title:       "Bad",
		MaterialIDs: []uuid.UUID{foreign.ID, uuid.New()},
	})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "belongs to another squad", ve.Fields["material_ids[0]"])
	assert.Equal(t, "does not reference an existing material", ve.Fields["material_ids[1]"])

	dup := uuid.New()
	_, err = env.paths.Create(squad.ID, Actor{UserID: owner.ID}, &dto.LearningPathRequest{
		Title:       "Dup",
		MaterialIDs: []uuid.UUID{dup, dup},
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must not contain duplicates", ve.Fields["material_ids"])

	course := env.fx.CreateMaterial("Course", owner.ID, nil, 0, 1)
	_, err = env.paths.Create(squad.ID, Actor{UserID: member.ID}, &dto.LearningPathRequest{
		Title:       "Mine",
		MaterialIDs: []uuid.UUID{course.ID},
	})
	assert.ErrorIs(t, err, ErrSquadRoleRequired)
	assert.Equal(t, int64(0), env.fx.Count(&models.LearningPath{}, ""))
}

func TestLearningPathDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.CreateUser("Owner", nil, time.Now())
	squad := env.fx.CreateSquad("Open", owner.ID, true)
	course := env.fx.CreateMaterial("Course", owner.ID, nil, 0, 1)

	path, err := env.paths.Create(squad.ID, Actor{UserID: owner.ID}, &dto.LearningPathRequest{
		Title:       "Track",
		MaterialIDs: []uuid.UUID{course.ID},
	})
	require.NoError(t, err)

	require.NoError(t, env.paths.Delete(squad.ID, path.ID, Actor{UserID: owner.ID}))
	_, err = env.paths.Get(squad.ID, path.ID, Actor{UserID: owner.ID})
	assert.ErrorIs(t, err, ErrLearningPathNotFound)
	assert.Equal(t, int64(0), env.fx.Count(&models.LearningPathItem{}, ""))
	assert.Equal(t, int64(1), env.fx.Count(&models.Material{}, ""))
}
