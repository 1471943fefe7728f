package creations

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/testutil"
)

type creationsEnv struct {
	svc    *CreationService
	fx     *testutil.Fixtures
	author models.User
	viewer models.User
}

func newCreationsEnv(t *testing.T) *creationsEnv {
	t.Helper()
	db := testutil.SetupTestDB(t, New().Models()...)
	fx := testutil.NewFixtures(t, db)
	return &creationsEnv{
		svc:    NewCreationService(db, services.NewContentService()),
		fx:     fx,
		author: fx.CreateUser("Author", nil, time.Now()),
		viewer: fx.CreateUser("Viewer", nil, time.Now()),
	}
}

func (e *creationsEnv) create(t *testing.T, title string) *Creation {
	t.Helper()
	c, err := e.svc.Create(e.author.ID, &CreateCreationRequest{
		Title:       title,
		Description: "Built over the weekend, repo at https://git.example/app",
		Link:        "https://git.example/app",
	})
	require.NoError(t, err)
	return c
}

func (e *creationsEnv) comment(t *testing.T, creationID uuid.UUID, userID uuid.UUID, parentID *uuid.UUID, text string) *CreationComment {
	t.Helper()
	c, err := e.svc.AddComment(creationID, userID, parentID, &CommentRequest{Content: text})
	require.NoError(t, err)
	return c
}

func TestCreate(t *testing.T) {
	env := newCreationsEnv(t)

	c := env.create(t, "  <i>Study timer</i>  ")
	assert.Equal(t, "Study timer", c.Title)
	assert.Contains(t, c.Description, "https://git.example/app")
	assert.Equal(t, "Author", c.User.Name)
	assert.Zero(t, c.Likes)
	assert.False(t, c.LikedByMe)

	tests := []struct {
		name string
		req  CreateCreationRequest
	}{
		{"blank title", CreateCreationRequest{Title: "  ", Description: "ok"}},
		{"bad image url", CreateCreationRequest{Title: "App", Description: "ok", ImageURL: "not a url"}},
		{"markup only", CreateCreationRequest{Title: "<script></script>", Description: "ok"}},
		{"link in title", CreateCreationRequest{Title: "see www.spam.example", Description: "ok"}},
		{"banned word", CreateCreationRequest{Title: "App", Description: "this is a scam"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.svc.Create(env.author.ID, &req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
		})
	}
	assert.Equal(t, int64(1), env.fx.Count(&Creation{}, "1 = 1"))
}

func TestListAndGetDecorateForViewer(t *testing.T) {
	env := newCreationsEnv(t)
	first := env.create(t, "First")
	second := env.create(t, "Second")

	_, err := env.svc.ToggleLike(first.ID, env.viewer.ID)
	require.NoError(t, err)
	env.comment(t, first.ID, env.viewer.ID, nil, "Nice work")
	env.comment(t, first.ID, env.author.ID, nil, "Thanks")

	items, total, err := env.svc.List(env.viewer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID, "newest first")
	assert.Equal(t, first.ID, items[1].ID)
	assert.True(t, items[1].LikedByMe)
	assert.Equal(t, int64(2), items[1].CommentCount)
	assert.False(t, items[0].LikedByMe)
	assert.Zero(t, items[0].CommentCount)

	got, err := env.svc.Get(first.ID, env.author.ID)
	require.NoError(t, err)
	assert.False(t, got.LikedByMe, "liked flag is per viewer")
	assert.Equal(t, 1, got.Likes)

	_, err = env.svc.Get(uuid.New(), env.viewer.ID)
	assert.ErrorIs(t, err, ErrCreationNotFound)
}

func TestToggleLike(t *testing.T) {
	env := newCreationsEnv(t)
	c := env.create(t, "Flashcards")

	resp, err := env.svc.ToggleLike(c.ID, env.viewer.ID)
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, 1, resp.Likes)

	resp, err = env.svc.ToggleLike(c.ID, env.author.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Likes)

	resp, err = env.svc.ToggleLike(c.ID, env.viewer.ID)
	require.NoError(t, err)
	assert.False(t, resp.Liked)
	assert.Equal(t, 1, resp.Likes)

	_, err = env.svc.ToggleLike(uuid.New(), env.viewer.ID)
	assert.True(t, errors.Is(err, ErrCreationNotFound))
}

func TestLikeInsertIsIdempotent(t *testing.T) {
	env := newCreationsEnv(t)
	c := env.create(t, "Planner")
	cm := env.comment(t, c.ID, env.author.ID, nil, "Feedback welcome")
	db := env.fx.DB()

	for i, want := range []bool{true, false} {
		inserted, err := database.InsertOnce(db, &CreationLike{ID: uuid.New(), CreationID: c.ID, UserID: env.viewer.ID})
		require.NoError(t, err, i)
		assert.Equal(t, want, inserted, i)

		inserted, err = database.InsertOnce(db, &CommentLike{ID: uuid.New(), CommentID: cm.ID, UserID: env.viewer.ID})
		require.NoError(t, err, i)
		assert.Equal(t, want, inserted, i)
	}
	assert.Equal(t, int64(1), env.fx.Count(&CreationLike{}, "creation_id = ?", c.ID))
	assert.Equal(t, int64(1), env.fx.Count(&CommentLike{}, "comment_id = ?", cm.ID))
}

func TestCommentsThreadReplies(t *testing.T) {
	env := newCreationsEnv(t)
	c := env.create(t, "Quiz bot")

	root := env.comment(t, c.ID, env.viewer.ID, nil, "How did you build it?")
	reply := env.comment(t, c.ID, env.author.ID, &root.ID, "With a weekend and coffee")
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	nested := env.comment(t, c.ID, env.viewer.ID, &reply.ID, "Respect")
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, root.ID, *nested.ParentID, "replies to replies attach to the root")

	second := env.comment(t, c.ID, env.author.ID, nil, "Feedback welcome")

	roots, err := env.svc.Comments(c.ID, env.viewer.ID)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, root.ID, roots[0].ID)
	assert.Equal(t, second.ID, roots[1].ID)
	require.Len(t, roots[0].Replies, 2)
	assert.Equal(t, reply.ID, roots[0].Replies[0].ID)
	assert.Equal(t, nested.ID, roots[0].Replies[1].ID)
	assert.Equal(t, "Author", roots[0].Replies[0].User.Name)

	t.Run("parent from another creation", func(t *testing.T) {
		other := env.create(t, "Other")
		_, err := env.svc.AddComment(other.ID, env.viewer.ID, &root.ID, &CommentRequest{Content: "hi"})
		assert.ErrorIs(t, err, ErrCommentNotFound)
	})

	t.Run("contact info rejected", func(t *testing.T) {
		_, err := env.svc.AddComment(c.ID, env.viewer.ID, nil, &CommentRequest{Content: "mail me at a@b.com"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	})

	t.Run("unknown creation", func(t *testing.T) {
		_, err := env.svc.Comments(uuid.New(), env.viewer.ID)
		assert.ErrorIs(t, err, ErrCreationNotFound)
	})
}

func TestToggleCommentLike(t *testing.T) {
	env := newCreationsEnv(t)
	c := env.create(t, "Notes app")
	cm := env.comment(t, c.ID, env.viewer.ID, nil, "Clean UI")

	resp, err := env.svc.ToggleCommentLike(c.ID, cm.ID, env.author.ID)
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, 1, resp.Likes)

	roots, err := env.svc.Comments(c.ID, env.author.ID)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.True(t, roots[0].LikedByMe)
	assert.Equal(t, 1, roots[0].Likes)

	resp, err = env.svc.ToggleCommentLike(c.ID, cm.ID, env.author.ID)
	require.NoError(t, err)
	assert.False(t, resp.Liked)
	assert.Zero(t, resp.Likes)

	other := env.create(t, "Other")
	_, err = env.svc.ToggleCommentLike(other.ID, cm.ID, env.author.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestDelete(t *testing.T) {
	env := newCreationsEnv(t)
	admin := env.fx.CreateAdmin("Admin")

	c := env.create(t, "Pomodoro")
	cm := env.comment(t, c.ID, env.viewer.ID, nil, "Useful")
	env.comment(t, c.ID, env.author.ID, &cm.ID, "Thanks")
	_, err := env.svc.ToggleLike(c.ID, env.viewer.ID)
	require.NoError(t, err)
	_, err = env.svc.ToggleCommentLike(c.ID, cm.ID, env.author.ID)
	require.NoError(t, err)

	err = env.svc.Delete(c.ID, services.Actor{UserID: env.viewer.ID})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, env.svc.Delete(c.ID, services.Actor{UserID: env.author.ID}))
	assert.Zero(t, env.fx.Count(&Creation{}, "id = ?", c.ID))
	assert.Zero(t, env.fx.Count(&CreationComment{}, "creation_id = ?", c.ID))
	assert.Zero(t, env.fx.Count(&CreationLike{}, "creation_id = ?", c.ID))
	assert.Zero(t, env.fx.Count(&CommentLike{}, "comment_id = ?", cm.ID))

	other := env.create(t, "Moderated")
	require.NoError(t, env.svc.Delete(other.ID, services.Actor{UserID: admin.ID, Admin: true}))

	err = env.svc.Delete(other.ID, services.Actor{UserID: env.author.ID})
	assert.ErrorIs(t, err, ErrCreationNotFound)
}
