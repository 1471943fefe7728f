package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/models"
)

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"monday midnight", monday},
		{"wednesday", testNow},
		{"sunday night", time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, monday.Equal(WeekStart(tt.at, time.UTC)))
		})
	}
}

func TestWeekStartUsesLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	// Sunday 20:00 UTC is already Monday 03:00 in UTC+7.
	at := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	got := WeekStart(at, wib)
	assert.Equal(t, time.Monday, got.Weekday())
	assert.True(t, got.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, wib)))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" All-Time ")
	require.NoError(t, err)
	assert.Equal(t, CategoryAllTime, c)

	_, err = ParseCategory("monthly")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestRankStandingsTieBreak(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	entries := []Standing{
		{ID: uuid.New(), Name: "c", Points: 10, since: newer},
		{ID: uuid.New(), Name: "a", Points: 50, since: newer},
		{ID: uuid.New(), Name: "b", Points: 10, since: older},
	}

	RankStandings(entries)

	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestLeaderboardWeeklyAndAllTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u1 := env.fx.CreateUser("Ayu", nil, testNow.AddDate(0, -2, 0))
	u2 := env.fx.CreateUser("Budi", nil, testNow.AddDate(0, -1, 0))
	env.fx.CreateUser("Citra", nil, testNow.AddDate(0, 0, -3))

	monday := WeekStart(testNow, time.UTC)
	env.fx.CreatePoint(u1.ID, 100, monday.Add(2*time.Hour))
	env.fx.CreatePoint(u1.ID, 50, testNow.Add(-time.Hour))
	env.fx.CreatePoint(u2.ID, 30, monday.Add(time.Minute))
	env.fx.CreatePoint(u2.ID, 500, monday.Add(-time.Hour))

	weekly, err := env.points.Leaderboard(ctx, CategoryWeekly, "")
	require.NoError(t, err)
	require.Len(t, weekly.Entries, 3)
	assert.Equal(t, u1.ID, weekly.Entries[0].ID)
	assert.Equal(t, int64(150), weekly.Entries[0].Points)
	assert.Equal(t, u2.ID, weekly.Entries[1].ID)
	assert.Equal(t, int64(30), weekly.Entries[1].Points)
	assert.Equal(t, int64(0), weekly.Entries[2].Points)
	require.NotNil(t, weekly.WindowStart)
	assert.True(t, monday.Equal(*weekly.WindowStart))

	allTime, err := env.points.Leaderboard(ctx, CategoryAllTime, "")
	require.NoError(t, err)
	assert.Equal(t, u2.ID, allTime.Entries[0].ID)
	assert.Equal(t, int64(530), allTime.Entries[0].Points)

	// weekly never exceeds all-time for anyone
	totals := map[uuid.UUID]int64{}
	for _, e := range allTime.Entries {
		totals[e.ID] = e.Points
	}
	for _, e := range weekly.Entries {
		assert.LessOrEqual(t, e.Points, totals[e.ID])
	}

	for i := 1; i < len(allTime.Entries); i++ {
		assert.GreaterOrEqual(t, allTime.Entries[i-1].Points, allTime.Entries[i].Points)
	}
}

func TestLeaderboardPodiumSplit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		u := env.fx.CreateUser("user", nil, testNow.AddDate(0, 0, -i-1))
		env.fx.CreatePoint(u.ID, 10*(i+1), testNow.AddDate(0, -1, 0))
	}

	board, err := env.points.Leaderboard(context.Background(), CategoryAllTime, "")
	require.NoError(t, err)
	assert.Len(t, board.Entries, 12)
	require.Len(t, board.Podium, 3)
	require.Len(t, board.RunnersUp, 7)
	assert.Equal(t, 1, board.Podium[0].Rank)
	assert.Equal(t, int64(120), board.Podium[0].Points)
	assert.Equal(t, 4, board.RunnersUp[0].Rank)
	assert.Equal(t, 10, board.RunnersUp[6].Rank)
}

func TestLeaderboardRegional(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	jkt := env.fx.CreateSchool("SMA 1 Jakarta", "Jakarta", "DKI Jakarta")
	bdg := env.fx.CreateSchool("SMA 3 Bandung", "Bandung", "Jawa Barat")
	a := env.fx.CreateUser("A", &jkt, testNow.AddDate(-1, 0, 0))
	b := env.fx.CreateUser("B", &bdg, testNow.AddDate(-1, 0, 0))
	env.fx.CreateUser("C", nil, testNow.AddDate(-1, 0, 0))
	env.fx.CreatePoint(a.ID, 40, testNow.AddDate(0, -1, 0))
	env.fx.CreatePoint(b.ID, 90, testNow.AddDate(0, -1, 0))

	board, err := env.points.Leaderboard(ctx, CategoryAllTime, "jawa barat")
	require.NoError(t, err)
	assert.Equal(t, ScopeRegional, board.Scope)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, b.ID, board.Entries[0].ID)
	assert.Equal(t, "SMA 3 Bandung", board.Entries[0].SchoolName)

	byCity, err := env.points.Leaderboard(ctx, CategoryAllTime, "JAKARTA")
	require.NoError(t, err)
	require.Len(t, byCity.Entries, 1)
	assert.Equal(t, a.ID, byCity.Entries[0].ID)

	unknown, err := env.points.Leaderboard(ctx, CategoryAllTime, "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, unknown.Entries)
	assert.NotNil(t, unknown.Podium)

	// weekly boards ignore the region
	weekly, err := env.points.Leaderboard(ctx, CategoryWeekly, "jawa barat")
	require.NoError(t, err)
	assert.Equal(t, ScopeNational, weekly.Scope)
	assert.Len(t, weekly.Entries, 3)
}

func TestLeaderboardSchools(t *testing.T) {
	env := newTestEnv(t)

	s1 := env.fx.CreateSchool("Alpha High", "Jakarta", "DKI Jakarta")
	s2 := env.fx.CreateSchool("Beta High", "Bandung", "Jawa Barat")
	env.fx.CreateSchool("Gamma High", "Bandung", "Jawa Barat")
	for _, pts := range []int{20, 30} {
		u := env.fx.CreateUser("s1", &s1, testNow.AddDate(-1, 0, 0))
		env.fx.CreatePoint(u.ID, pts, testNow.AddDate(0, -1, 0))
	}
	u := env.fx.CreateUser("s2", &s2, testNow.AddDate(-1, 0, 0))
	env.fx.CreatePoint(u.ID, 70, testNow.AddDate(0, -1, 0))

	board, err := env.points.Leaderboard(context.Background(), CategorySchool, "")
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, "Beta High", board.Entries[0].Name)
	assert.Equal(t, int64(70), board.Entries[0].Points)
	assert.Equal(t, "Alpha High", board.Entries[1].Name)
	assert.Equal(t, int64(50), board.Entries[1].Points)
	assert.Equal(t, int64(2), board.Entries[1].Members)
	assert.Equal(t, int64(0), board.Entries[2].Points)
}

func TestLeaderboardCacheInvalidatedOnAward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.fx.CreateUser("A", nil, testNow.AddDate(-1, 0, 0))

	first, err := env.points.Leaderboard(ctx, CategoryAllTime, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Entries[0].Points)
	assert.Equal(t, 1, env.cache.keys("leaderboard:v0:"))

	_, err = env.points.AwardBonus(ctx, u.ID, 25)
	require.NoError(t, err)

	second, err := env.points.Leaderboard(ctx, CategoryAllTime, "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), second.Entries[0].Points)
	assert.Equal(t, 1, env.cache.keys("leaderboard:v1:"))
}

func TestAwardUpdatesStreakAndRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.fx.CreateUser("A", nil, testNow.AddDate(-1, 0, 0))

	_, err := env.points.AwardBonus(ctx, u.ID, 60)
	require.NoError(t, err)

	env.points.WithClock(func() time.Time { return testNow.AddDate(0, 0, 1) })
	_, err = env.points.AwardBonus(ctx, u.ID, 60)
	require.NoError(t, err)

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", u.ID).Error)
	assert.Equal(t, 2, user.StudyStreak)
	assert.Equal(t, 2, user.LongestStreak)
	assert.Equal(t, "Apprentice", user.RankLabel)

	_, err = env.points.AwardBonus(ctx, u.ID, 0)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = env.points.AwardBonus(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserSummary(t *testing.T) {
	env := newTestEnv(t)
	a := env.fx.CreateUser("A", nil, testNow.AddDate(-1, 0, 0))
	b := env.fx.CreateUser("B", nil, testNow.AddDate(-1, 0, 0))
	env.fx.CreatePoint(a.ID, 10, testNow.Add(-time.Hour))
	env.fx.CreatePoint(a.ID, 200, testNow.AddDate(0, -1, 0))
	env.fx.CreatePoint(b.ID, 500, testNow.AddDate(0, -1, 0))

	summary, err := env.points.UserSummary(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(210), summary.TotalPoints)
	assert.Equal(t, int64(10), summary.WeeklyPoints)
	assert.Equal(t, 2, summary.NationalRank)
	assert.Len(t, summary.History, 2)

	_, err = env.points.UserSummary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserSummaryRanksFromDatabase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.fx.CreateUser("A", nil, testNow.AddDate(-1, 0, 0))
	env.fx.CreatePoint(a.ID, 100, testNow.AddDate(0, -1, 0))

	board, err := env.points.Leaderboard(ctx, CategoryAllTime, "")
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)

	// fixtures write straight to the database, so the cached board is stale
	b := env.fx.CreateUser("B", nil, testNow.AddDate(0, -1, 0))
	env.fx.CreatePoint(b.ID, 5, testNow.Add(-time.Hour))

	summary, err := env.points.UserSummary(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NationalRank)

	summary, err = env.points.UserSummary(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NationalRank)
}

func TestNextStreak(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2026, 10, d, 15, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name        string
		current     int
		longest     int
		last        *time.Time
		at          time.Time
		wantCurrent int
		wantLongest int
	}{
		{"first activity", 0, 0, nil, *day(10), 1, 1},
		{"next day", 3, 5, day(9), *day(10), 4, 5},
		{"same day", 3, 5, day(10), *day(10), 3, 5},
		{"gap resets", 7, 7, day(5), *day(10), 1, 7},
		{"new record", 5, 5, day(9), *day(10), 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, longest := NextStreak(tt.current, tt.longest, tt.last, tt.at)
			assert.Equal(t, tt.wantCurrent, cur)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}

func TestRankLabelFor(t *testing.T) {
	assert.Equal(t, "Novice", RankLabelFor(0))
	assert.Equal(t, "Novice", RankLabelFor(99))
	assert.Equal(t, "Apprentice", RankLabelFor(100))
	assert.Equal(t, "Scholar", RankLabelFor(500))
	assert.Equal(t, "Master", RankLabelFor(1500))
	assert.Equal(t, "Legend", RankLabelFor(5000))
}
