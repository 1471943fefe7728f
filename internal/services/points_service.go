package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/cache"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/models"
)

type Category string

const (
	CategoryWeekly  Category = "weekly"
	CategoryAllTime Category = "all-time"
	CategorySchool  Category = "school"

	ScopeNational = "national"
	ScopeRegional = "regional"

	podiumSize = 3
	topSize    = 10

	leaderboardNamespace = "leaderboard"
)

var (
	ErrInvalidCategory = apperr.Invalid("category must be one of: weekly, all-time, school")
	ErrInvalidPoints   = apperr.Invalid("points value must be positive")
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryWeekly, CategoryAllTime, CategorySchool:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// Standing is one ranked row of a user or school leaderboard.
type Standing struct {
	Rank       int        `json:"rank"`
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	SchoolID   *uuid.UUID `json:"school_id,omitempty"`
	SchoolName string     `json:"school_name,omitempty"`
	City       string     `json:"city,omitempty"`
	Province   string     `json:"province,omitempty"`
	Members    int64      `json:"members,omitempty"`
	Points     int64      `json:"points"`

	// tie-break keys; users order by account age, schools by name
	since   time.Time
	tieName string
}

type Leaderboard struct {
	Category    Category   `json:"category"`
	Scope       string     `json:"scope"`
	Region      string     `json:"region,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	Podium      []Standing `json:"podium"`
	RunnersUp   []Standing `json:"runners_up"`
	Entries     []Standing `json:"entries"`
}

type UserPoints struct {
	UserID       uuid.UUID      `json:"user_id"`
	TotalPoints  int64          `json:"total_points"`
	WeeklyPoints int64          `json:"weekly_points"`
	NationalRank int            `json:"national_rank"`
	StudyStreak  int            `json:"study_streak"`
	RankLabel    string         `json:"rank_label"`
	History      []models.Point `json:"history"`
}

type PointsService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	loc   *time.Location
	now   func() time.Time
}

func NewPointsService(db *gorm.DB, c cache.Cache, ttl time.Duration, loc *time.Location) *PointsService {
	if c == nil {
		c = cache.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PointsService{db: db, cache: c, ttl: ttl, loc: loc, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *PointsService) WithClock(now func() time.Time) *PointsService {
	s.now = now
	return s
}

// WeekStart returns Monday 00:00 of the week containing t, in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	y, m, d := local.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}

// RankStandings sorts by points descending with a deterministic tie-break and
// assigns ranks 1..n.
func RankStandings(entries []Standing) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.since.Equal(b.since) {
			return a.since.Before(b.since)
		}
		if a.tieName != b.tieName {
			return a.tieName < b.tieName
		}
		return a.ID.String() < b.ID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// Leaderboard ranks users (or schools) for a category. Weekly boards are
// always national; an unknown region yields an empty board.
func (s *PointsService) Leaderboard(ctx context.Context, category Category, region string) (*Leaderboard, error) {
	region = strings.TrimSpace(region)
	if category == CategoryWeekly {
		region = ""
	}

	board := &Leaderboard{Category: category, Scope: ScopeNational, Region: region}
	if region != "" {
		board.Scope = ScopeRegional
	}

	var since *time.Time
	if category == CategoryWeekly {
		ws := WeekStart(s.now(), s.loc)
		since = &ws
		board.WindowStart = &ws
	}

	key := s.cacheKey(ctx, category, region, since)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached Leaderboard
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	var (
		entries []Standing
		err     error
	)
	if category == CategorySchool {
		entries, err = s.schoolStandings(region)
	} else {
		entries, err = s.userStandings(since, region)
	}
	if err != nil {
		return nil, err
	}

	RankStandings(entries)
	board.Entries = entries
	board.Podium = entries[:min(podiumSize, len(entries))]
	board.RunnersUp = entries[min(podiumSize, len(entries)):min(topSize, len(entries))]

	if raw, err := json.Marshal(board); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return board, nil
}

func (s *PointsService) cacheKey(ctx context.Context, category Category, region string, since *time.Time) string {
	window := "all"
	if since != nil {
		window = since.UTC().Format("20060102")
	}
	return fmt.Sprintf("%s:v%d:%s:%s:%s",
		leaderboardNamespace,
		s.cache.Version(ctx, leaderboardNamespace),
		category,
		strings.ToLower(region),
		window,
	)
}

type userScoreRow struct {
	UserID     uuid.UUID
	Name       string
	AvatarURL  string
	CreatedAt  time.Time
	SchoolID   *uuid.UUID
	SchoolName *string
	Points     int64
}

func (s *PointsService) userStandings(since *time.Time, region string) ([]Standing, error) {
	q := s.db.Table("users").
		Select("users.id AS user_id, users.name AS name, users.avatar_url AS avatar_url, users.created_at AS created_at, " +
			"users.school_id AS school_id, schools.name AS school_name, COALESCE(SUM(points.value), 0) AS points").
		Joins("LEFT JOIN schools ON schools.id = users.school_id")
	if since != nil {
		q = q.Joins("LEFT JOIN points ON points.user_id = users.id AND points.created_at >= ?", since.UTC())
	} else {
		q = q.Joins("LEFT JOIN points ON points.user_id = users.id")
	}
	q = q.Where("users.deleted_at IS NULL")
	if region != "" {
		q = q.Scopes(database.InRegion(region))
	}

	var rows []userScoreRow
	if err := q.Group("users.id, users.name, users.avatar_url, users.created_at, users.school_id, schools.name").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate user points: %w", err)
	}

	entries := make([]Standing, 0, len(rows))
	for _, r := range rows {
		st := Standing{
			ID:        r.UserID,
			Name:      r.Name,
			AvatarURL: r.AvatarURL,
			SchoolID:  r.SchoolID,
			Points:    r.Points,
			since:     r.CreatedAt,
		}
		if r.SchoolName != nil {
			st.SchoolName = *r.SchoolName
		}
		entries = append(entries, st)
	}
	return entries, nil
}

type schoolScoreRow struct {
	SchoolID uuid.UUID
	Name     string
	City     string
	Province string
	Members  int64
	Points   int64
}

func (s *PointsService) schoolStandings(region string) ([]Standing, error) {
	q := s.db.Table("schools").
		Select("schools.id AS school_id, schools.name AS name, schools.city AS city, schools.province AS province, " +
			"COUNT(DISTINCT users.id) AS members, COALESCE(SUM(points.value), 0) AS points").
		Joins("LEFT JOIN users ON users.school_id = schools.id AND users.deleted_at IS NULL").
		Joins("LEFT JOIN points ON points.user_id = users.id")
	if region != "" {
		q = q.Scopes(database.InRegion(region))
	}

	var rows []schoolScoreRow
	if err := q.Group("schools.id, schools.name, schools.city, schools.province").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate school points: %w", err)
	}

	entries := make([]Standing, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Standing{
			ID:       r.SchoolID,
			Name:     r.Name,
			City:     r.City,
			Province: r.Province,
			Members:  r.Members,
			Points:   r.Points,
			tieName:  strings.ToLower(r.Name),
		})
	}
	return entries, nil
}

// UserSummary reports a user's totals and national all-time rank.
func (s *PointsService) UserSummary(ctx context.Context, userID uuid.UUID) (*UserPoints, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	total, err := s.sumFor(userID, nil)
	if err != nil {
		return nil, err
	}
	ws := WeekStart(s.now(), s.loc)
	weekly, err := s.sumFor(userID, &ws)
	if err != nil {
		return nil, err
	}

	rank, err := s.nationalRank(userID)
	if err != nil {
		return nil, err
	}

	var history []models.Point
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(20).Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load point history: %w", err)
	}

	return &UserPoints{
		UserID:       userID,
		TotalPoints:  total,
		WeeklyPoints: weekly,
		NationalRank: rank,
		StudyStreak:  user.StudyStreak,
		RankLabel:    user.RankLabel,
		History:      history,
	}, nil
}

// nationalRank ranks against the database rather than a cached board, so
// users who joined after the board was cached still get a rank.
func (s *PointsService) nationalRank(userID uuid.UUID) (int, error) {
	entries, err := s.userStandings(nil, "")
	if err != nil {
		return 0, err
	}
	RankStandings(entries)
	for _, e := range entries {
		if e.ID == userID {
			return e.Rank, nil
		}
	}
	return 0, nil
}

func (s *PointsService) sumFor(userID uuid.UUID, since *time.Time) (int64, error) {
	return sumPoints(s.db, userID, since)
}

func sumPoints(db *gorm.DB, userID uuid.UUID, since *time.Time) (int64, error) {
	q := db.Model(&models.Point{}).Select("COALESCE(SUM(value), 0)").Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", since.UTC())
	}
	var total int64
	if err := q.Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}

// AwardBonus grants points outside of material completion (admin action).
func (s *PointsService) AwardBonus(ctx context.Context, userID uuid.UUID, value int) (*models.Point, error) {
	var point *models.Point
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		point, err = s.Award(tx, userID, value, models.PointSourceBonus, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return point, nil
}

// Award appends a ledger row inside tx and refreshes the user's streak and
// rank label. Callers must Invalidate after the transaction commits.
func (s *PointsService) Award(tx *gorm.DB, userID uuid.UUID, value int, source string, materialID *uuid.UUID) (*models.Point, error) {
	if value <= 0 {
		return nil, ErrInvalidPoints
	}

	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	at := s.now().UTC()
	point := models.Point{
		ID:         uuid.New(),
		UserID:     userID,
		Value:      value,
		Source:     source,
		MaterialID: materialID,
		CreatedAt:  at,
	}
	if err := tx.Create(&point).Error; err != nil {
		return nil, fmt.Errorf("failed to record points: %w", err)
	}

	total, err := sumPoints(tx, userID, nil)
	if err != nil {
		return nil, err
	}
	streak, longest := NextStreak(user.StudyStreak, user.LongestStreak, user.LastStudyDate, at)
	if err := tx.Model(&user).Updates(map[string]interface{}{
		"study_streak":    streak,
		"longest_streak":  longest,
		"last_study_date": at,
		"rank_label":      RankLabelFor(total),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update user progress: %w", err)
	}
	return &point, nil
}

// Invalidate drops every cached leaderboard.
func (s *PointsService) Invalidate(ctx context.Context) {
	s.cache.Bump(ctx, leaderboardNamespace)
}

// NextStreak advances a daily study streak for activity at `at` (UTC days).
func NextStreak(current, longest int, last *time.Time, at time.Time) (int, int) {
	day := at.UTC().Truncate(24 * time.Hour)
	switch {
	case last == nil:
		current = 1
	default:
		lastDay := last.UTC().Truncate(24 * time.Hour)
		gap := int(day.Sub(lastDay).Hours() / 24)
		switch {
		case gap == 1:
			current++
		case gap > 1 || current == 0:
			current = 1
		}
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

var rankThresholds = []struct {
	min   int64
	label string
}{
	{5000, "Legend"},
	{1500, "Master"},
	{500, "Scholar"},
	{100, "Apprentice"},
	{0, "Novice"},
}

// RankLabelFor maps an all-time XP total to a rank label.
func RankLabelFor(total int64) string {
	for _, t := range rankThresholds {
		if total >= t.min {
			return t.label
		}
	}
	return "Novice"
}
