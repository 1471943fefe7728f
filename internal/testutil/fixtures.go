package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/models"
)

// Fixtures creates test rows directly, bypassing services.
type Fixtures struct {
	db *gorm.DB
	t  *testing.T
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *gorm.DB {
	return f.db
}

func (f *Fixtures) create(v interface{}) {
	f.t.Helper()
	if err := f.db.Omit("User", "School", "Members", "Stages").Create(v).Error; err != nil {
		f.t.Fatalf("create fixture %T: %v", v, err)
	}
}

func (f *Fixtures) CreateSchool(name, city, province string) models.School {
	f.t.Helper()
	school := models.School{ID: uuid.New(), Name: name, City: city, Province: province}
	f.create(&school)
	return school
}

// CreateUser creates a regular user. createdAt orders leaderboard ties.
func (f *Fixtures) CreateUser(name string, school *models.School, createdAt time.Time) models.User {
	f.t.Helper()
	user := models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     uuid.NewString()[:8] + "@test.com",
		Password:  "x",
		Role:      models.RoleUser,
		RankLabel: "Novice",
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if school != nil {
		id := school.ID
		user.SchoolID = &id
	}
	f.create(&user)
	return user
}

func (f *Fixtures) CreateAdmin(name string) models.User {
	f.t.Helper()
	user := f.CreateUser(name, nil, time.Now())
	if err := f.db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
		f.t.Fatalf("promote admin: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreatePoint appends a ledger row at a fixed time.
func (f *Fixtures) CreatePoint(userID uuid.UUID, value int, at time.Time) models.Point {
	f.t.Helper()
	point := models.Point{
		ID:        uuid.New(),
		UserID:    userID,
		Value:     value,
		Source:    models.PointSourceBonus,
		CreatedAt: at.UTC(),
	}
	f.create(&point)
	return point
}

// CreateSquad creates a squad with owner as its admin.
func (f *Fixtures) CreateSquad(name string, owner uuid.UUID, public bool) models.Squad {
	f.t.Helper()
	squad := models.Squad{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " squad",
		IsPublic:    public,
		CreatedBy:   owner,
	}
	f.create(&squad)
	f.AddMember(squad.ID, owner, models.SquadRoleAdmin)
	return squad
}

func (f *Fixtures) AddMember(squadID, userID uuid.UUID, role string) models.SquadMember {
	f.t.Helper()
	member := models.SquadMember{
		ID:       uuid.New(),
		SquadID:  squadID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	f.create(&member)
	return member
}

// CreateMaterial creates a material with the given number of single-content
// stages. A nil squadID makes it a course material.
func (f *Fixtures) CreateMaterial(title string, createdBy uuid.UUID, squadID *uuid.UUID, xp, stages int) models.Material {
	f.t.Helper()
	material := models.Material{
		ID:        uuid.New(),
		Title:     title,
		XPReward:  xp,
		Type:      models.MaterialTypeCourse,
		CreatedBy: createdBy,
	}
	if squadID != nil {
		material.Type = models.MaterialTypeSquad
		material.SquadID = squadID
	}
	f.create(&material)

	for i := 0; i < stages; i++ {
		stage := models.Stage{ID: uuid.New(), MaterialID: material.ID, Title: "Stage", Position: i}
		if err := f.db.Omit("Contents").Create(&stage).Error; err != nil {
			f.t.Fatalf("create stage: %v", err)
		}
		content := models.Content{ID: uuid.New(), StageID: stage.ID, Type: models.ContentTypeText, Content: "body"}
		f.create(&content)
	}
	return material
}

func (f *Fixtures) Count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		f.t.Fatalf("count %T: %v", model, err)
	}
	return n
}
