package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/testutil"
)

// memCache is an in-process cache.Cache used to check invalidation.
type memCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	versions map[string]int64
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}, versions: map[string]int64{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *memCache) Version(_ context.Context, ns string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[ns]
}

func (m *memCache) Bump(_ context.Context, ns string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[ns]++
}

func (m *memCache) Close() error { return nil }

func (m *memCache) keys(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// Wednesday of the week starting Monday 2026-10-12.
var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db         *gorm.DB
	fx         *testutil.Fixtures
	cache      *memCache
	points     *PointsService
	squads     *SquadService
	catalog    *CatalogService
	materials  *MaterialService
	paths      *LearningPathService
	discussion *DiscussionService
	content    *ContentService
	reports    *ReportService
	users      *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := newMemCache()
	env := &testEnv{
		db:      db,
		fx:      testutil.NewFixtures(t, db),
		cache:   c,
		points:  NewPointsService(db, c, time.Minute, time.UTC).WithClock(func() time.Time { return testNow }),
		squads:  NewSquadService(db),
		catalog: NewCatalogService(db),
		content: NewContentService(),
		reports: NewReportService(db),
	}
	env.users = NewUserService(db, env.points)
	env.materials = NewMaterialService(db, env.squads, env.catalog, env.points)
	env.paths = NewLearningPathService(db, env.squads)
	env.discussion = NewDiscussionService(db, env.materials, env.content)
	return env
}
