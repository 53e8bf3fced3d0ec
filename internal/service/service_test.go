package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"projecttracker/internal/cache"
	"projecttracker/internal/events"
	"projecttracker/internal/model"
	"projecttracker/internal/repository"
)

var fixedNow = time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

type fixture struct {
	store    *repository.MemoryStore
	projects *ProjectService
	tasks    *TaskService
	pub      *recordingPublisher
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pub := &recordingPublisher{}
	deps := Deps{
		Store:  repository.NewMemoryStore(),
		Cache:  cache.NewStatsCache(rdb, time.Minute, zap.NewNop()),
		Events: events.NewEmitter(pub, zap.NewNop()),
		Logger: zap.NewNop(),
		Now:    func() time.Time { return fixedNow },
	}
	return &fixture{
		store:    deps.Store.(*repository.MemoryStore),
		projects: NewProjectService(deps),
		tasks:    NewTaskService(deps),
		pub:      pub,
		redis:    mr,
	}
}

func date(y int, m time.Month, d int) *model.Date {
	return model.NewDate(y, m, d).Ptr()
}

func (f *fixture) createProject(t *testing.T, in ProjectInput) *ProjectView {
	t.Helper()
	if in.Name == "" {
		in.Name = "Apollo"
	}
	v, err := f.projects.Create(context.Background(), in, "alice")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return v
}

func (f *fixture) createTask(t *testing.T, in TaskInput) *TaskView {
	t.Helper()
	if in.Title == "" {
		in.Title = "Write code"
	}
	v, err := f.tasks.Create(context.Background(), in, "alice")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return v
}

func ptr[T any](v T) *T { return &v }
