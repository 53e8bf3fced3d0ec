package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"projecttracker/internal/model"
	"projecttracker/internal/query"
)

// MemoryStore keeps everything in process. It backs tests and local runs
// without a database; WithinTx restores a snapshot when fn fails.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	nextProjectID int64
	nextTaskID    int64
	projects      map[int64]model.Project
	tasks         map[int64]model.Task

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[int64]model.Project),
		tasks:    make(map[int64]model.Task),
		now:      time.Now,
	}
}

func (s *MemoryStore) Projects() ProjectRepository { return memoryProjects{s} }

func (s *MemoryStore) Tasks() TaskRepository { return memoryTasks{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	projects, tasks := maps.Clone(s.projects), maps.Clone(s.tasks)
	nextProject, nextTask := s.nextProjectID, s.nextTaskID
	s.mu.RUnlock()

	if err := fn(txMemoryStore{s}); err != nil {
		s.mu.Lock()
		s.projects, s.tasks = projects, tasks
		s.nextProjectID, s.nextTaskID = nextProject, nextTask
		s.mu.Unlock()
		return err
	}
	return nil
}

// txMemoryStore is handed to WithinTx callbacks; nested calls join the
// outer unit of work instead of locking txMu again.
type txMemoryStore struct{ *MemoryStore }

func (s txMemoryStore) WithinTx(_ context.Context, fn func(Store) error) error { return fn(s) }

type memoryProjects struct{ s *MemoryStore }

func (r memoryProjects) FindActiveByID(_ context.Context, id int64) (*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok || !p.Active {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memoryProjects) Insert(_ context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextProjectID++
	p.ID = r.s.nextProjectID
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.projects[p.ID] = *p
	return nil
}

func (r memoryProjects) Update(_ context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.projects[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt, p.CreatedBy = old.CreatedAt, old.CreatedBy
	p.UpdatedAt = r.s.now()
	r.s.projects[p.ID] = *p
	return nil
}

func (r memoryProjects) List(_ context.Context, c query.ProjectCriteria, page query.PageRequest) (query.Page[model.Project], error) {
	return query.Slice(r.filter(c.Matches), page), nil
}

func (r memoryProjects) FindOverdue(_ context.Context, today model.Date) ([]model.Project, error) {
	return r.filter(func(p model.Project) bool {
		return p.Active && p.ExpectedEndDate != nil && p.ExpectedEndDate.Before(today) &&
			p.Status != model.ProjectCompleted
	}), nil
}

func (r memoryProjects) FindByOwner(_ context.Context, owner string) ([]model.Project, error) {
	return r.filter(query.ProjectCriteria{Owner: &owner}.Matches), nil
}

func (r memoryProjects) CountByStatus(context.Context) (map[model.ProjectStatus]int64, error) {
	counts := make(map[model.ProjectStatus]int64)
	for _, p := range r.filter(func(p model.Project) bool { return p.Active }) {
		counts[p.Status]++
	}
	return counts, nil
}

func (r memoryProjects) filter(keep func(model.Project) bool) []model.Project {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.Project{}
	for _, p := range r.s.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b model.Project) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

type memoryTasks struct{ s *MemoryStore }

func (r memoryTasks) FindActiveByID(_ context.Context, id int64) (*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok || !t.Active {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r memoryTasks) Insert(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[t.ProjectID]; !ok {
		return ErrNotFound
	}
	r.s.nextTaskID++
	t.ID = r.s.nextTaskID
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	r.s.tasks[t.ID] = *t
	return nil
}

func (r memoryTasks) Update(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt, t.CreatedBy = old.CreatedAt, old.CreatedBy
	t.UpdatedAt = r.s.now()
	r.s.tasks[t.ID] = *t
	return nil
}

func (r memoryTasks) List(_ context.Context, c query.TaskCriteria, page query.PageRequest) (query.Page[model.Task], error) {
	return query.Slice(r.filter(c.Matches), page), nil
}

func (r memoryTasks) FindByProject(_ context.Context, projectID int64) ([]model.Task, error) {
	return sortByPriority(r.filter(func(t model.Task) bool { return t.Active && t.ProjectID == projectID })), nil
}

func (r memoryTasks) FindByProjects(_ context.Context, projectIDs []int64) ([]model.Task, error) {
	return r.filter(func(t model.Task) bool {
		return t.Active && slices.Contains(projectIDs, t.ProjectID)
	}), nil
}

func (r memoryTasks) FindOverdue(_ context.Context, today model.Date) ([]model.Task, error) {
	return r.filter(func(t model.Task) bool {
		return t.Active && !t.Status.Closed() && t.ExpectedEndDate != nil && t.ExpectedEndDate.Before(today)
	}), nil
}

func (r memoryTasks) FindDueBetween(_ context.Context, from, to model.Date) ([]model.Task, error) {
	return r.filter(func(t model.Task) bool {
		return t.Active && !t.Status.Closed() && t.ExpectedEndDate != nil &&
			!t.ExpectedEndDate.Before(from) && !t.ExpectedEndDate.After(to)
	}), nil
}

func (r memoryTasks) FindHighPriorityOpen(context.Context) ([]model.Task, error) {
	return sortByPriority(r.filter(func(t model.Task) bool {
		return t.Active && !t.Status.Closed() && t.Priority.IsHigh()
	})), nil
}

func (r memoryTasks) FindByOwner(_ context.Context, owner string) ([]model.Task, error) {
	return r.filter(query.TaskCriteria{Owner: &owner}.Matches), nil
}

func (r memoryTasks) filter(keep func(model.Task) bool) []model.Task {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.Task{}
	for _, t := range r.s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b model.Task) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func sortByPriority(tasks []model.Task) []model.Task {
	slices.SortFunc(tasks, func(a, b model.Task) int {
		switch {
		case priorityOrder(a, b):
			return -1
		case priorityOrder(b, a):
			return 1
		}
		return 0
	})
	return tasks
}
