package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"projecttracker/internal/model"
	"projecttracker/internal/query"
)

func seedProject(t *testing.T, s *MemoryStore, name string, status model.ProjectStatus) *model.Project {
	t.Helper()
	p := &model.Project{Name: name, Status: status, Priority: model.PriorityMedium, Active: true}
	if err := s.Projects().Insert(context.Background(), p); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	return p
}

func TestMemoryStore_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := seedProject(t, s, "Apollo", model.ProjectPlanning)
	if p.ID != 1 || p.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps to be assigned, got %+v", p)
	}

	p.Active = false
	if err := s.Projects().Update(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Projects().FindActiveByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive project, got %v", err)
	}

	page, err := s.Projects().List(ctx, query.ProjectCriteria{}, query.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalElements != 0 {
		t.Fatalf("inactive projects must not be listed, got %d", page.TotalElements)
	}
}

func TestMemoryStore_UpdateStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	clock := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	p := seedProject(t, s, "Apollo", model.ProjectPlanning)
	clock = clock.Add(time.Hour)
	p.Name = "Apollo II"
	if err := s.Projects().Update(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !p.UpdatedAt.Equal(clock) || p.CreatedAt.Equal(clock) {
		t.Fatalf("expected only updated_at to move, got created %v updated %v", p.CreatedAt, p.UpdatedAt)
	}
}

func TestMemoryStore_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx Store) error {
		p := &model.Project{Name: "doomed", Active: true}
		if err := tx.Projects().Insert(ctx, p); err != nil {
			return err
		}
		// nested units of work join the outer one
		return tx.WithinTx(ctx, func(Store) error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	counts, _ := s.Projects().CountByStatus(ctx)
	if len(counts) != 0 {
		t.Fatalf("expected rollback, got %v", counts)
	}
	p := seedProject(t, s, "kept", model.ProjectPlanning)
	if p.ID != 1 {
		t.Fatalf("expected id sequence to be rolled back, got %d", p.ID)
	}
}

func TestMemoryStore_TaskQueries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProject(t, s, "Apollo", model.ProjectInProgress)
	today := model.NewDate(2024, time.June, 15)

	insert := func(title string, status model.TaskStatus, prio model.Priority, due *model.Date) {
		task := &model.Task{ProjectID: p.ID, Title: title, Status: status, Priority: prio, ExpectedEndDate: due, Active: true}
		if err := s.Tasks().Insert(ctx, task); err != nil {
			t.Fatalf("insert task: %v", err)
		}
	}
	insert("late", model.TaskOpen, model.PriorityLow, today.AddDays(-1).Ptr())
	insert("late but done", model.TaskCompleted, model.PriorityHigh, today.AddDays(-1).Ptr())
	insert("soon", model.TaskInProgress, model.PriorityCritical, today.AddDays(3).Ptr())
	insert("later", model.TaskOpen, model.PriorityHigh, today.AddDays(30).Ptr())
	insert("undated", model.TaskOpen, model.PriorityMedium, nil)

	overdue, _ := s.Tasks().FindOverdue(ctx, today)
	if len(overdue) != 1 || overdue[0].Title != "late" {
		t.Fatalf("unexpected overdue tasks %+v", overdue)
	}

	due, _ := s.Tasks().FindDueBetween(ctx, today, today.AddDays(7))
	if len(due) != 1 || due[0].Title != "soon" {
		t.Fatalf("unexpected due tasks %+v", due)
	}

	high, _ := s.Tasks().FindHighPriorityOpen(ctx)
	if len(high) != 2 || high[0].Title != "soon" || high[1].Title != "later" {
		t.Fatalf("unexpected high priority tasks %+v", high)
	}

	byProject, _ := s.Tasks().FindByProject(ctx, p.ID)
	var titles []string
	for _, task := range byProject {
		titles = append(titles, task.Title)
	}
	want := []string{"soon", "late but done", "later", "undated", "late"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, titles)
		}
	}

	if err := s.Tasks().Insert(ctx, &model.Task{ProjectID: 99, Title: "orphan", Active: true}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown project, got %v", err)
	}
}
