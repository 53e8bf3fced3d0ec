// Package repository persists projects and tasks. Every finder returns
// active rows only; Update is the single place updated_at is stamped.
package repository

import (
	"context"
	"errors"

	"projecttracker/internal/model"
	"projecttracker/internal/query"
)

// ErrNotFound is returned when no active row matches.
var ErrNotFound = errors.New("record not found")

type ProjectRepository interface {
	FindActiveByID(ctx context.Context, id int64) (*model.Project, error)
	// Insert assigns ID and audit timestamps on p.
	Insert(ctx context.Context, p *model.Project) error
	// Update writes every mutable column of p and refreshes p.UpdatedAt.
	Update(ctx context.Context, p *model.Project) error
	List(ctx context.Context, c query.ProjectCriteria, page query.PageRequest) (query.Page[model.Project], error)
	// FindOverdue returns projects due before today that are not COMPLETED.
	FindOverdue(ctx context.Context, today model.Date) ([]model.Project, error)
	FindByOwner(ctx context.Context, owner string) ([]model.Project, error)
	CountByStatus(ctx context.Context) (map[model.ProjectStatus]int64, error)
}

type TaskRepository interface {
	FindActiveByID(ctx context.Context, id int64) (*model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	List(ctx context.Context, c query.TaskCriteria, page query.PageRequest) (query.Page[model.Task], error)
	// FindByProject orders by priority (highest first), then expected end date.
	FindByProject(ctx context.Context, projectID int64) ([]model.Task, error)
	FindByProjects(ctx context.Context, projectIDs []int64) ([]model.Task, error)
	// FindOverdue returns open tasks due before today.
	FindOverdue(ctx context.Context, today model.Date) ([]model.Task, error)
	// FindDueBetween returns open tasks due in [from, to].
	FindDueBetween(ctx context.Context, from, to model.Date) ([]model.Task, error)
	// FindHighPriorityOpen returns open HIGH and CRITICAL tasks.
	FindHighPriorityOpen(ctx context.Context) ([]model.Task, error)
	FindByOwner(ctx context.Context, owner string) ([]model.Task, error)
}

// Store groups the repositories behind one unit of work.
type Store interface {
	Projects() ProjectRepository
	Tasks() TaskRepository
	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

// priorityOrder ranks tasks the way FindByProject returns them.
func priorityOrder(a, b model.Task) bool {
	if a.Priority.Level() != b.Priority.Level() {
		return a.Priority.Level() > b.Priority.Level()
	}
	switch {
	case a.ExpectedEndDate == nil && b.ExpectedEndDate == nil:
	case a.ExpectedEndDate == nil:
		return false
	case b.ExpectedEndDate == nil:
		return true
	case !a.ExpectedEndDate.Equal(*b.ExpectedEndDate):
		return a.ExpectedEndDate.Before(*b.ExpectedEndDate)
	}
	return a.ID < b.ID
}
