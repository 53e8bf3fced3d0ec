package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/events"
	"projecttracker/internal/lifecycle"
	"projecttracker/internal/model"
	"projecttracker/internal/query"
	"projecttracker/internal/repository"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/metrics"
)

type TaskService struct {
	deps Deps
}

func NewTaskService(deps Deps) *TaskService {
	return &TaskService{deps: deps.withDefaults()}
}

func (s *TaskService) Create(ctx context.Context, in TaskInput, actor string) (*TaskView, error) {
	log := logger.WithTrace(ctx, s.deps.Logger)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := lifecycle.CheckSchedule(in.StartDate, in.ExpectedEndDate); err != nil {
		return nil, err
	}

	actor = actorOrDefault(actor)
	today := s.deps.today()
	t := model.Task{
		Status:      model.TaskOpen,
		Priority:    model.PriorityMedium,
		WorkedHours: decimal.Zero,
		Active:      true,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}
	var project *model.Project
	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if project, err = activeProject(ctx, tx, in.ProjectID); err != nil {
			return err
		}
		if err := applyTaskInput(&t, in, today); err != nil {
			return err
		}
		lifecycle.NormalizeTaskProgress(&t, today)
		return tx.Tasks().Insert(ctx, &t)
	})
	if err != nil {
		return nil, storeErr(err, "task", 0)
	}

	log.Info("Task created",
		zap.Int64("task_id", t.ID),
		zap.Int64("project_id", t.ProjectID),
		zap.String("actor", actor),
	)
	view := newTaskView(t, project.Name, today)
	return &view, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*TaskView, error) {
	t, err := s.deps.Store.Tasks().FindActiveByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "task", id)
	}
	views, err := s.views(ctx, []model.Task{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TaskService) List(ctx context.Context, c query.TaskCriteria, page query.PageRequest) (query.Page[TaskView], error) {
	found, err := s.deps.Store.Tasks().List(ctx, c, page)
	if err != nil {
		return query.Page[TaskView]{}, storeListErr(err, "tasks")
	}
	views, err := s.views(ctx, found.Content)
	if err != nil {
		return query.Page[TaskView]{}, err
	}
	return query.WithContent(found, views), nil
}

// ListByProject returns the active tasks of an active project, highest
// priority first.
func (s *TaskService) ListByProject(ctx context.Context, projectID int64) ([]TaskView, error) {
	project, err := s.deps.Store.Projects().FindActiveByID(ctx, projectID)
	if err != nil {
		return nil, storeErr(err, "project", projectID)
	}
	tasks, err := s.deps.Store.Tasks().FindByProject(ctx, projectID)
	if err != nil {
		return nil, storeListErr(err, "project tasks")
	}
	today := s.deps.today()
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskView(t, project.Name, today))
	}
	return out, nil
}

// Update replaces the writable fields of a task and may move it to another
// active project. The stored percentage is re-aligned with the status.
func (s *TaskService) Update(ctx context.Context, id int64, in TaskInput, actor string) (*TaskView, error) {
	log := logger.WithTrace(ctx, s.deps.Logger)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := lifecycle.CheckSchedule(in.StartDate, in.ExpectedEndDate); err != nil {
		return nil, err
	}

	actor = actorOrDefault(actor)
	today := s.deps.today()
	var (
		t       *model.Task
		project *model.Project
		from    model.TaskStatus
	)
	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if t, err = tx.Tasks().FindActiveByID(ctx, id); err != nil {
			return err
		}
		if project, err = activeProject(ctx, tx, in.ProjectID); err != nil {
			return err
		}
		from = t.Status
		if err := applyTaskInput(t, in, today); err != nil {
			return err
		}
		lifecycle.NormalizeTaskProgress(t, today)
		t.UpdatedBy = actor
		return tx.Tasks().Update(ctx, t)
	})
	if err != nil {
		return nil, storeErr(err, "task", id)
	}
	s.afterStatusWrite(ctx, t, from, actor)

	log.Info("Task updated", zap.Int64("task_id", id), zap.String("actor", actor))
	view := newTaskView(*t, project.Name, today)
	return &view, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64, actor string) error {
	log := logger.WithTrace(ctx, s.deps.Logger)
	actor = actorOrDefault(actor)

	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		t, err := tx.Tasks().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		t.Active = false
		t.UpdatedBy = actor
		lifecycle.NormalizeTaskProgress(t, s.deps.today())
		return tx.Tasks().Update(ctx, t)
	})
	if err != nil {
		return storeErr(err, "task", id)
	}

	log.Info("Task deleted", zap.Int64("task_id", id), zap.String("actor", actor))
	return nil
}

// ChangeStatus sets a new status; any status may follow any other and the
// percentage is rewritten to match.
func (s *TaskService) ChangeStatus(ctx context.Context, id int64, status model.TaskStatus, actor string) (*TaskView, error) {
	return s.mutate(ctx, id, actor, func(t *model.Task, today model.Date) error {
		lifecycle.ApplyTaskStatus(t, status, today)
		return nil
	})
}

// UpdatePercentage records progress; 100 completes the task and a partial
// value starts an OPEN one.
func (s *TaskService) UpdatePercentage(ctx context.Context, id int64, pct int, actor string) (*TaskView, error) {
	if pct < 0 || pct > 100 {
		return nil, apperr.OutOfRange("completion percentage must be between 0 and 100, got %d", pct)
	}
	return s.mutate(ctx, id, actor, func(t *model.Task, today model.Date) error {
		return lifecycle.ApplyTaskPercentage(t, pct, today)
	})
}

// Overdue lists open tasks past their expected end date.
func (s *TaskService) Overdue(ctx context.Context) ([]TaskView, error) {
	found, err := s.deps.Store.Tasks().FindOverdue(ctx, s.deps.today())
	if err != nil {
		return nil, storeListErr(err, "overdue tasks")
	}
	return s.views(ctx, found)
}

// DueWithin lists open tasks due between today and today+days inclusive.
func (s *TaskService) DueWithin(ctx context.Context, days int) ([]TaskView, error) {
	if days < 0 {
		return nil, apperr.OutOfRange("days must not be negative, got %d", days)
	}
	today := s.deps.today()
	found, err := s.deps.Store.Tasks().FindDueBetween(ctx, today, today.AddDays(days))
	if err != nil {
		return nil, storeListErr(err, "tasks due soon")
	}
	return s.views(ctx, found)
}

// HighPriority lists open HIGH and CRITICAL tasks.
func (s *TaskService) HighPriority(ctx context.Context) ([]TaskView, error) {
	found, err := s.deps.Store.Tasks().FindHighPriorityOpen(ctx)
	if err != nil {
		return nil, storeListErr(err, "high priority tasks")
	}
	return s.views(ctx, found)
}

func (s *TaskService) ByOwner(ctx context.Context, owner string) ([]TaskView, error) {
	found, err := s.deps.Store.Tasks().FindByOwner(ctx, owner)
	if err != nil {
		return nil, storeListErr(err, "tasks by owner")
	}
	return s.views(ctx, found)
}

// mutate runs one load-modify-normalize-save cycle on a task.
func (s *TaskService) mutate(ctx context.Context, id int64, actor string, fn func(*model.Task, model.Date) error) (*TaskView, error) {
	log := logger.WithTrace(ctx, s.deps.Logger)
	actor = actorOrDefault(actor)
	today := s.deps.today()

	var (
		t    *model.Task
		from model.TaskStatus
	)
	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if t, err = tx.Tasks().FindActiveByID(ctx, id); err != nil {
			return err
		}
		from = t.Status
		if err := fn(t, today); err != nil {
			return err
		}
		lifecycle.NormalizeTaskProgress(t, today)
		t.UpdatedBy = actor
		return tx.Tasks().Update(ctx, t)
	})
	if err != nil {
		return nil, storeErr(err, "task", id)
	}
	s.afterStatusWrite(ctx, t, from, actor)

	log.Info("Task progress changed",
		zap.Int64("task_id", id),
		zap.String("status", string(t.Status)),
		zap.Int("completion_percentage", t.CompletionPercentage),
	)
	views, err := s.views(ctx, []model.Task{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TaskService) afterStatusWrite(ctx context.Context, t *model.Task, from model.TaskStatus, actor string) {
	if t.Status == from {
		return
	}
	metrics.IncrementStatusTransition("task", string(from), string(t.Status))
	s.deps.Events.StatusChanged(ctx, events.TaskStatusChanged, events.StatusChangedPayload{
		ID:         t.ID,
		ProjectID:  t.ProjectID,
		From:       string(from),
		To:         string(t.Status),
		Actor:      actor,
		OccurredAt: s.deps.Now(),
	})
}

// views attaches project names. Tasks of a deactivated project keep an
// empty name.
func (s *TaskService) views(ctx context.Context, tasks []model.Task) ([]TaskView, error) {
	names := make(map[int64]string)
	for _, t := range tasks {
		if _, seen := names[t.ProjectID]; seen {
			continue
		}
		p, err := s.deps.Store.Projects().FindActiveByID(ctx, t.ProjectID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			names[t.ProjectID] = ""
		case err != nil:
			return nil, storeErr(err, "project", t.ProjectID)
		default:
			names[t.ProjectID] = p.Name
		}
	}

	today := s.deps.today()
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskView(t, names[t.ProjectID], today))
	}
	return out, nil
}

func activeProject(ctx context.Context, tx repository.Store, id int64) (*model.Project, error) {
	p, err := tx.Projects().FindActiveByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "project", id)
	}
	return p, nil
}

// applyTaskInput copies the writable fields. An explicit status wins and
// goes through the status table; a percentage on its own drives the status.
func applyTaskInput(t *model.Task, in TaskInput, today model.Date) error {
	t.ProjectID = in.ProjectID
	t.Title = in.Title
	t.Description = in.Description
	t.StartDate = in.StartDate
	t.ExpectedEndDate = in.ExpectedEndDate
	if in.ActualEndDate != nil {
		t.ActualEndDate = in.ActualEndDate
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	t.EstimatedHours = in.EstimatedHours
	if in.WorkedHours.Valid {
		t.WorkedHours = in.WorkedHours.Decimal
	}
	t.Owner = in.Owner
	t.Notes = in.Notes

	switch {
	case in.Status != nil:
		if in.CompletionPercentage != nil {
			t.CompletionPercentage = *in.CompletionPercentage
		}
		lifecycle.ApplyTaskStatus(t, *in.Status, today)
	case in.CompletionPercentage != nil:
		return lifecycle.ApplyTaskPercentage(t, *in.CompletionPercentage, today)
	}
	return nil
}
