package service

import (
	"context"

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

type ProjectService struct {
	deps Deps
}

func NewProjectService(deps Deps) *ProjectService {
	return &ProjectService{deps: deps.withDefaults()}
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput, actor string) (*ProjectView, error) {
	log := logger.WithTrace(ctx, s.deps.Logger)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := lifecycle.CheckSchedule(in.StartDate, in.ExpectedEndDate); err != nil {
		return nil, err
	}

	actor = actorOrDefault(actor)
	p := model.Project{
		Status:    model.ProjectPlanning,
		Priority:  model.PriorityMedium,
		Active:    true,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
	applyProjectInput(&p, in)
	if in.Status != nil {
		p.Status = *in.Status
	}
	if p.Status == model.ProjectCompleted && p.ActualEndDate == nil {
		p.ActualEndDate = s.deps.today().Ptr()
	}

	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Projects().Insert(ctx, &p)
	})
	if err != nil {
		return nil, storeErr(err, "project", 0)
	}
	s.deps.Cache.Invalidate(ctx)

	log.Info("Project created", zap.Int64("project_id", p.ID), zap.String("actor", actor))
	view := newProjectView(p, nil, s.deps.today())
	return &view, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*ProjectView, error) {
	p, err := s.deps.Store.Projects().FindActiveByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "project", id)
	}
	return s.view(ctx, *p)
}

func (s *ProjectService) List(ctx context.Context, c query.ProjectCriteria, page query.PageRequest) (query.Page[ProjectView], error) {
	found, err := s.deps.Store.Projects().List(ctx, c, page)
	if err != nil {
		return query.Page[ProjectView]{}, storeListErr(err, "projects")
	}
	views, err := s.views(ctx, found.Content)
	if err != nil {
		return query.Page[ProjectView]{}, err
	}
	return query.WithContent(found, views), nil
}

// Update replaces the writable fields of a project. A status change in the
// body goes through the same transition rules as ChangeStatus.
func (s *ProjectService) Update(ctx context.Context, id int64, in ProjectInput, actor string) (*ProjectView, error) {
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
		p    *model.Project
		from model.ProjectStatus
	)
	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if p, err = tx.Projects().FindActiveByID(ctx, id); err != nil {
			return err
		}
		from = p.Status
		applyProjectInput(p, in)
		if in.Status != nil && *in.Status != p.Status {
			if err := lifecycle.TransitionProjectStatus(p, *in.Status, today); err != nil {
				return err
			}
		}
		p.UpdatedBy = actor
		return tx.Projects().Update(ctx, p)
	})
	if err != nil {
		return nil, storeErr(err, "project", id)
	}
	s.afterWrite(ctx, p, from, actor)

	log.Info("Project updated", zap.Int64("project_id", id), zap.String("actor", actor))
	return s.view(ctx, *p)
}

// Delete deactivates a project. Its tasks are left as they are.
func (s *ProjectService) Delete(ctx context.Context, id int64, actor string) error {
	log := logger.WithTrace(ctx, s.deps.Logger)
	actor = actorOrDefault(actor)

	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.Projects().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == model.ProjectInProgress {
			return apperr.BusinessRule("cannot delete project %d while it is in progress", id)
		}
		p.Active = false
		p.UpdatedBy = actor
		return tx.Projects().Update(ctx, p)
	})
	if err != nil {
		return storeErr(err, "project", id)
	}
	s.deps.Cache.Invalidate(ctx)

	log.Info("Project deleted", zap.Int64("project_id", id), zap.String("actor", actor))
	return nil
}

func (s *ProjectService) ChangeStatus(ctx context.Context, id int64, status model.ProjectStatus, actor string) (*ProjectView, error) {
	log := logger.WithTrace(ctx, s.deps.Logger)
	actor = actorOrDefault(actor)
	today := s.deps.today()

	var (
		p    *model.Project
		from model.ProjectStatus
	)
	err := s.deps.Store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if p, err = tx.Projects().FindActiveByID(ctx, id); err != nil {
			return err
		}
		from = p.Status
		if err := lifecycle.TransitionProjectStatus(p, status, today); err != nil {
			return err
		}
		p.UpdatedBy = actor
		return tx.Projects().Update(ctx, p)
	})
	if err != nil {
		return nil, storeErr(err, "project", id)
	}
	s.afterWrite(ctx, p, from, actor)

	log.Info("Project status changed",
		zap.Int64("project_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return s.view(ctx, *p)
}

// Overdue lists projects past their expected end date that are not COMPLETED.
func (s *ProjectService) Overdue(ctx context.Context) ([]ProjectView, error) {
	found, err := s.deps.Store.Projects().FindOverdue(ctx, s.deps.today())
	if err != nil {
		return nil, storeListErr(err, "overdue projects")
	}
	return s.views(ctx, found)
}

func (s *ProjectService) ByOwner(ctx context.Context, owner string) ([]ProjectView, error) {
	found, err := s.deps.Store.Projects().FindByOwner(ctx, owner)
	if err != nil {
		return nil, storeListErr(err, "projects by owner")
	}
	return s.views(ctx, found)
}

// Statistics counts active projects per status. Every status is present,
// with zero when no project has it.
func (s *ProjectService) Statistics(ctx context.Context) (map[model.ProjectStatus]int64, error) {
	counts, ok := s.deps.Cache.Get(ctx)
	if !ok {
		var err error
		counts, err = s.deps.Store.Projects().CountByStatus(ctx)
		if err != nil {
			return nil, storeListErr(err, "project statistics")
		}
		s.deps.Cache.Set(ctx, counts)
	}

	out := make(map[model.ProjectStatus]int64, len(model.ProjectStatuses))
	for _, st := range model.ProjectStatuses {
		out[st] = counts[st]
	}
	return out, nil
}

func (s *ProjectService) afterWrite(ctx context.Context, p *model.Project, from model.ProjectStatus, actor string) {
	s.deps.Cache.Invalidate(ctx)
	if p.Status == from {
		return
	}
	metrics.IncrementStatusTransition("project", string(from), string(p.Status))
	s.deps.Events.StatusChanged(ctx, events.ProjectStatusChanged, events.StatusChangedPayload{
		ID:         p.ID,
		From:       string(from),
		To:         string(p.Status),
		Actor:      actor,
		OccurredAt: s.deps.Now(),
	})
}

func (s *ProjectService) view(ctx context.Context, p model.Project) (*ProjectView, error) {
	tasks, err := s.deps.Store.Tasks().FindByProject(ctx, p.ID)
	if err != nil {
		return nil, storeListErr(err, "project tasks")
	}
	v := newProjectView(p, tasks, s.deps.today())
	return &v, nil
}

func (s *ProjectService) views(ctx context.Context, projects []model.Project) ([]ProjectView, error) {
	ids := make([]int64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	tasks, err := s.deps.Store.Tasks().FindByProjects(ctx, ids)
	if err != nil {
		return nil, storeListErr(err, "project tasks")
	}
	byProject := make(map[int64][]model.Task, len(projects))
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}

	today := s.deps.today()
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, newProjectView(p, byProject[p.ID], today))
	}
	return out, nil
}

// applyProjectInput copies the plain fields. Status is handled by the caller;
// a nil priority or actual end date keeps the current value.
func applyProjectInput(p *model.Project, in ProjectInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.StartDate = in.StartDate
	p.ExpectedEndDate = in.ExpectedEndDate
	if in.ActualEndDate != nil {
		p.ActualEndDate = in.ActualEndDate
	}
	if in.Priority != nil {
		p.Priority = *in.Priority
	}
	p.Budget = in.Budget
	p.Owner = in.Owner
}
