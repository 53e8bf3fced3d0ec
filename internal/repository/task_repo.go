package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/query"
)

const taskColumns = `id, project_id, title, description, status, priority, start_date,
        expected_end_date, actual_end_date, estimated_hours, worked_hours,
        completion_percentage, owner, notes, active, created_at, updated_at, created_by, updated_by`

const openTask = `status NOT IN ('COMPLETED', 'CANCELED')`

const byPriority = `ORDER BY CASE priority
            WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0
        END DESC, expected_end_date ASC NULLS LAST, id`

type PgTaskRepository struct {
	db     dbtx
	logger *zap.Logger
}

func scanTask(row scanner) (*model.Task, error) {
	var (
		t                    model.Task
		start, expected, end pgtype.Date
	)
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&start,
		&expected,
		&end,
		&t.EstimatedHours,
		&t.WorkedHours,
		&t.CompletionPercentage,
		&t.Owner,
		&t.Notes,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CreatedBy,
		&t.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	t.StartDate = dateValue(start)
	t.ExpectedEndDate = dateValue(expected)
	t.ActualEndDate = dateValue(end)
	return &t, nil
}

func (r *PgTaskRepository) FindActiveByID(ctx context.Context, id int64) (*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND active = true`

	var t *model.Task
	err := run(ctx, "select", "tasks", func(ctx context.Context) error {
		var err error
		t, err = scanTask(r.db.QueryRow(ctx, q, id))
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *PgTaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int64("project_id", t.ProjectID),
		zap.String("title", t.Title),
	)

	q := `
        INSERT INTO tasks (project_id, title, description, status, priority, start_date,
                           expected_end_date, actual_end_date, estimated_hours, worked_hours,
                           completion_percentage, owner, notes, active, created_by, updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id, created_at, updated_at
    `
	err := run(ctx, "insert", "tasks", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q,
			t.ProjectID,
			t.Title,
			t.Description,
			t.Status,
			t.Priority,
			dateArg(t.StartDate),
			dateArg(t.ExpectedEndDate),
			dateArg(t.ActualEndDate),
			t.EstimatedHours,
			t.WorkedHours,
			t.CompletionPercentage,
			t.Owner,
			t.Notes,
			t.Active,
			t.CreatedBy,
			t.UpdatedBy,
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err))
		return err
	}

	r.logger.Info("Task inserted successfully",
		zap.Int64("id", t.ID),
		zap.Int64("project_id", t.ProjectID),
	)
	return nil
}

func (r *PgTaskRepository) Update(ctx context.Context, t *model.Task) error {
	q := `
        UPDATE tasks
        SET project_id = $2, title = $3, description = $4, status = $5, priority = $6,
            start_date = $7, expected_end_date = $8, actual_end_date = $9,
            estimated_hours = $10, worked_hours = $11, completion_percentage = $12,
            owner = $13, notes = $14, active = $15, updated_by = $16, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := run(ctx, "update", "tasks", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q,
			t.ID,
			t.ProjectID,
			t.Title,
			t.Description,
			t.Status,
			t.Priority,
			dateArg(t.StartDate),
			dateArg(t.ExpectedEndDate),
			dateArg(t.ActualEndDate),
			t.EstimatedHours,
			t.WorkedHours,
			t.CompletionPercentage,
			t.Owner,
			t.Notes,
			t.Active,
			t.UpdatedBy,
		).Scan(&t.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to update task", zap.Int64("id", t.ID), zap.Error(err))
		return notFound(err)
	}
	return nil
}

func (r *PgTaskRepository) List(ctx context.Context, c query.TaskCriteria, page query.PageRequest) (query.Page[model.Task], error) {
	page = page.Normalize()
	where, args := c.Where()

	var total int64
	err := run(ctx, "count", "tasks", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&total)
	})
	if err != nil {
		return query.Page[model.Task]{}, err
	}

	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		taskColumns, where, len(args)+1, len(args)+2)

	tasks, err := r.findMany(ctx, q, append(args, page.Size, page.Offset())...)
	if err != nil {
		return query.Page[model.Task]{}, err
	}
	return query.NewPage(tasks, page, total), nil
}

func (r *PgTaskRepository) FindByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	return r.findMany(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE active = true AND project_id = $1 `+byPriority, projectID)
}

func (r *PgTaskRepository) FindByProjects(ctx context.Context, projectIDs []int64) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return []model.Task{}, nil
	}
	return r.findMany(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE active = true AND project_id = ANY($1) ORDER BY project_id, id`, projectIDs)
}

func (r *PgTaskRepository) FindOverdue(ctx context.Context, today model.Date) ([]model.Task, error) {
	return r.findMany(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE active = true AND expected_end_date < $1 AND `+openTask+`
        ORDER BY expected_end_date, id`, dateArg(&today))
}

func (r *PgTaskRepository) FindDueBetween(ctx context.Context, from, to model.Date) ([]model.Task, error) {
	return r.findMany(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE active = true AND expected_end_date BETWEEN $1 AND $2 AND `+openTask+`
        ORDER BY expected_end_date, id`, dateArg(&from), dateArg(&to))
}

func (r *PgTaskRepository) FindHighPriorityOpen(ctx context.Context) ([]model.Task, error) {
	return r.findMany(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE active = true AND priority IN ('HIGH', 'CRITICAL') AND `+openTask+` `+byPriority)
}

func (r *PgTaskRepository) FindByOwner(ctx context.Context, owner string) ([]model.Task, error) {
	where, args := query.TaskCriteria{Owner: &owner}.Where()
	return r.findMany(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY id`, args...)
}

func (r *PgTaskRepository) findMany(ctx context.Context, q string, args ...any) ([]model.Task, error) {
	var tasks []model.Task
	err := run(ctx, "select", "tasks", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		tasks, err = collect(rows, scanTask)
		return err
	})
	return tasks, err
}
