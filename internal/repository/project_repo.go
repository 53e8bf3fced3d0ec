package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/query"
)

const projectColumns = `id, name, description, start_date, expected_end_date, actual_end_date,
        status, priority, budget, owner, active, created_at, updated_at, created_by, updated_by`

type PgProjectRepository struct {
	db     dbtx
	logger *zap.Logger
}

func scanProject(row scanner) (*model.Project, error) {
	var (
		p                    model.Project
		start, expected, end pgtype.Date
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&start,
		&expected,
		&end,
		&p.Status,
		&p.Priority,
		&p.Budget,
		&p.Owner,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CreatedBy,
		&p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	p.StartDate = dateValue(start)
	p.ExpectedEndDate = dateValue(expected)
	p.ActualEndDate = dateValue(end)
	return &p, nil
}

func (r *PgProjectRepository) FindActiveByID(ctx context.Context, id int64) (*model.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND active = true`

	var p *model.Project
	err := run(ctx, "select", "projects", func(ctx context.Context) error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, q, id))
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *PgProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("name", p.Name),
		zap.String("created_by", p.CreatedBy),
	)

	q := `
        INSERT INTO projects (name, description, start_date, expected_end_date, actual_end_date,
                              status, priority, budget, owner, active, created_by, updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at
    `
	err := run(ctx, "insert", "projects", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q,
			p.Name,
			p.Description,
			dateArg(p.StartDate),
			dateArg(p.ExpectedEndDate),
			dateArg(p.ActualEndDate),
			p.Status,
			p.Priority,
			p.Budget,
			p.Owner,
			p.Active,
			p.CreatedBy,
			p.UpdatedBy,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	r.logger.Info("Project inserted successfully", zap.Int64("id", p.ID))
	return nil
}

func (r *PgProjectRepository) Update(ctx context.Context, p *model.Project) error {
	q := `
        UPDATE projects
        SET name = $2, description = $3, start_date = $4, expected_end_date = $5,
            actual_end_date = $6, status = $7, priority = $8, budget = $9, owner = $10,
            active = $11, updated_by = $12, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := run(ctx, "update", "projects", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, q,
			p.ID,
			p.Name,
			p.Description,
			dateArg(p.StartDate),
			dateArg(p.ExpectedEndDate),
			dateArg(p.ActualEndDate),
			p.Status,
			p.Priority,
			p.Budget,
			p.Owner,
			p.Active,
			p.UpdatedBy,
		).Scan(&p.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to update project", zap.Int64("id", p.ID), zap.Error(err))
		return notFound(err)
	}
	return nil
}

func (r *PgProjectRepository) List(ctx context.Context, c query.ProjectCriteria, page query.PageRequest) (query.Page[model.Project], error) {
	page = page.Normalize()
	where, args := c.Where()

	var total int64
	err := run(ctx, "count", "projects", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE `+where, args...).Scan(&total)
	})
	if err != nil {
		return query.Page[model.Project]{}, err
	}

	q := fmt.Sprintf(`SELECT %s FROM projects WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		projectColumns, where, len(args)+1, len(args)+2)

	var projects []model.Project
	err = run(ctx, "select", "projects", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, append(args, page.Size, page.Offset())...)
		if err != nil {
			return err
		}
		projects, err = collect(rows, scanProject)
		return err
	})
	if err != nil {
		return query.Page[model.Project]{}, err
	}
	return query.NewPage(projects, page, total), nil
}

func (r *PgProjectRepository) FindOverdue(ctx context.Context, today model.Date) ([]model.Project, error) {
	return r.findMany(ctx, `
        SELECT `+projectColumns+` FROM projects
        WHERE active = true AND expected_end_date < $1 AND status <> 'COMPLETED'
        ORDER BY expected_end_date, id
    `, dateArg(&today))
}

func (r *PgProjectRepository) FindByOwner(ctx context.Context, owner string) ([]model.Project, error) {
	where, args := query.ProjectCriteria{Owner: &owner}.Where()
	return r.findMany(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+where+` ORDER BY id`, args...)
}

func (r *PgProjectRepository) CountByStatus(ctx context.Context) (map[model.ProjectStatus]int64, error) {
	counts := make(map[model.ProjectStatus]int64, len(model.ProjectStatuses))
	err := run(ctx, "select", "projects", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM projects WHERE active = true GROUP BY status`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				status model.ProjectStatus
				n      int64
			)
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			counts[status] = n
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *PgProjectRepository) findMany(ctx context.Context, q string, args ...any) ([]model.Project, error) {
	var projects []model.Project
	err := run(ctx, "select", "projects", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		projects, err = collect(rows, scanProject)
		return err
	})
	return projects, err
}
