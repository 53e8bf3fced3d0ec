// Package query describes list filters and pagination. Criteria are
// optional and ANDed; text criteria match case-insensitive substrings and
// everything else matches exactly. Inactive rows never match.
package query

import (
	"fmt"
	"strings"

	"projecttracker/internal/model"
)

type ProjectCriteria struct {
	Name   *string
	Owner  *string
	Status *model.ProjectStatus
}

func (c ProjectCriteria) Matches(p model.Project) bool {
	return p.Active &&
		containsFold(p.Name, c.Name) &&
		containsFold(p.Owner, c.Owner) &&
		(c.Status == nil || p.Status == *c.Status)
}

// Where renders the criteria as a SQL condition over the projects table.
func (c ProjectCriteria) Where() (string, []any) {
	var w where
	w.text("name", c.Name)
	w.text("owner", c.Owner)
	if c.Status != nil {
		w.eq("status", string(*c.Status))
	}
	return w.build()
}

type TaskCriteria struct {
	ProjectID *int64
	Title     *string
	Owner     *string
	Status    *model.TaskStatus
	Priority  *model.Priority
}

func (c TaskCriteria) Matches(t model.Task) bool {
	return t.Active &&
		(c.ProjectID == nil || t.ProjectID == *c.ProjectID) &&
		containsFold(t.Title, c.Title) &&
		containsFold(t.Owner, c.Owner) &&
		(c.Status == nil || t.Status == *c.Status) &&
		(c.Priority == nil || t.Priority == *c.Priority)
}

// Where renders the criteria as a SQL condition over the tasks table.
func (c TaskCriteria) Where() (string, []any) {
	var w where
	if c.ProjectID != nil {
		w.eq("project_id", *c.ProjectID)
	}
	w.text("title", c.Title)
	w.text("owner", c.Owner)
	if c.Status != nil {
		w.eq("status", string(*c.Status))
	}
	if c.Priority != nil {
		w.eq("priority", string(*c.Priority))
	}
	return w.build()
}

// Text returns a criterion for s, or nil when s is blank.
func Text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func containsFold(value string, needle *string) bool {
	if needle == nil || strings.TrimSpace(*needle) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(*needle))
}

type where struct {
	conds []string
	args  []any
}

func (w *where) eq(column string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

func (w *where) text(column string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return
	}
	w.args = append(w.args, escapeLike(*v))
	w.conds = append(w.conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", column, len(w.args)))
}

func (w *where) build() (string, []any) {
	conds := append([]string{"active = true"}, w.conds...)
	return strings.Join(conds, " AND "), w.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
