package service

import (
	"github.com/shopspring/decimal"

	"projecttracker/internal/model"
	"projecttracker/internal/progress"
)

// ProjectView is a project with its derived metrics.
type ProjectView struct {
	model.Project
	CompletionPercentage float64         `json:"completion_percentage"`
	Overdue              bool            `json:"overdue"`
	TotalTasks           int             `json:"total_tasks"`
	CompletedTasks       int             `json:"completed_tasks"`
	TotalEstimatedHours  decimal.Decimal `json:"total_estimated_hours"`
	TotalWorkedHours     decimal.Decimal `json:"total_worked_hours"`
}

// TaskView is a task with its derived fields.
type TaskView struct {
	model.Task
	ProjectName   string `json:"project_name"`
	Overdue       bool   `json:"overdue"`
	DaysRemaining int    `json:"days_remaining"`
}

func newProjectView(p model.Project, tasks []model.Task, today model.Date) ProjectView {
	s := progress.SummarizeProject(p, tasks, today)
	return ProjectView{
		Project:              p,
		CompletionPercentage: s.CompletionPercentage,
		Overdue:              s.Overdue,
		TotalTasks:           s.TotalTasks,
		CompletedTasks:       s.CompletedTasks,
		TotalEstimatedHours:  s.EstimatedHours,
		TotalWorkedHours:     s.WorkedHours,
	}
}

func newTaskView(t model.Task, projectName string, today model.Date) TaskView {
	return TaskView{
		Task:          t,
		ProjectName:   projectName,
		Overdue:       progress.TaskOverdue(t, today),
		DaysRemaining: progress.DaysRemaining(t, today),
	}
}
