// Package progress derives read-time metrics for projects and tasks. Nothing
// computed here is stored.
package progress

import (
	"github.com/shopspring/decimal"

	"projecttracker/internal/model"
)

// ProjectSummary is the set of derived values attached to a project view.
type ProjectSummary struct {
	CompletionPercentage float64
	Overdue              bool
	TotalTasks           int
	CompletedTasks       int
	EstimatedHours       decimal.Decimal
	WorkedHours          decimal.Decimal
}

// CompletionPercentage is 100*K/N over the active tasks, 0 when there are none.
func CompletionPercentage(tasks []model.Task) float64 {
	total, completed := countTasks(tasks)
	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}

// ProjectOverdue is true when the expected end date has passed and the
// project is not COMPLETED. Canceled projects still count as overdue.
func ProjectOverdue(p model.Project, today model.Date) bool {
	if p.ExpectedEndDate == nil || p.Status == model.ProjectCompleted {
		return false
	}
	return p.ExpectedEndDate.Before(today)
}

// TaskOverdue is true when the expected end date has passed and the task
// is neither completed nor canceled.
func TaskOverdue(t model.Task, today model.Date) bool {
	if t.ExpectedEndDate == nil || t.Status.Closed() {
		return false
	}
	return t.ExpectedEndDate.Before(today)
}

// DaysRemaining is the signed day count until the expected end date.
func DaysRemaining(t model.Task, today model.Date) int {
	if t.ExpectedEndDate == nil {
		return 0
	}
	return today.DaysUntil(*t.ExpectedEndDate)
}

// HourTotals sums estimated and worked hours of the active tasks.
func HourTotals(tasks []model.Task) (estimated, worked decimal.Decimal) {
	estimated, worked = decimal.Zero, decimal.Zero
	for _, t := range tasks {
		if !t.Active {
			continue
		}
		if t.EstimatedHours.Valid {
			estimated = estimated.Add(t.EstimatedHours.Decimal)
		}
		worked = worked.Add(t.WorkedHours)
	}
	return estimated, worked
}

// SummarizeProject computes every derived project metric in one pass over tasks.
func SummarizeProject(p model.Project, tasks []model.Task, today model.Date) ProjectSummary {
	total, completed := countTasks(tasks)
	estimated, worked := HourTotals(tasks)
	return ProjectSummary{
		CompletionPercentage: CompletionPercentage(tasks),
		Overdue:              ProjectOverdue(p, today),
		TotalTasks:           total,
		CompletedTasks:       completed,
		EstimatedHours:       estimated,
		WorkedHours:          worked,
	}
}

func countTasks(tasks []model.Task) (total, completed int) {
	for _, t := range tasks {
		if !t.Active {
			continue
		}
		total++
		if t.Status == model.TaskCompleted {
			completed++
		}
	}
	return total, completed
}
