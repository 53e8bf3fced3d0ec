package lifecycle

import (
	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
)

const (
	startedPercentage  = 10
	inReviewPercentage = 90
	donePercentage     = 100
)

// ApplyTaskStatus sets the status of t and rewrites its completion
// percentage to match. Any status may follow any other.
func ApplyTaskStatus(t *model.Task, status model.TaskStatus, today model.Date) {
	t.Status = status
	NormalizeTaskProgress(t, today)
}

// NormalizeTaskProgress brings the percentage back in line with the stored
// status. It is idempotent and runs before every task write.
func NormalizeTaskProgress(t *model.Task, today model.Date) {
	switch t.Status {
	case model.TaskOpen:
		t.CompletionPercentage = 0
	case model.TaskInProgress:
		if t.CompletionPercentage == 0 {
			t.CompletionPercentage = startedPercentage
		}
	case model.TaskInReview:
		if t.CompletionPercentage < inReviewPercentage {
			t.CompletionPercentage = inReviewPercentage
		}
	case model.TaskCompleted:
		t.CompletionPercentage = donePercentage
		if t.ActualEndDate == nil {
			t.ActualEndDate = today.Ptr()
		}
	case model.TaskCanceled:
	}
	t.CompletionPercentage = clampPercentage(t.CompletionPercentage)
}

// ApplyTaskPercentage lets the percentage drive the status: 100 completes
// the task, any partial value moves an OPEN task to IN_PROGRESS.
func ApplyTaskPercentage(t *model.Task, pct int, today model.Date) error {
	if pct < 0 || pct > donePercentage {
		return apperr.OutOfRange("completion percentage must be between 0 and 100, got %d", pct)
	}
	t.CompletionPercentage = pct
	switch {
	case pct == donePercentage && t.Status != model.TaskCompleted:
		t.Status = model.TaskCompleted
		if t.ActualEndDate == nil {
			t.ActualEndDate = today.Ptr()
		}
	case pct > 0 && pct < donePercentage && t.Status == model.TaskOpen:
		t.Status = model.TaskInProgress
	}
	return nil
}

func clampPercentage(pct int) int {
	switch {
	case pct < 0:
		return 0
	case pct > donePercentage:
		return donePercentage
	default:
		return pct
	}
}
