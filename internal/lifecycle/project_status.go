// Package lifecycle holds the status rules for projects and tasks. All
// functions are pure: the caller supplies "today" and persists the result.
package lifecycle

import (
	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
)

// CheckProjectTransition reports whether a project in status current may be
// moved to requested. CANCELED is a dead end, COMPLETED only accepts itself.
func CheckProjectTransition(current, requested model.ProjectStatus) error {
	switch current {
	case model.ProjectCanceled:
		return apperr.InvalidTransition("cannot change status of a canceled project")
	case model.ProjectCompleted:
		if requested != model.ProjectCompleted {
			return apperr.InvalidTransition("cannot change status of a completed project to %s", requested)
		}
	}
	return nil
}

// TransitionProjectStatus applies requested to p when the transition is
// legal. Completing a project stamps the actual end date if it is unset.
func TransitionProjectStatus(p *model.Project, requested model.ProjectStatus, today model.Date) error {
	if err := CheckProjectTransition(p.Status, requested); err != nil {
		return err
	}
	p.Status = requested
	if requested == model.ProjectCompleted && p.ActualEndDate == nil {
		p.ActualEndDate = today.Ptr()
	}
	return nil
}

// CheckSchedule rejects an expected end date earlier than the start date.
func CheckSchedule(start, expectedEnd *model.Date) error {
	if start == nil || expectedEnd == nil {
		return nil
	}
	if expectedEnd.Before(*start) {
		return apperr.BusinessRule("expected end date %s cannot be before start date %s", expectedEnd, start)
	}
	return nil
}
