package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
)

// ProjectInput is the writable part of a project, used by create and update.
type ProjectInput struct {
	Name            string               `json:"name" binding:"required,max=255"`
	Description     string               `json:"description"`
	StartDate       *model.Date          `json:"start_date"`
	ExpectedEndDate *model.Date          `json:"expected_end_date"`
	ActualEndDate   *model.Date          `json:"actual_end_date"`
	Status          *model.ProjectStatus `json:"status"`
	Priority        *model.Priority      `json:"priority"`
	Budget          decimal.NullDecimal  `json:"budget"`
	Owner           string               `json:"owner" binding:"max=255"`
}

func (in ProjectInput) validate() error {
	fields := map[string]string{}
	switch {
	case strings.TrimSpace(in.Name) == "":
		fields["name"] = "name is required"
	case utf8.RuneCountInString(in.Name) > maxTextLength:
		fields["name"] = "name must be at most 255 characters"
	}
	if utf8.RuneCountInString(in.Owner) > maxTextLength {
		fields["owner"] = "owner must be at most 255 characters"
	}
	checkAmount(fields, "budget", in.Budget, maxBudget)
	return fieldErrors(fields)
}

// TaskInput is the writable part of a task, used by create and update.
type TaskInput struct {
	ProjectID            int64               `json:"project_id" binding:"required"`
	Title                string              `json:"title" binding:"required,max=255"`
	Description          string              `json:"description"`
	Status               *model.TaskStatus   `json:"status"`
	Priority             *model.Priority     `json:"priority"`
	StartDate            *model.Date         `json:"start_date"`
	ExpectedEndDate      *model.Date         `json:"expected_end_date"`
	ActualEndDate        *model.Date         `json:"actual_end_date"`
	EstimatedHours       decimal.NullDecimal `json:"estimated_hours"`
	WorkedHours          decimal.NullDecimal `json:"worked_hours"`
	CompletionPercentage *int                `json:"completion_percentage" binding:"omitempty,min=0,max=100"`
	Owner                string              `json:"owner" binding:"max=255"`
	Notes                string              `json:"notes"`
}

func (in TaskInput) validate() error {
	fields := map[string]string{}
	if in.ProjectID <= 0 {
		fields["project_id"] = "project_id is required"
	}
	switch {
	case strings.TrimSpace(in.Title) == "":
		fields["title"] = "title is required"
	case utf8.RuneCountInString(in.Title) > maxTextLength:
		fields["title"] = "title must be at most 255 characters"
	}
	if utf8.RuneCountInString(in.Owner) > maxTextLength {
		fields["owner"] = "owner must be at most 255 characters"
	}
	checkAmount(fields, "estimated_hours", in.EstimatedHours, maxHours)
	checkAmount(fields, "worked_hours", in.WorkedHours, maxHours)
	if p := in.CompletionPercentage; p != nil && (*p < 0 || *p > 100) {
		fields["completion_percentage"] = "completion_percentage must be between 0 and 100"
	}
	return fieldErrors(fields)
}

const maxTextLength = 255

// Upper bounds (exclusive) of the NUMERIC(15,2) budget and NUMERIC(8,2)
// hour columns.
var (
	maxBudget = decimal.New(1, 13)
	maxHours  = decimal.New(1, 6)
)

// checkAmount rejects negative values, more than two decimal places and
// values the column cannot hold.
func checkAmount(fields map[string]string, name string, v decimal.NullDecimal, limit decimal.Decimal) {
	if !v.Valid {
		return
	}
	switch d := v.Decimal; {
	case d.IsNegative():
		fields[name] = name + " must not be negative"
	case !d.Equal(d.Round(2)):
		fields[name] = name + " must have at most 2 decimal places"
	case d.Cmp(limit) >= 0:
		fields[name] = name + " must be less than " + limit.String()
	}
}

func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation("request validation failed", fields)
}
