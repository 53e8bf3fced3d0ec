package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Task belongs to exactly one project; the link is held only on this side.
type Task struct {
	ID                   int64               `json:"id"`
	ProjectID            int64               `json:"project_id"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Status               TaskStatus          `json:"status"`
	Priority             Priority            `json:"priority"`
	StartDate            *Date               `json:"start_date"`
	ExpectedEndDate      *Date               `json:"expected_end_date"`
	ActualEndDate        *Date               `json:"actual_end_date"`
	EstimatedHours       decimal.NullDecimal `json:"estimated_hours"`
	WorkedHours          decimal.Decimal     `json:"worked_hours"`
	CompletionPercentage int                 `json:"completion_percentage"`
	Owner                string              `json:"owner"`
	Notes                string              `json:"notes"`
	Active               bool                `json:"active"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	CreatedBy            string              `json:"created_by"`
	UpdatedBy            string              `json:"updated_by"`
}
