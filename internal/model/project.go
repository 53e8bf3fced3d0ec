package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	StartDate       *Date               `json:"start_date"`
	ExpectedEndDate *Date               `json:"expected_end_date"`
	ActualEndDate   *Date               `json:"actual_end_date"`
	Status          ProjectStatus       `json:"status"` // PLANNING / IN_PROGRESS / PAUSED / COMPLETED / CANCELED
	Priority        Priority            `json:"priority"`
	Budget          decimal.NullDecimal `json:"budget"`
	Owner           string              `json:"owner"`
	Active          bool                `json:"active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	CreatedBy       string              `json:"created_by"`
	UpdatedBy       string              `json:"updated_by"`
}
