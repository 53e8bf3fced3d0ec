package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InvalidEnumError is returned when a status or priority name is unknown.
type InvalidEnumError struct {
	Kind  string // "priority", "status"
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var priorityLevels = map[Priority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// Level returns the ranking ordinal, 0 for unknown values.
func (p Priority) Level() int { return priorityLevels[p] }

// IsHigh is true for HIGH and CRITICAL.
func (p Priority) IsHigh() bool { return p.Level() >= PriorityHigh.Level() }

func (p Priority) Valid() bool { return p.Level() > 0 }

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &InvalidEnumError{Kind: "priority", Value: s}
	}
	return p, nil
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	parsed, err := unmarshalEnum(b, ParsePriority)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "PLANNING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectPaused     ProjectStatus = "PAUSED"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectCanceled   ProjectStatus = "CANCELED"
)

// ProjectStatuses lists every project status in declaration order.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning, ProjectInProgress, ProjectPaused, ProjectCompleted, ProjectCanceled,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &InvalidEnumError{Kind: "status", Value: s}
	}
	return st, nil
}

func (s *ProjectStatus) UnmarshalJSON(b []byte) error {
	parsed, err := unmarshalEnum(b, ParseProjectStatus)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type TaskStatus string

const (
	TaskOpen       TaskStatus = "OPEN"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskInReview   TaskStatus = "IN_REVIEW"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCanceled   TaskStatus = "CANCELED"
)

var TaskStatuses = []TaskStatus{
	TaskOpen, TaskInProgress, TaskInReview, TaskCompleted, TaskCanceled,
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Closed is true for COMPLETED and CANCELED tasks.
func (s TaskStatus) Closed() bool {
	return s == TaskCompleted || s == TaskCanceled
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &InvalidEnumError{Kind: "status", Value: s}
	}
	return st, nil
}

func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	parsed, err := unmarshalEnum(b, ParseTaskStatus)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func unmarshalEnum[T ~string](b []byte, parse func(string) (T, error)) (T, error) {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		var zero T
		return zero, err
	}
	return parse(raw)
}
