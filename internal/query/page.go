package query

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Page*Size within an int.
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest selects a zero-based page.
type PageRequest struct {
	Page int
	Size int
}

// Normalize fills defaults and clamps out-of-range values.
func (r PageRequest) Normalize() PageRequest {
	switch {
	case r.Page < 0:
		r.Page = 0
	case r.Page > MaxPage:
		r.Page = MaxPage
	}
	switch {
	case r.Size <= 0:
		r.Size = DefaultPageSize
	case r.Size > MaxPageSize:
		r.Size = MaxPageSize
	}
	return r
}

func (r PageRequest) Offset() int {
	r = r.Normalize()
	return r.Page * r.Size
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	req = req.Normalize()
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    int((total + int64(req.Size) - 1) / int64(req.Size)),
	}
}

// WithContent swaps the content of p for an already converted slice.
func WithContent[T, U any](p Page[T], content []U) Page[U] {
	if content == nil {
		content = []U{}
	}
	return Page[U]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

// Slice pages an already filtered, ordered slice in memory.
func Slice[T any](all []T, req PageRequest) Page[T] {
	req = req.Normalize()
	start := req.Offset()
	if start < 0 || start > len(all) {
		start = len(all)
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	content := make([]T, end-start)
	copy(content, all[start:end])
	return NewPage(content, req, int64(len(all)))
}
