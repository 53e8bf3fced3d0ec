package query

import (
	"math"
	"reflect"
	"testing"

	"projecttracker/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestProjectCriteria_Matches(t *testing.T) {
	projects := []model.Project{
		{ID: 1, Name: "Project Apollo", Owner: "alice", Status: model.ProjectInProgress, Active: true},
		{ID: 2, Name: "apollo docs", Owner: "bob", Status: model.ProjectPlanning, Active: true},
		{ID: 3, Name: "Gemini", Owner: "Alice", Status: model.ProjectInProgress, Active: true},
		{ID: 4, Name: "Apollo archive", Owner: "alice", Status: model.ProjectInProgress, Active: false},
	}
	tests := []struct {
		name     string
		criteria ProjectCriteria
		want     []int64
	}{
		{"no criteria", ProjectCriteria{}, []int64{1, 2, 3}},
		{"upper case name", ProjectCriteria{Name: ptr("APOLLO")}, []int64{1, 2}},
		{"lower case name", ProjectCriteria{Name: ptr("apollo")}, []int64{1, 2}},
		{"blank text ignored", ProjectCriteria{Name: ptr("  ")}, []int64{1, 2, 3}},
		{"owner", ProjectCriteria{Owner: ptr("ALI")}, []int64{1, 3}},
		{"status", ProjectCriteria{Status: ptr(model.ProjectInProgress)}, []int64{1, 3}},
		{"combined", ProjectCriteria{Name: ptr("apollo"), Status: ptr(model.ProjectInProgress)}, []int64{1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []int64
			for _, p := range projects {
				if tc.criteria.Matches(p) {
					got = append(got, p.ID)
				}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTaskCriteria_Matches(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, ProjectID: 1, Title: "Write API", Status: model.TaskOpen, Priority: model.PriorityHigh, Active: true},
		{ID: 2, ProjectID: 1, Title: "write docs", Status: model.TaskCompleted, Priority: model.PriorityLow, Active: true},
		{ID: 3, ProjectID: 2, Title: "Write tests", Status: model.TaskOpen, Priority: model.PriorityHigh, Active: true},
	}
	c := TaskCriteria{ProjectID: ptr(int64(1)), Title: ptr("WRITE"), Priority: ptr(model.PriorityHigh)}
	var got []int64
	for _, tk := range tasks {
		if c.Matches(tk) {
			got = append(got, tk.ID)
		}
	}
	if !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestProjectCriteria_Where(t *testing.T) {
	sql, args := ProjectCriteria{}.Where()
	if sql != "active = true" || len(args) != 0 {
		t.Fatalf("unexpected empty where %q %v", sql, args)
	}

	sql, args = ProjectCriteria{Name: ptr("50%_off"), Status: ptr(model.ProjectPaused)}.Where()
	wantSQL := "active = true AND name ILIKE '%' || $1 || '%' AND status = $2"
	if sql != wantSQL {
		t.Fatalf("expected %q, got %q", wantSQL, sql)
	}
	if !reflect.DeepEqual(args, []any{`50\%\_off`, "PAUSED"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestTaskCriteria_Where(t *testing.T) {
	sql, args := TaskCriteria{ProjectID: ptr(int64(9)), Owner: ptr("bob"), Priority: ptr(model.PriorityCritical)}.Where()
	wantSQL := "active = true AND project_id = $1 AND owner ILIKE '%' || $2 || '%' AND priority = $3"
	if sql != wantSQL {
		t.Fatalf("expected %q, got %q", wantSQL, sql)
	}
	if !reflect.DeepEqual(args, []any{int64(9), "bob", "CRITICAL"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: 0, Size: 20}},
		{PageRequest{Page: -3, Size: 5}, PageRequest{Page: 0, Size: 5}},
		{PageRequest{Page: 2, Size: 500}, PageRequest{Page: 2, Size: 100}},
		{PageRequest{Page: math.MaxInt, Size: 10}, PageRequest{Page: MaxPage, Size: 10}},
	}
	for _, tc := range tests {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("%+v: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
	if got := (PageRequest{Page: 2, Size: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (PageRequest{Page: 922337203685477581, Size: 100}).Offset(); got < 0 {
		t.Fatalf("offset overflowed to %d", got)
	}
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	p := Slice(all, PageRequest{Page: 1, Size: 2})
	if !reflect.DeepEqual(p.Content, []int{3, 4}) || p.TotalElements != 5 || p.TotalPages != 3 {
		t.Fatalf("unexpected page %+v", p)
	}

	beyond := Slice(all, PageRequest{Page: 9, Size: 2})
	if len(beyond.Content) != 0 || beyond.Content == nil || beyond.TotalElements != 5 {
		t.Fatalf("unexpected page beyond the end %+v", beyond)
	}

	huge := Slice(all, PageRequest{Page: 922337203685477581, Size: 10})
	if len(huge.Content) != 0 || huge.TotalElements != 5 {
		t.Fatalf("unexpected page for a huge index %+v", huge)
	}

	labels := WithContent(p, []string{"three", "four"})
	if !reflect.DeepEqual(labels.Content, []string{"three", "four"}) || labels.TotalPages != 3 || labels.Page != 1 {
		t.Fatalf("unexpected converted page %+v", labels)
	}
}
