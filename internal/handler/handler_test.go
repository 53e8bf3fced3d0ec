package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/repository"
	"projecttracker/internal/service"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()

	deps := service.Deps{
		Store:  repository.NewMemoryStore(),
		Logger: zap.NewNop(),
		Now:    func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) },
	}
	projects := service.NewProjectService(deps)
	tasks := service.NewTaskService(deps)

	r := gin.New()
	NewProjectHandler(projects, tasks, zap.NewNop()).Register(r)
	NewTaskHandler(tasks, zap.NewNop()).Register(r)
	r.NoRoute(NoRoute(zap.NewNop()))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "tester")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateProject(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/projects",
		`{"name":"Apollo","start_date":"2024-01-01","expected_end_date":"2024-01-10","budget":"1500.50"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decode[map[string]any](t, w)
	if body["status"] != "PLANNING" || body["priority"] != "MEDIUM" || body["created_by"] != "tester" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["completion_percentage"] != float64(0) || body["expected_end_date"] != "2024-01-10" {
		t.Fatalf("unexpected derived fields %v", body)
	}
}

func TestCreateProject_Errors(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
		wantField  string
	}{
		{"missing name", `{"description":"x"}`, http.StatusBadRequest, "Validation Error", "name"},
		{"unknown status", `{"name":"a","status":"DONE"}`, http.StatusBadRequest, "Validation Error", "status"},
		{"bad date", `{"name":"a","start_date":"01/02/2024"}`, http.StatusBadRequest, "Validation Error", ""},
		{"end before start", `{"name":"a","start_date":"2024-01-01","expected_end_date":"2023-12-31"}`,
			http.StatusBadRequest, "Business Rule Violation", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/projects", tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}
			resp := decode[ErrorResponse](t, w)
			if resp.Error != tc.wantError || resp.Path != "/projects" || resp.Status != tc.wantStatus {
				t.Fatalf("unexpected envelope %+v", resp)
			}
			if tc.wantField != "" && resp.ValidationErrors[tc.wantField] == "" {
				t.Fatalf("expected a %s field error, got %v", tc.wantField, resp.ValidationErrors)
			}
		})
	}
}

func TestProjectNotFound(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/projects/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Error != "Entity Not Found" {
		t.Fatalf("unexpected envelope %+v", resp)
	}

	if w := do(t, r, http.MethodGet, "/projects/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed id, got %d", w.Code)
	}
}

func TestProjectStatusAndDelete(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodPost, "/projects", `{"name":"Apollo"}`)

	w := do(t, r, http.MethodPatch, "/projects/1/status?status=in_progress", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if w := do(t, r, http.MethodDelete, "/projects/1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected in-progress delete to fail with 400, got %d", w.Code)
	}

	do(t, r, http.MethodPatch, "/projects/1/status?status=CANCELED", "")
	w = do(t, r, http.MethodPatch, "/projects/1/status?status=PLANNING", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected canceled project to reject status change, got %d", w.Code)
	}

	if w := do(t, r, http.MethodPatch, "/projects/1/status", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected missing status to fail, got %d", w.Code)
	}

	if w := do(t, r, http.MethodDelete, "/projects/1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/projects/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected deleted project to 404, got %d", w.Code)
	}
}

func TestListProjects_Paging(t *testing.T) {
	r := setupRouter(t)
	for _, name := range []string{"Project One", "project two", "Other"} {
		do(t, r, http.MethodPost, "/projects", `{"name":"`+name+`"}`)
	}

	w := do(t, r, http.MethodGet, "/projects?name=PROJECT&size=1&page=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	page := decode[struct {
		Content []struct {
			Name string `json:"name"`
		} `json:"content"`
		TotalElements int64 `json:"total_elements"`
		TotalPages    int   `json:"total_pages"`
	}](t, w)
	if page.TotalElements != 2 || page.TotalPages != 2 || len(page.Content) != 1 || page.Content[0].Name != "project two" {
		t.Fatalf("unexpected page %+v", page)
	}

	if w := do(t, r, http.MethodGet, "/projects?page=922337203685477581&size=10", ""); w.Code != http.StatusOK {
		t.Fatalf("expected an empty page for a huge index, got %d: %s", w.Code, w.Body.String())
	}

	if w := do(t, r, http.MethodGet, "/projects?status=NOPE", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid status filter to fail, got %d", w.Code)
	}
}

func TestTaskFlow(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodPost, "/projects", `{"name":"Apollo"}`)

	w := do(t, r, http.MethodPost, "/tasks", `{"project_id":1,"title":"Write API","completion_percentage":50}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPatch, "/tasks/1/status?status=IN_REVIEW", "")
	task := decode[map[string]any](t, w)
	if task["completion_percentage"] != float64(90) || task["project_name"] != "Apollo" {
		t.Fatalf("unexpected task %v", task)
	}

	w = do(t, r, http.MethodPatch, "/tasks/1/percentage?percentage=100", "")
	task = decode[map[string]any](t, w)
	if task["status"] != "COMPLETED" || task["actual_end_date"] != "2024-06-15" {
		t.Fatalf("unexpected task %v", task)
	}

	w = do(t, r, http.MethodPatch, "/tasks/1/percentage?percentage=150", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range, got %d", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.Error != "Business Rule Violation" {
		t.Fatalf("unexpected envelope %+v", resp)
	}

	w = do(t, r, http.MethodGet, "/projects/1/tasks", "")
	list := decode[[]map[string]any](t, w)
	if len(list) != 1 {
		t.Fatalf("expected one project task, got %d", len(list))
	}

	w = do(t, r, http.MethodGet, "/projects/1", "")
	project := decode[map[string]any](t, w)
	if project["completion_percentage"] != float64(100) || project["completed_tasks"] != float64(1) {
		t.Fatalf("unexpected project metrics %v", project)
	}
}

func TestTaskValidation(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodPost, "/projects", `{"name":"Apollo"}`)

	w := do(t, r, http.MethodPost, "/tasks", `{"project_id":1,"title":"x","completion_percentage":120}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := decode[ErrorResponse](t, w); resp.ValidationErrors["completion_percentage"] == "" {
		t.Fatalf("expected completion_percentage error, got %+v", resp)
	}

	w = do(t, r, http.MethodPost, "/tasks", `{"project_id":7,"title":"orphan"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown project, got %d", w.Code)
	}

	if w := do(t, r, http.MethodGet, "/tasks/due-within/soon", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric days, got %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodGet, "/nowhere", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestActorHeaderLength(t *testing.T) {
	r := setupRouter(t)

	send := func(actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewReader([]byte(`{"name":"Apollo"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(ActorHeader, actor)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := send(strings.Repeat("ü", MaxActorLength)); w.Code != http.StatusCreated {
		t.Fatalf("expected a %d character actor to be accepted, got %d: %s", MaxActorLength, w.Code, w.Body.String())
	}

	w := send(strings.Repeat("a", MaxActorLength+1))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a long actor, got %d", w.Code)
	}
	body := decode[ErrorResponse](t, w)
	if body.ValidationErrors[ActorHeader] == "" {
		t.Fatalf("expected a %s field error, got %+v", ActorHeader, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set(ActorHeader, strings.Repeat("a", MaxActorLength+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected task routes to check the actor too, got %d", rec.Code)
	}
}

func TestCreateProject_MultibyteName(t *testing.T) {
	r := setupRouter(t)
	name := strings.Repeat("é", 200)
	w := do(t, r, http.MethodPost, "/projects", `{"name":"`+name+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}
