package handler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/query"
	"projecttracker/internal/service"
)

// ActorHeader carries the caller recorded in created_by / updated_by.
const ActorHeader = "X-User"

// MaxActorLength matches the created_by / updated_by columns.
const MaxActorLength = 100

// checkActor rejects an X-User header the audit columns cannot hold.
func checkActor(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if utf8.RuneCountInString(actor(c)) > MaxActorLength {
			writeError(c, log, apperr.Validation("invalid "+ActorHeader+" header", map[string]string{
				ActorHeader: fmt.Sprintf("must be at most %d characters", MaxActorLength),
			}))
			return
		}
		c.Next()
	}
}

func actor(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(ActorHeader)); v != "" {
		return v
	}
	return service.DefaultActor
}

func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid "+name, map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

func intQuery(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("invalid "+name, map[string]string{name: "must be an integer"})
	}
	return &v, nil
}

func pageRequest(c *gin.Context) (query.PageRequest, error) {
	var req query.PageRequest
	page, err := intQuery(c, "page")
	if err != nil {
		return req, err
	}
	size, err := intQuery(c, "size")
	if err != nil {
		return req, err
	}
	if page != nil {
		req.Page = *page
	}
	if size != nil {
		req.Size = *size
	}
	return req.Normalize(), nil
}

// enumQuery parses an optional enum query parameter.
func enumQuery[T any](c *gin.Context, name string, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, apperr.Validation("invalid "+name, map[string]string{name: err.Error()})
	}
	return &v, nil
}

func projectCriteria(c *gin.Context) (query.ProjectCriteria, error) {
	status, err := enumQuery(c, "status", model.ParseProjectStatus)
	if err != nil {
		return query.ProjectCriteria{}, err
	}
	return query.ProjectCriteria{
		Name:   query.Text(c.Query("name")),
		Owner:  query.Text(c.Query("owner")),
		Status: status,
	}, nil
}

func taskCriteria(c *gin.Context) (query.TaskCriteria, error) {
	var crit query.TaskCriteria
	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return crit, apperr.Validation("invalid project_id", map[string]string{"project_id": "must be an integer"})
		}
		crit.ProjectID = &id
	}
	status, err := enumQuery(c, "status", model.ParseTaskStatus)
	if err != nil {
		return crit, err
	}
	priority, err := enumQuery(c, "priority", model.ParsePriority)
	if err != nil {
		return crit, err
	}
	crit.Title = query.Text(c.Query("title"))
	crit.Owner = query.Text(c.Query("owner"))
	crit.Status = status
	crit.Priority = priority
	return crit, nil
}

// requiredQuery returns a mandatory query parameter.
func requiredQuery(c *gin.Context, name string) (string, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", apperr.Validation(name+" is required", map[string]string{name: name + " is required"})
	}
	return raw, nil
}
