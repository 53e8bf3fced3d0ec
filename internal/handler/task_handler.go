package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/apperr"
	"projecttracker/internal/model"
	"projecttracker/internal/service"
	"projecttracker/pkg/logger"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

func (h *TaskHandler) Create(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("CreateTask request received", zap.String("actor", actor(c)))

	var in service.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	view, err := h.tasks.Create(c.Request.Context(), in, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	log.Info("CreateTask: success",
		zap.Int64("task_id", view.ID),
		zap.Int64("project_id", view.ProjectID),
	)
	c.JSON(http.StatusCreated, view)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	view, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) List(c *gin.Context) {
	crit, err := taskCriteria(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	result, err := h.tasks.List(c.Request.Context(), crit, page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TaskHandler) Update(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	log.Info("UpdateTask request received", zap.Int64("task_id", id), zap.String("actor", actor(c)))

	var in service.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	view, err := h.tasks.Update(c.Request.Context(), id, in, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	log.Info("DeleteTask request received", zap.Int64("task_id", id), zap.String("actor", actor(c)))

	if err := h.tasks.Delete(c.Request.Context(), id, actor(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if _, err := requiredQuery(c, "status"); err != nil {
		writeError(c, h.logger, err)
		return
	}
	status, err := enumQuery(c, "status", model.ParseTaskStatus)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	view, err := h.tasks.ChangeStatus(c.Request.Context(), id, *status, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) UpdatePercentage(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	raw, err := requiredQuery(c, "percentage")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		writeError(c, h.logger, apperr.Validation("invalid percentage", map[string]string{"percentage": "must be an integer"}))
		return
	}

	view, err := h.tasks.UpdatePercentage(c.Request.Context(), id, pct, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) Overdue(c *gin.Context) {
	views, err := h.tasks.Overdue(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TaskHandler) HighPriority(c *gin.Context) {
	views, err := h.tasks.HighPriority(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TaskHandler) DueWithin(c *gin.Context) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil {
		writeError(c, h.logger, apperr.Validation("invalid days", map[string]string{"days": "must be an integer"}))
		return
	}
	views, err := h.tasks.DueWithin(c.Request.Context(), days)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TaskHandler) ByOwner(c *gin.Context) {
	views, err := h.tasks.ByOwner(c.Request.Context(), c.Param("owner"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Register mounts the task routes on r.
func (h *TaskHandler) Register(r gin.IRouter) {
	g := r.Group("/tasks", checkActor(h.logger))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/overdue", h.Overdue)
	g.GET("/high-priority", h.HighPriority)
	g.GET("/due-within/:days", h.DueWithin)
	g.GET("/owner/:owner", h.ByOwner)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/status", h.ChangeStatus)
	g.PATCH("/:id/percentage", h.UpdatePercentage)
}
