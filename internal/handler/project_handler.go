package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/service"
	"projecttracker/pkg/logger"
)

type ProjectHandler struct {
	projects *service.ProjectService
	tasks    *service.TaskService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, tasks *service.TaskService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, tasks: tasks, logger: logger}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("CreateProject request received", zap.String("actor", actor(c)))

	var in service.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	view, err := h.projects.Create(c.Request.Context(), in, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	log.Info("CreateProject: success", zap.Int64("project_id", view.ID))
	c.JSON(http.StatusCreated, view)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	view, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProjectHandler) List(c *gin.Context) {
	crit, err := projectCriteria(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	result, err := h.projects.List(c.Request.Context(), crit, page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	log.Info("UpdateProject request received", zap.Int64("project_id", id), zap.String("actor", actor(c)))

	var in service.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	view, err := h.projects.Update(c.Request.Context(), id, in, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	log.Info("DeleteProject request received", zap.Int64("project_id", id), zap.String("actor", actor(c)))

	if err := h.projects.Delete(c.Request.Context(), id, actor(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	raw, err := requiredQuery(c, "status")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	status, err := enumQuery(c, "status", model.ParseProjectStatus)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("ChangeProjectStatus request received",
		zap.Int64("project_id", id),
		zap.String("status", raw),
	)
	view, err := h.projects.ChangeStatus(c.Request.Context(), id, *status, actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProjectHandler) Overdue(c *gin.Context) {
	views, err := h.projects.Overdue(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *ProjectHandler) ByOwner(c *gin.Context) {
	views, err := h.projects.ByOwner(c.Request.Context(), c.Param("owner"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *ProjectHandler) Statistics(c *gin.Context) {
	stats, err := h.projects.Statistics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ProjectHandler) Tasks(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	views, err := h.tasks.ListByProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Register mounts the project routes on r.
func (h *ProjectHandler) Register(r gin.IRouter) {
	g := r.Group("/projects", checkActor(h.logger))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/overdue", h.Overdue)
	g.GET("/owner/:owner", h.ByOwner)
	g.GET("/statistics", h.Statistics)
	g.GET("/:id", h.Get)
	g.GET("/:id/tasks", h.Tasks)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/status", h.ChangeStatus)
}
