package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helperkit/tagstore/internal/export"
	"github.com/helperkit/tagstore/pkg/logger"
)

// ExportHandler exposes snapshot exports of the tag collection.
type ExportHandler struct {
	svc *export.Service
}

func NewExportHandler(svc *export.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Register wires the export routes. Callers pass the auth chain so the
// routes are always helper-only.
func (h *ExportHandler) Register(rg *gin.RouterGroup, protect ...gin.HandlerFunc) {
	g := rg.Group("/api/admin/export", protect...)
	g.POST("", h.Snapshot)
	g.GET("/:id", h.Status)
}

func (h *ExportHandler) Snapshot(c *gin.Context) {
	job, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		logger.Errorf("export snapshot failed: %v", err)
		if job != nil {
			// Failure was recorded as a job; surface it.
			c.JSON(http.StatusBadGateway, job)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.svc.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "export job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
