package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/app"
	"path2prevention/internal/transport/http/response"
)

type MaintenanceHandler struct {
	maintenance *app.MaintenanceService
	index       *app.IndexService
}

func NewMaintenanceHandler(maintenance *app.MaintenanceService, index *app.IndexService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance, index: index}
}

func (h *MaintenanceHandler) InitDB(c *gin.Context) {
	tables, err := h.maintenance.InitDB(c.Request.Context())
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "Failed to initialize database", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Database initialized successfully",
		"tables":  tables,
	})
}

func (h *MaintenanceHandler) PopulateSampleData(c *gin.Context) {
	if _, err := h.maintenance.PopulateSampleData(c.Request.Context()); err != nil {
		response.Failure(c, http.StatusInternalServerError, "Failed to populate sample data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Sample data populated successfully",
		"note":    "Database now contains sample LCI programs for testing",
	})
}

func (h *MaintenanceHandler) InitVectorDB(c *gin.Context) {
	if err := h.maintenance.InitVectorStore(c.Request.Context()); err != nil {
		response.Failure(c, http.StatusInternalServerError, "Failed to initialize vector database", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vector database initialized successfully"})
}

func (h *MaintenanceHandler) IndexPrograms(c *gin.Context) {
	report, err := h.index.Reindex(c.Request.Context())
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "Failed to index programs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Programs indexed",
		"total":     report.Total,
		"processed": report.Processed,
		"failed":    report.Failed,
	})
}

func (h *MaintenanceHandler) DBStructure(c *gin.Context) {
	structure, err := h.maintenance.DescribeSchema(c.Request.Context())
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "Failed to describe database", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"database":    structure.Database,
		"tables":      structure.Tables,
		"foreignKeys": structure.ForeignKeys,
		"summary":     structure.Summary,
	})
}
