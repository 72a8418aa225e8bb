package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/export"
	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

// importLimitBytes caps snapshot uploads. Generous for a neighborhood group.
const importLimitBytes = 8 << 20

type ExportHandler struct {
	svc *export.Service
}

func NewExportHandler(svc *export.Service) *ExportHandler { return &ExportHandler{svc: svc} }

func (h *ExportHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/export")
	{
		g.GET("/json", h.snapshotJSON)
		g.GET("/players.csv", h.playersCSV)
		g.GET("/history.csv", h.historyCSV)
		g.GET("/workbook.xlsx", h.workbook)
	}
	r.POST("/import", h.importSnapshot)
}

func (h *ExportHandler) snapshotJSON(c *gin.Context) {
	data, err := h.svc.SnapshotJSON(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pelada-backup.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (h *ExportHandler) playersCSV(c *gin.Context) {
	data, err := h.svc.PlayersCSV(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="players.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ExportHandler) historyCSV(c *gin.Context) {
	data, err := h.svc.HistoryCSV(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="history.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ExportHandler) workbook(c *gin.Context) {
	data, err := h.svc.Workbook(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pelada.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *ExportHandler) importSnapshot(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, importLimitBytes))
	if err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.Import(c.Request.Context(), body); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
