package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

type AttendanceHandler struct {
	svc service.AttendanceService
}

func NewAttendanceHandler(svc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

func (h *AttendanceHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/attendance")
	{
		g.GET("", h.view)
		g.POST("/:player_id/toggle", h.toggle)
	}
}

func (h *AttendanceHandler) view(c *gin.Context) {
	view, err := h.svc.View(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, view)
}

func (h *AttendanceHandler) toggle(c *gin.Context) {
	checkedIn, err := h.svc.Toggle(c.Request.Context(), c.Param("player_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	view, err := h.svc.View(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{
		"checked_in": checkedIn,
		"present":    view.Present,
		"absent":     view.Absent,
	})
}
