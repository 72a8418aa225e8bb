package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/match")
	{
		g.POST("", h.start)
		g.POST("/assisted", h.startAssisted)
		g.GET("", h.current)
		g.POST("/score", h.adjustScore)
		g.GET("/suggestions", h.suggestions)
		g.POST("/halftime", h.halftime)
		g.POST("/swap", h.swap)
		g.POST("/finish", h.finish)
		g.DELETE("", h.abort)
	}
}

func (h *MatchHandler) start(c *gin.Context) {
	outcome, err := h.svc.Start(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, outcome)
}

func (h *MatchHandler) startAssisted(c *gin.Context) {
	outcome, err := h.svc.StartAssisted(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, outcome)
}

func (h *MatchHandler) current(c *gin.Context) {
	match, err := h.svc.Current(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

type scoreRequest struct {
	Team  string `json:"team"`
	Delta int    `json:"delta"`
}

func (h *MatchHandler) adjustScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	match, err := h.svc.AdjustScore(c.Request.Context(), req.Team, req.Delta)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

func (h *MatchHandler) suggestions(c *gin.Context) {
	board, err := h.svc.Suggestions(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, board)
}

func (h *MatchHandler) halftime(c *gin.Context) {
	match, err := h.svc.Halftime(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

type swapRequest struct {
	StarterID string `json:"starter_id"`
	ReserveID string `json:"reserve_id"`
}

func (h *MatchHandler) swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	match, err := h.svc.Swap(c.Request.Context(), req.StarterID, req.ReserveID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, match)
}

func (h *MatchHandler) finish(c *gin.Context) {
	result, err := h.svc.Finish(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, result)
}

func (h *MatchHandler) abort(c *gin.Context) {
	if err := h.svc.Abort(c.Request.Context()); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
