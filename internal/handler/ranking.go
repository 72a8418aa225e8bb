package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/service"
	"github.com/peladahub/pelada-service/pkg/response"
)

type RankingHandler struct {
	svc service.RankingService
}

func NewRankingHandler(svc service.RankingService) *RankingHandler {
	return &RankingHandler{svc: svc}
}

func (h *RankingHandler) Register(r *gin.RouterGroup) {
	r.GET("/ranking", h.board)
	r.GET("/history", h.history)
}

func (h *RankingHandler) board(c *gin.Context) {
	entries, err := h.svc.Board(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, entries)
}

func (h *RankingHandler) history(c *gin.Context) {
	results, err := h.svc.History(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, results)
}
