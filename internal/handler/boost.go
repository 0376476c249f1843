package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tcgradar/internal/orchestrator"
)

// BoostHandler is the hook social and tournament pipelines call to tighten
// the buy-side poll cadence for a card.
type BoostHandler struct {
	Scheduler *orchestrator.Scheduler
}

func (h *BoostHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/cards")
	group.POST("/:id/boost", h.boostCard)
	r.GET("/api/v1/boosts", h.listBoosts)
}

func (h *BoostHandler) boostCard(c *gin.Context) {
	if h.Scheduler == nil {
		Error(c, http.StatusInternalServerError, "scheduler unavailable", nil)
		return
	}
	cardID := strings.TrimSpace(c.Param("id"))
	if cardID == "" {
		Error(c, http.StatusBadRequest, "missing card id", nil)
		return
	}
	h.Scheduler.BoostCard(cardID)
	Ok(c, gin.H{"card_id": cardID, "boosted": true}, nil)
}

func (h *BoostHandler) listBoosts(c *gin.Context) {
	if h.Scheduler == nil {
		Error(c, http.StatusInternalServerError, "scheduler unavailable", nil)
		return
	}
	Ok(c, h.Scheduler.BoostedCards(), nil)
}
