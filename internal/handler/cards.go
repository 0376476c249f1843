package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tcgradar/internal/repository"
)

// CardHandler serves the public catalog: card metadata, the latest quote
// per source and the synergy partner count. No tenant scoping, this is
// market data.
type CardHandler struct {
	Repo repository.Repository
}

func (h *CardHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/cards/:id", h.getCard)
	r.GET("/api/v1/sets/:code/cards", h.listSetCards)
}

func (h *CardHandler) getCard(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	cardID := strings.TrimSpace(c.Param("id"))
	if cardID == "" {
		Error(c, http.StatusBadRequest, "missing card id", nil)
		return
	}

	ctx := c.Request.Context()
	meta, err := h.Repo.GetCardMetadata(ctx, cardID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if meta == nil {
		Error(c, http.StatusNotFound, "card not found", nil)
		return
	}
	prices, err := h.Repo.ListPricesByCard(ctx, cardID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	partners, err := h.Repo.CountSynergyPartners(ctx, cardID, 1)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"card":             meta,
		"prices":           prices,
		"synergy_partners": partners,
	}, nil)
}

func (h *CardHandler) listSetCards(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	setCode := strings.TrimSpace(c.Param("code"))
	if setCode == "" {
		Error(c, http.StatusBadRequest, "missing set code", nil)
		return
	}
	items, err := h.Repo.ListCardMetadataBySet(c.Request.Context(), setCode)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}
