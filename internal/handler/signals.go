package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tcgradar/internal/repository"
)

// SignalHandler serves per-tenant signal reads. The tenant comes from the
// X-Tenant-ID header and every repository call is scoped to it; there is
// no unscoped read path here.
type SignalHandler struct {
	Repo repository.Repository
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/signals")
	group.GET("", h.listSignals)
	group.GET("/:id", h.getSignal)
	group.POST("/:id/ack", h.ackSignal)
}

func (h *SignalHandler) listSignals(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(c.Query("category"))
	var categoryPtr *string
	if category != "" {
		categoryPtr = &category
	}
	var sinceTime *time.Time
	if since := strings.TrimSpace(c.Query("since")); since != "" {
		if parsed, err := time.Parse(time.RFC3339, since); err == nil {
			parsed = parsed.UTC()
			sinceTime = &parsed
		}
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	params := repository.ListSignalsParams{
		Limit:      limit,
		Offset:     offset,
		ActiveOnly: c.Query("active") == "true",
		Category:   categoryPtr,
		Since:      sinceTime,
		OrderBy:    "created_at",
		Asc:        boolPtr(false),
	}
	items, err := h.Repo.ListSignals(c.Request.Context(), tenantID, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSignals(c.Request.Context(), tenantID, params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *SignalHandler) getSignal(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	signalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signal id", nil)
		return
	}
	item, err := h.Repo.GetSignal(c.Request.Context(), tenantID, signalID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "signal not found", nil)
		return
	}
	Ok(c, item, nil)
}

func (h *SignalHandler) ackSignal(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	signalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signal id", nil)
		return
	}
	if err := h.Repo.MarkSignalActedOn(c.Request.Context(), tenantID, signalID); err != nil {
		Error(c, http.StatusNotFound, "signal not found", nil)
		return
	}
	Ok(c, gin.H{"acted_on": true}, nil)
}

func tenantFrom(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.GetHeader("X-Tenant-ID"))
	if raw == "" {
		Error(c, http.StatusUnauthorized, "missing X-Tenant-ID", nil)
		return uuid.Nil, false
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		Error(c, http.StatusUnauthorized, "invalid X-Tenant-ID", nil)
		return uuid.Nil, false
	}
	return tenantID, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	return map[string]any{
		"limit":  limit,
		"offset": offset,
		"total":  total,
	}
}

func boolPtr(v bool) *bool { return &v }
