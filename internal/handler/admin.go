package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tcgradar/internal/models"
	"tcgradar/internal/repository"
)

// AdminHandler is the privileged surface: user provisioning and the
// tenant-bypass signal and audit reads.
type AdminHandler struct {
	Repo repository.Repository
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/admin")
	group.POST("/users", h.createUser)
	group.GET("/users/:id", h.getUser)
	group.GET("/signals/:id", h.getSignal)
	group.GET("/signals/:id/audit", h.listAudit)
}

type createUserRequest struct {
	Email            *string  `json:"email"`
	Country          string   `json:"country" binding:"required"`
	SubscriptionTier string   `json:"subscription_tier"`
	EngagementScore  float64  `json:"engagement_score"`
	CardCategories   []string `json:"card_categories"`
	MinProfit        string   `json:"min_profit_threshold"`
	TelegramChatID   *int64   `json:"telegram_chat_id"`
	DiscordChannelID *int64   `json:"discord_channel_id"`
}

func (h *AdminHandler) createUser(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    req.Email,
		IsActive: true,
	}
	profile := models.UserProfile{
		ID:               user.ID,
		Country:          req.Country,
		SubscriptionTier: req.SubscriptionTier,
		EngagementScore:  req.EngagementScore,
		CardCategories:   req.CardCategories,
		TelegramChatID:   req.TelegramChatID,
		DiscordChannelID: req.DiscordChannelID,
	}
	if profile.SubscriptionTier == "" {
		profile.SubscriptionTier = "free"
	}
	if req.MinProfit != "" {
		threshold, err := decimal.NewFromString(req.MinProfit)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid min_profit_threshold", nil)
			return
		}
		profile.MinProfitThreshold = threshold
	}

	ctx := c.Request.Context()
	if err := h.Repo.UpsertUser(ctx, &user); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if err := h.Repo.UpsertUserProfile(ctx, &profile); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"user_id": user.ID}, nil)
}

func (h *AdminHandler) getUser(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	ctx := c.Request.Context()
	user, err := h.Repo.GetUserByID(ctx, userID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if user == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	profile, err := h.Repo.GetUserProfile(ctx, userID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"user": user, "profile": profile}, nil)
}

func (h *AdminHandler) getSignal(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	signalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signal id", nil)
		return
	}
	item, err := h.Repo.AdminGetSignal(c.Request.Context(), signalID)
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

func (h *AdminHandler) listAudit(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	signalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signal id", nil)
		return
	}
	items, err := h.Repo.ListAuditsBySignal(c.Request.Context(), signalID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
