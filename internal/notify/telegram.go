package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tcgradar/internal/config"
	"tcgradar/internal/models"
)

// Telegram sends through the Bot API. Batch sends are paced with a rate
// limiter to stay under the per-chat message budget.
type Telegram struct {
	client  *resty.Client
	token   string
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewTelegram(cfg config.NotifyConfig, log *zap.Logger) *Telegram {
	client := resty.New().
		SetBaseURL(cfg.Telegram.BaseURL).
		SetTimeout(cfg.Telegram.Timeout)
	return &Telegram{
		client:  client,
		token:   cfg.Telegram.BotToken,
		limiter: rate.NewLimiter(rate.Every(cfg.BatchPace), 1),
		log:     log,
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) SendOne(ctx context.Context, channelID int64, sig models.Signal) bool {
	return t.send(ctx, channelID, formatSignal(sig))
}

func (t *Telegram) SendBatch(ctx context.Context, channelID int64, sigs []models.Signal) bool {
	ok := true
	for _, sig := range sigs {
		if err := t.limiter.Wait(ctx); err != nil {
			return false
		}
		if !t.send(ctx, channelID, formatSignal(sig)) {
			ok = false
		}
	}
	return ok
}

func (t *Telegram) SendDigest(ctx context.Context, channelID int64, sigs []models.Signal) bool {
	if len(sigs) == 0 {
		return true
	}
	return t.send(ctx, channelID, formatDigest(sigs))
}

func (t *Telegram) send(ctx context.Context, chatID int64, text string) bool {
	if t.token == "" {
		return false
	}
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"chat_id": chatID,
			"text":    text,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		t.log.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return false
	}
	if resp.IsError() {
		t.log.Warn("telegram send rejected",
			zap.Int64("chat_id", chatID),
			zap.Int("status", resp.StatusCode()))
		return false
	}
	return true
}
