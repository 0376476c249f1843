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

type Discord struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewDiscord(cfg config.NotifyConfig, log *zap.Logger) *Discord {
	client := resty.New().
		SetBaseURL(cfg.Discord.BaseURL).
		SetTimeout(cfg.Discord.Timeout).
		SetHeader("Authorization", "Bot "+cfg.Discord.BotToken)
	return &Discord{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(cfg.BatchPace), 1),
		log:     log,
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) SendOne(ctx context.Context, channelID int64, sig models.Signal) bool {
	return d.send(ctx, channelID, formatSignal(sig))
}

func (d *Discord) SendBatch(ctx context.Context, channelID int64, sigs []models.Signal) bool {
	ok := true
	for _, sig := range sigs {
		if err := d.limiter.Wait(ctx); err != nil {
			return false
		}
		if !d.send(ctx, channelID, formatSignal(sig)) {
			ok = false
		}
	}
	return ok
}

func (d *Discord) SendDigest(ctx context.Context, channelID int64, sigs []models.Signal) bool {
	if len(sigs) == 0 {
		return true
	}
	return d.send(ctx, channelID, formatDigest(sigs))
}

func (d *Discord) send(ctx context.Context, channelID int64, content string) bool {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"content": content}).
		Post(fmt.Sprintf("/channels/%d/messages", channelID))
	if err != nil {
		d.log.Warn("discord send failed", zap.Int64("channel_id", channelID), zap.Error(err))
		return false
	}
	if resp.IsError() {
		d.log.Warn("discord send rejected",
			zap.Int64("channel_id", channelID),
			zap.Int("status", resp.StatusCode()))
		return false
	}
	return true
}
