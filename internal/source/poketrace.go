package source

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"tcgradar/internal/config"
)

// PokeTrace tracks completed-sale velocity per card.
type PokeTrace struct {
	client *resty.Client
}

func NewPokeTrace(cfg config.SourcesConfig) *PokeTrace {
	client := newClient(cfg.PokeTrace.BaseURL, cfg).
		SetHeader("Authorization", "Bearer "+cfg.PokeTrace.APIKey)
	return &PokeTrace{client: client}
}

type poketraceVelocity struct {
	Sales30d       int `json:"sales_30d"`
	ActiveListings int `json:"active_listings"`
}

func (p *PokeTrace) FetchVelocity(ctx context.Context, cardID string) (*Velocity, error) {
	var out poketraceVelocity
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/cards/" + cardID + "/velocity")
	if err != nil {
		return nil, fmt.Errorf("%w: poketrace %s: %v", ErrSourceFailed, cardID, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: poketrace %s: status %d", ErrSourceFailed, cardID, resp.StatusCode())
	}
	return &Velocity{
		Sales30d:       out.Sales30d,
		ActiveListings: out.ActiveListings,
	}, nil
}
