package source

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
)

// JustTCG is the buy-side price aggregator. One row per card carries the
// TCGPlayer USD market price and the Cardmarket EUR trend price, which is
// exactly the pair the arbitrage scan joins on.
type JustTCG struct {
	client *resty.Client
}

func NewJustTCG(cfg config.SourcesConfig) *JustTCG {
	client := newClient(cfg.JustTCG.BaseURL, cfg).
		SetHeader("X-API-Key", cfg.JustTCG.APIKey)
	return &JustTCG{client: client}
}

func (j *JustTCG) Name() string { return KeyJustTCG }

type justTCGCard struct {
	ID         string  `json:"id"`
	Condition  string  `json:"condition"`
	PriceUSD   float64 `json:"price_usd"`
	PriceEUR   float64 `json:"price_eur"`
	ListingURL string  `json:"listing_url"`
}

type justTCGList struct {
	Data []justTCGCard `json:"data"`
}

func (j *JustTCG) FetchSet(ctx context.Context, setCode string) ([]PriceRow, error) {
	var out justTCGList
	resp, err := j.client.R().
		SetContext(ctx).
		SetQueryParam("game", "pokemon").
		SetQueryParam("set", setCode).
		SetResult(&out).
		Get("/cards")
	if err != nil {
		return nil, fmt.Errorf("%w: justtcg set %s: %v", ErrSourceFailed, setCode, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: justtcg set %s: status %d", ErrSourceFailed, setCode, resp.StatusCode())
	}
	rows := make([]PriceRow, 0, len(out.Data))
	for _, card := range out.Data {
		rows = append(rows, card.toRow())
	}
	return rows, nil
}

func (j *JustTCG) FetchCard(ctx context.Context, cardID string) (*PriceRow, error) {
	var out justTCGList
	resp, err := j.client.R().
		SetContext(ctx).
		SetQueryParam("game", "pokemon").
		SetQueryParam("card_id", cardID).
		SetResult(&out).
		Get("/cards")
	if err != nil {
		return nil, fmt.Errorf("%w: justtcg card %s: %v", ErrSourceFailed, cardID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: justtcg card %s: status %d", ErrSourceFailed, cardID, resp.StatusCode())
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	row := out.Data[0].toRow()
	return &row, nil
}

func (c justTCGCard) toRow() PriceRow {
	row := PriceRow{CardID: c.ID}
	if c.PriceUSD > 0 {
		usd := decimal.NewFromFloat(c.PriceUSD).Round(2)
		row.PriceUSD = &usd
	}
	if c.PriceEUR > 0 {
		eur := decimal.NewFromFloat(c.PriceEUR).Round(2)
		row.PriceEUR = &eur
	}
	if c.Condition != "" {
		cond := c.Condition
		row.Condition = &cond
	}
	if c.ListingURL != "" {
		link := c.ListingURL
		row.ListingURL = &link
	}
	return row
}
