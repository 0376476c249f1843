package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"tcgradar/internal/config"
	"tcgradar/internal/models"
)

// PokemonTCG serves card metadata: names, set info, regulation marks,
// legalities and marketplace URLs.
type PokemonTCG struct {
	client *resty.Client
}

func NewPokemonTCG(cfg config.SourcesConfig) *PokemonTCG {
	client := newClient(cfg.PokemonTCG.BaseURL, cfg)
	if cfg.PokemonTCG.APIKey != "" {
		client.SetHeader("X-Api-Key", cfg.PokemonTCG.APIKey)
	}
	return &PokemonTCG{client: client}
}

type ptcgCard struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Number         string `json:"number"`
	RegulationMark string `json:"regulationMark"`
	Set            struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ReleaseDate string `json:"releaseDate"`
		Total       int    `json:"total"`
	} `json:"set"`
	Legalities struct {
		Standard string `json:"standard"`
	} `json:"legalities"`
	TCGPlayer struct {
		URL string `json:"url"`
	} `json:"tcgplayer"`
	Cardmarket struct {
		URL string `json:"url"`
	} `json:"cardmarket"`
	Images struct {
		Small string `json:"small"`
	} `json:"images"`
}

type ptcgCardResponse struct {
	Data ptcgCard `json:"data"`
}

type ptcgListResponse struct {
	Data []ptcgCard `json:"data"`
}

func (p *PokemonTCG) FetchCard(ctx context.Context, cardID string) (*models.CardMetadata, error) {
	var out ptcgCardResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/cards/" + cardID)
	if err != nil {
		return nil, fmt.Errorf("%w: pokemontcg card %s: %v", ErrSourceFailed, cardID, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: pokemontcg card %s: status %d", ErrSourceFailed, cardID, resp.StatusCode())
	}
	meta := out.Data.toMetadata()
	return &meta, nil
}

func (p *PokemonTCG) FetchSet(ctx context.Context, setCode string) ([]models.CardMetadata, error) {
	var out ptcgListResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("q", "set.id:"+setCode).
		SetQueryParam("pageSize", "250").
		SetResult(&out).
		Get("/cards")
	if err != nil {
		return nil, fmt.Errorf("%w: pokemontcg set %s: %v", ErrSourceFailed, setCode, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: pokemontcg set %s: status %d", ErrSourceFailed, setCode, resp.StatusCode())
	}
	items := make([]models.CardMetadata, 0, len(out.Data))
	for _, card := range out.Data {
		items = append(items, card.toMetadata())
	}
	return items, nil
}

func (p *PokemonTCG) FetchSetInfo(ctx context.Context, setCode string) (*SetInfo, error) {
	var out struct {
		Data struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			ReleaseDate string `json:"releaseDate"`
			Total       int    `json:"total"`
		} `json:"data"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/sets/" + setCode)
	if err != nil {
		return nil, fmt.Errorf("%w: pokemontcg set info %s: %v", ErrSourceFailed, setCode, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: pokemontcg set info %s: status %d", ErrSourceFailed, setCode, resp.StatusCode())
	}
	return &SetInfo{
		Code:        out.Data.ID,
		Name:        out.Data.Name,
		ReleaseDate: parseReleaseDate(out.Data.ReleaseDate),
		Total:       out.Data.Total,
	}, nil
}

func (c ptcgCard) toMetadata() models.CardMetadata {
	meta := models.CardMetadata{
		CardID:         c.ID,
		Name:           c.Name,
		SetCode:        c.Set.ID,
		SetName:        c.Set.Name,
		CardNumber:     c.Number,
		SetReleaseDate: parseReleaseDate(c.Set.ReleaseDate),
	}
	if c.RegulationMark != "" {
		mark := c.RegulationMark
		meta.RegulationMark = &mark
	}
	if c.Legalities.Standard != "" {
		legality := c.Legalities.Standard
		meta.LegalityStandard = &legality
	}
	if c.TCGPlayer.URL != "" {
		url := c.TCGPlayer.URL
		meta.TCGPlayerURL = &url
	}
	if c.Cardmarket.URL != "" {
		url := c.Cardmarket.URL
		meta.CardmarketURL = &url
	}
	if c.Images.Small != "" {
		img := c.Images.Small
		meta.ImageURL = &img
	}
	return meta
}

// Release dates come back as "2023/03/31".
func parseReleaseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006/01/02", raw)
	if err != nil {
		return nil
	}
	return &t
}
