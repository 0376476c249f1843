package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
)

// EBay quotes the US sell side from the Browse API. It only supports
// per-card lookups; set sweeps walk the catalog card by card.
type EBay struct {
	client   *resty.Client
	oauthURL string
	appID    string
	certID   string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewEBay(cfg config.SourcesConfig) *EBay {
	return &EBay{
		client:   newClient(cfg.EBay.BrowseURL, cfg),
		oauthURL: cfg.EBay.OAuthURL,
		appID:    cfg.EBay.AppID,
		certID:   cfg.EBay.CertID,
	}
}

func (e *EBay) Name() string { return KeyEBay }

// FetchSet is not supported by the Browse API; callers iterate cards.
func (e *EBay) FetchSet(context.Context, string) ([]PriceRow, error) {
	return nil, nil
}

type ebaySearchResponse struct {
	ItemSummaries []struct {
		Price struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"price"`
		Seller struct {
			Username           string `json:"username"`
			FeedbackPercentage string `json:"feedbackPercentage"`
			FeedbackScore      int    `json:"feedbackScore"`
		} `json:"seller"`
	} `json:"itemSummaries"`
}

func (e *EBay) FetchCard(ctx context.Context, cardID string) (*PriceRow, error) {
	token, err := e.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var out ebaySearchResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("q", "pokemon "+cardID).
		SetQueryParam("limit", "1").
		SetResult(&out).
		Get("/item_summary/search")
	if err != nil {
		return nil, fmt.Errorf("%w: ebay card %s: %v", ErrSourceFailed, cardID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: ebay card %s: status %d", ErrSourceFailed, cardID, resp.StatusCode())
	}
	if len(out.ItemSummaries) == 0 {
		return nil, nil
	}

	item := out.ItemSummaries[0]
	if item.Price.Currency != "USD" {
		return nil, nil
	}
	price, err := decimal.NewFromString(item.Price.Value)
	if err != nil || !price.IsPositive() {
		return nil, nil
	}
	usd := price.Round(2)
	row := PriceRow{CardID: cardID, PriceUSD: &usd}
	if item.Seller.Username != "" {
		seller := item.Seller.Username
		row.SellerID = &seller
		if rating, err := decimal.NewFromString(item.Seller.FeedbackPercentage); err == nil {
			row.SellerRating = &rating
		}
		sales := item.Seller.FeedbackScore
		row.SellerSales = &sales
	}
	return &row, nil
}

type ebayTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (e *EBay) accessToken(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.token != "" && time.Now().Before(e.tokenExpiry) {
		return e.token, nil
	}

	var out ebayTokenResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBasicAuth(e.appID, e.certID).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      "https://api.ebay.com/oauth/api_scope",
		}).
		SetResult(&out).
		Post(e.oauthURL)
	if err != nil {
		return "", fmt.Errorf("%w: ebay oauth: %v", ErrSourceFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: ebay oauth: status %d", ErrSourceFailed, resp.StatusCode())
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: ebay oauth: empty token", ErrSourceFailed)
	}

	e.token = out.AccessToken
	e.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second).Add(-time.Minute)
	return e.token, nil
}
