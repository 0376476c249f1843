package generator

import (
	"net/url"

	"tcgradar/internal/models"
)

const (
	tcgplayerSearchURL  = "https://www.tcgplayer.com/search/pokemon/product?q="
	cardmarketSearchURL = "https://www.cardmarket.com/en/Pokemon/Cards?searchString="
)

// deepLinks prefers the marketplace URLs the metadata source supplied and
// falls back to a search link built from the card name.
func deepLinks(meta *models.CardMetadata) (tcgURL, cmURL *string) {
	if meta == nil {
		return nil, nil
	}
	if meta.TCGPlayerURL != nil && *meta.TCGPlayerURL != "" {
		tcgURL = meta.TCGPlayerURL
	} else if meta.Name != "" {
		link := tcgplayerSearchURL + url.QueryEscape(meta.Name)
		tcgURL = &link
	}
	if meta.CardmarketURL != nil && *meta.CardmarketURL != "" {
		cmURL = meta.CardmarketURL
	} else if meta.Name != "" {
		link := cardmarketSearchURL + url.QueryEscape(meta.Name)
		cmURL = &link
	}
	return tcgURL, cmURL
}
