package generator

import (
	"testing"

	"tcgradar/internal/models"
)

func TestDeepLinksPreferStoredURLs(t *testing.T) {
	item := meta("sv1-25", "Pikachu ex")
	item.TCGPlayerURL = strPtr("https://www.tcgplayer.com/product/12345")
	item.CardmarketURL = strPtr("https://www.cardmarket.com/en/Pokemon/Products/Singles/151/Pikachu-ex")

	tcgURL, cmURL := deepLinks(&item)
	if tcgURL == nil || *tcgURL != *item.TCGPlayerURL {
		t.Fatalf("expected stored tcgplayer url, got %v", tcgURL)
	}
	if cmURL == nil || *cmURL != *item.CardmarketURL {
		t.Fatalf("expected stored cardmarket url, got %v", cmURL)
	}
}

func TestDeepLinksFallBackToSearch(t *testing.T) {
	item := meta("sv5-223", "Iron Hands ex")

	tcgURL, cmURL := deepLinks(&item)
	if tcgURL == nil || *tcgURL != "https://www.tcgplayer.com/search/pokemon/product?q=Iron+Hands+ex" {
		t.Fatalf("unexpected tcgplayer search url: %v", tcgURL)
	}
	if cmURL == nil || *cmURL != "https://www.cardmarket.com/en/Pokemon/Cards?searchString=Iron+Hands+ex" {
		t.Fatalf("unexpected cardmarket search url: %v", cmURL)
	}
}

func TestDeepLinksNilMetadata(t *testing.T) {
	tcgURL, cmURL := deepLinks(nil)
	if tcgURL != nil || cmURL != nil {
		t.Fatal("nil metadata should produce no links")
	}

	empty := models.CardMetadata{CardID: "sv1-1"}
	tcgURL, cmURL = deepLinks(&empty)
	if tcgURL != nil || cmURL != nil {
		t.Fatal("metadata without a name should produce no links")
	}
}
