package rajaemas

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hargaemas/internal/fetcher"
	"hargaemas/internal/source"
)

// DefaultURL is the page whose price tables are populated client-side
const DefaultURL = "https://rajaemasindonesia.co.id/"

// Adapter extracts prices from the two tables rendered by the page scripts.
//
//	table 1: Kadar Karat | Harga per Gram
//	table 2: Jenis | Kadar % | Harga per Gram | Karat
type Adapter struct {
	fetcher fetcher.TextFetcher
	url     string
}

// New creates a new adapter. f should be a rendered-mode fetcher.
func New(f fetcher.TextFetcher, url string) *Adapter {
	return &Adapter{
		fetcher: f,
		url:     url,
	}
}

// ID returns the key this adapter reports under
func (a *Adapter) ID() source.ID {
	return source.RajaEmas
}

// FetchAndExtract renders the page and reads both tables
func (a *Adapter) FetchAndExtract(ctx context.Context) (source.Prices, error) {
	html, err := a.fetcher.FetchText(ctx, a.url)
	if err != nil {
		return source.Prices{}, err
	}

	prices, err := Extract(html)
	if err != nil {
		return source.Prices{}, err
	}

	slog.Debug("extracted prices",
		"source", a.ID(),
		"jewelry", len(prices.Jewelry),
		"bullion", len(prices.Bullion))

	return prices, nil
}

// Extract parses the rendered DOM. Only the first two tables are read.
func Extract(html string) (source.Prices, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return source.Prices{}, source.NewExtractionError(source.RajaEmas, "parse rendered DOM", err)
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return source.Prices{}, source.NewExtractionError(source.RajaEmas, "no price table in rendered page", nil)
	}

	return source.Prices{
		Jewelry: readTable(tables.Eq(0), 2, 1),
		Bullion: readTable(tables.Eq(1), 3, 2),
	}, nil
}

// readTable reads label/buy pairs from the body rows of table. Rows with
// fewer than minCells data cells, an empty label or no price are skipped.
func readTable(table *goquery.Selection, minCells, priceCell int) []source.PriceQuote {
	quotes := []source.PriceQuote{}
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			return
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		buy, ok := source.ParsePrice(cells.Eq(priceCell).Text())
		if label == "" || !ok {
			return
		}

		quotes = append(quotes, source.PriceQuote{
			Label: label,
			Buy:   source.Price(buy),
		})
	})
	return quotes
}
