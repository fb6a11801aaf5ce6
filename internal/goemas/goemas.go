package goemas

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"github.com/titanous/json5"

	"hargaemas/internal/fetcher"
	"hargaemas/internal/formula"
	"hargaemas/internal/source"
)

// DefaultURL is the page embedding its price state as inline script
const DefaultURL = "https://goemas.id/"

const (
	// JewelryMarker selects the standard-condition kadar entries of the unit list
	JewelryMarker = "Jenis Emas Segala Kondisi"
	// BullionMarker selects the bullion entries of the unit list
	BullionMarker = "LM :"
)

var (
	ratesPattern    = regexp.MustCompile(`let rates = (\{[^;]+\})`)
	unitListPattern = regexp.MustCompile(`let unitList = (\[[^\n]*\])`)
	bullionPrefix   = regexp.MustCompile(`^24\s*K\s*-\s*LM\s*:\s*`)
)

// Adapter derives sell prices from the base rate and the purity of each unit.
// The page only publishes what the shop pays, so buy is always nil.
type Adapter struct {
	fetcher fetcher.TextFetcher
	url     string
}

// New creates a new adapter. f should be a plain-mode fetcher.
func New(f fetcher.TextFetcher, url string) *Adapter {
	return &Adapter{
		fetcher: f,
		url:     url,
	}
}

// ID returns the key this adapter reports under
func (a *Adapter) ID() source.ID {
	return source.GoEmas
}

// FetchAndExtract fetches the page and evaluates its embedded price state
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

// Extract locates the rates object and the unit list in the page script and
// computes a per-gram price for every matching unit:
//
//	sell = round(sell_rate * murni / 1000)
func Extract(html string) (source.Prices, error) {
	var rates map[string]any
	if err := decodeLiteral(html, ratesPattern, "rates", &rates); err != nil {
		return source.Prices{}, err
	}

	var units []map[string]any
	if err := decodeLiteral(html, unitListPattern, "unitList", &units); err != nil {
		return source.Prices{}, err
	}

	rawRate, ok := rates["sell_rate"]
	if !ok || rawRate == nil {
		return source.Prices{}, source.NewFormulaError(source.GoEmas, "rates.sell_rate", nil)
	}
	rate, err := cast.ToFloat64E(rawRate)
	if err != nil {
		return source.Prices{}, source.NewFormulaError(source.GoEmas, "rates.sell_rate", err)
	}
	if rate <= 0 {
		return source.Prices{}, source.NewFormulaError(source.GoEmas, "rates.sell_rate", fmt.Errorf("non-positive rate %v", rate))
	}

	prices := source.Prices{
		Jewelry: []source.PriceQuote{},
		Bullion: []source.PriceQuote{},
	}

	for _, u := range units {
		name := cast.ToString(u["name"])

		murni, err := cast.ToFloat64E(u["murni"])
		if err != nil || murni <= 0 {
			slog.Debug("skipping unit without purity", "source", source.GoEmas, "name", name)
			continue
		}
		sell := source.Price(formula.Round(formula.PerMille(rate, murni)))

		if strings.Contains(name, JewelryMarker) {
			if quality := strings.TrimSpace(cast.ToString(u["quality"])); quality != "" {
				prices.Jewelry = append(prices.Jewelry, source.PriceQuote{
					Label: quality + "K",
					Sell:  sell,
				})
			}
		}

		if strings.Contains(name, BullionMarker) {
			if product := strings.TrimSpace(bullionPrefix.ReplaceAllString(name, "")); product != "" {
				prices.Bullion = append(prices.Bullion, source.PriceQuote{
					Label: product,
					Sell:  sell,
				})
			}
		}
	}

	return prices, nil
}

// decodeLiteral captures a JavaScript literal with pattern and decodes it.
// JSON5 accepts the unquoted keys and trailing commas found in page scripts.
func decodeLiteral(html string, pattern *regexp.Regexp, name string, v any) error {
	m := pattern.FindStringSubmatch(html)
	if m == nil {
		return source.NewExtractionError(source.GoEmas, name+" not found in page", nil)
	}
	if err := json5.Unmarshal([]byte(m[1]), v); err != nil {
		return source.NewExtractionError(source.GoEmas, "decode "+name, err)
	}
	return nil
}
