package emasnow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cast"

	"hargaemas/internal/fetcher"
	"hargaemas/internal/formula"
	"hargaemas/internal/source"
)

// DefaultURL is the public JSON price feed
const DefaultURL = "https://emasnow.id/wp-content/uploads/harga-emas.json"

// BullionLabel is the single bullion product derived from the feed
const BullionLabel = "Logam Mulia K24"

// Karats lists the jewelry tiers published, in display order
var Karats = []int{24, 22, 18, 9}

// FeedResponse represents the price feed. Numeric leaves arrive as numbers
// or numeric strings depending on how the feed was last edited.
type FeedResponse struct {
	PricePerGramIDR any `json:"price_per_gram_idr"`
	Perhiasan       *struct {
		InstaCash *MarginConfig `json:"insta_cash"`
		MaxiGold  *MarginConfig `json:"maxi_gold"`
	} `json:"perhiasan"`
}

// MarginConfig is one margin tier of the feed
type MarginConfig struct {
	Rupiah  any `json:"rupiah"`
	Percent any `json:"percent"`
	Mode    any `json:"mode"`
}

// Margin converts the config, treating anything non-numeric as zero
func (m *MarginConfig) Margin() formula.Margin {
	return formula.Margin{
		Rupiah:  cast.ToFloat64(m.Rupiah),
		Percent: cast.ToFloat64(m.Percent),
		Mode:    cast.ToString(m.Mode),
	}
}

// Adapter derives buy prices from the feed's base rate and margins.
// The feed only covers what the shop pays, so sell is always nil.
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
	return source.EmasNow
}

// FetchAndExtract fetches the feed and derives the quotes
func (a *Adapter) FetchAndExtract(ctx context.Context) (source.Prices, error) {
	body, err := a.fetcher.FetchText(ctx, a.url)
	if err != nil {
		return source.Prices{}, err
	}

	prices, err := Extract(body)
	if err != nil {
		return source.Prices{}, err
	}

	slog.Debug("extracted prices",
		"source", a.ID(),
		"jewelry", len(prices.Jewelry),
		"bullion", len(prices.Bullion))

	return prices, nil
}

// Extract parses the feed. Jewelry tiers use the insta_cash margin scaled
// by karat/24; the bullion quote uses the maxi_gold margin on the 24K base.
func Extract(body string) (source.Prices, error) {
	var feed FeedResponse
	if err := json.Unmarshal([]byte(body), &feed); err != nil {
		return source.Prices{}, source.NewExtractionError(source.EmasNow, "decode price feed", err)
	}

	if feed.PricePerGramIDR == nil {
		return source.Prices{}, source.NewFormulaError(source.EmasNow, "price_per_gram_idr", nil)
	}
	base, err := cast.ToFloat64E(feed.PricePerGramIDR)
	if err != nil {
		return source.Prices{}, source.NewFormulaError(source.EmasNow, "price_per_gram_idr", err)
	}
	if base <= 0 {
		return source.Prices{}, source.NewFormulaError(source.EmasNow, "price_per_gram_idr", fmt.Errorf("non-positive price %v", base))
	}

	if feed.Perhiasan == nil {
		return source.Prices{}, source.NewFormulaError(source.EmasNow, "perhiasan", nil)
	}
	if feed.Perhiasan.InstaCash == nil {
		return source.Prices{}, source.NewFormulaError(source.EmasNow, "perhiasan.insta_cash", nil)
	}
	if feed.Perhiasan.MaxiGold == nil {
		return source.Prices{}, source.NewFormulaError(source.EmasNow, "perhiasan.maxi_gold", nil)
	}

	perGramK24 := formula.Apply(base, feed.Perhiasan.InstaCash.Margin())

	jewelry := make([]source.PriceQuote, 0, len(Karats))
	for _, k := range Karats {
		jewelry = append(jewelry, source.PriceQuote{
			Label: fmt.Sprintf("%dK", k),
			Buy:   source.Price(formula.Round(formula.Scale(perGramK24, k))),
		})
	}

	bullion := []source.PriceQuote{{
		Label: BullionLabel,
		Buy:   source.Price(formula.Round(formula.Apply(base, feed.Perhiasan.MaxiGold.Margin()))),
	}}

	return source.Prices{Jewelry: jewelry, Bullion: bullion}, nil
}
