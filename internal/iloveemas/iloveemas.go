package iloveemas

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hargaemas/internal/fetcher"
	"hargaemas/internal/label"
	"hargaemas/internal/source"
)

// DefaultURL is the server-rendered price page. Every tab's content is
// present in the HTML regardless of which tab is active.
const DefaultURL = "https://iloveemas.co.id/harga/"

// Section ids on the price page.
const (
	// SectionJewelryBuy lists what the shop pays per gram, by kadar
	SectionJewelryBuy = "perhiasan-emas"
	// SectionJewelrySell lists the per-gram material rate, by kadar
	SectionJewelrySell = "material-emas"
	// SectionBullionBuy lists bullion buy prices by product
	SectionBullionBuy = "batangan"
)

const (
	labelClass  = "text-start"
	valueClass  = "text-end"
	headerClass = "head"
)

// Adapter extracts prices from the tabbed sections of the price page.
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
	return source.ILoveEmas
}

// FetchAndExtract fetches the page and reads its three price sections
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

// Extract reads the jewelry buy section, joins it with the material sell
// section by normalized kadar label, and reads the bullion section.
//
// Bullion sell data on the page is priced per weight rather than per gram
// and is not comparable, so bullion quotes carry no sell price.
func Extract(html string) (source.Prices, error) {
	page := newPage(html)

	buyRows, ok := page.section(SectionJewelryBuy)
	if !ok {
		return source.Prices{}, missingSection(SectionJewelryBuy)
	}

	bullionRows, ok := page.section(SectionBullionBuy)
	if !ok {
		return source.Prices{}, missingSection(SectionBullionBuy)
	}

	sellRows, ok := page.section(SectionJewelrySell)
	sells := label.NewIndex(sellRows)
	switch {
	case !ok:
		slog.Warn("sell section not found, jewelry sell prices left empty",
			"source", source.ILoveEmas,
			"section", SectionJewelrySell)
	case sells.Len() == 0:
		slog.Warn("sell section has no rows, jewelry sell prices left empty",
			"source", source.ILoveEmas,
			"section", SectionJewelrySell)
	}

	jewelry := make([]source.PriceQuote, 0, len(buyRows))
	for _, r := range buyRows {
		jewelry = append(jewelry, source.PriceQuote{
			Label: r.Label,
			Buy:   source.Price(r.Price),
			Sell:  sells.Lookup(r.Label),
		})
	}

	bullion := make([]source.PriceQuote, 0, len(bullionRows))
	for _, r := range bullionRows {
		bullion = append(bullion, source.PriceQuote{
			Label: r.Label,
			Buy:   source.Price(r.Price),
		})
	}

	return source.Prices{Jewelry: jewelry, Bullion: bullion}, nil
}

func missingSection(id string) error {
	return source.NewExtractionError(source.ILoveEmas, fmt.Sprintf("section %q not found", id), nil)
}

// page holds the parsed document along with the raw markup for the slicing fallback
type page struct {
	raw string
	doc *goquery.Document
}

func newPage(html string) *page {
	p := &page{raw: html}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("parsing price page failed, using raw section slicing",
			"source", source.ILoveEmas,
			"error", err)
		return p
	}
	p.doc = doc
	return p
}

// section returns the label/value rows of the element carrying id. When the
// id sits on an element without rows of its own (a tab header rather than
// the tab body), the rows are read from the raw markup between the id and
// the next id on the page. The bool reports whether the id exists at all.
func (p *page) section(id string) ([]label.Row, bool) {
	if p.doc != nil {
		sel := p.doc.Find(fmt.Sprintf("[id=%q]", id)).First()
		if sel.Length() == 0 {
			return nil, false
		}
		if rows := readRows(sel); len(rows) > 0 {
			return rows, true
		}
		rows, _ := sliceSection(p.raw, id)
		return rows, true
	}
	return sliceSection(p.raw, id)
}

// readRows extracts label/value pairs from every non-header row under sel
func readRows(sel *goquery.Selection) []label.Row {
	rows := []label.Row{}
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass(headerClass) || tr.Find("."+headerClass).Length() > 0 {
			return
		}

		labelCell := tr.Find("." + labelClass).First()
		valueCell := tr.Find("." + valueClass).First()
		if labelCell.Length() == 0 || valueCell.Length() == 0 {
			return
		}

		name := strings.TrimSpace(labelCell.Text())
		price, ok := source.ParsePrice(valueCell.Text())
		if name == "" || !ok {
			return
		}

		rows = append(rows, label.Row{Label: name, Price: price})
	})
	return rows
}
