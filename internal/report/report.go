// Package report renders an aggregation result as a static HTML page.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"hargaemas/internal/source"
)

//go:embed index.html.tmpl
var pageTemplate string

var page = template.Must(template.New("index").Parse(pageTemplate))

// TimestampLayout matches the id-ID locale date and time rendering
const TimestampLayout = "2/1/2006, 15.04.05"

// DefaultTimezone is the zone the footer timestamp is shown in
const DefaultTimezone = "Asia/Makassar"

// Display names per source, in page order
var sourceNames = map[source.ID]string{
	source.RajaEmas:  "Raja Emas Indonesia",
	source.ILoveEmas: "I Love Emas",
	source.GoEmas:    "Go Emas",
	source.EmasNow:   "Emas Now",
}

var (
	jewelryColumns = []string{"Kadar", "Harga Beli", "Harga Jual"}
	bullionColumns = []string{"Produk", "Harga Beli", "Harga Jual"}
)

type cell struct {
	Text string
	NA   bool
}

type row struct {
	Label string
	Buy   cell
	Sell  cell
}

type section struct {
	Title   string
	Columns []string
	Rows    []row
	Error   string
}

type view struct {
	Sections  []section
	UpdatedAt string
	Zone      string
}

// Rupiah formats an amount with Indonesian digit grouping, e.g. "Rp 1.015.000".
func Rupiah(amount int64) string {
	return "Rp " + message.NewPrinter(language.Indonesian).Sprintf("%d", amount)
}

// Render writes the page for agg. Sources missing from agg are rendered as
// empty tables.
func Render(w io.Writer, agg source.AggregateResult, updatedAt time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	local := updatedAt.In(loc)
	v := view{
		UpdatedAt: local.Format(TimestampLayout),
		Zone:      local.Format("MST"),
	}
	for _, id := range source.AllIDs {
		res := agg[id]
		name := sourceNames[id]
		v.Sections = append(v.Sections,
			newSection(name+" — Harga Perhiasan Emas", jewelryColumns, res.Jewelry, res.Error),
			newSection(name+" — Logam Mulia", bullionColumns, res.Bullion, res.Error),
		)
	}

	if err := page.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func newSection(title string, columns []string, quotes []source.PriceQuote, errMsg *string) section {
	s := section{Title: title, Columns: columns}
	if errMsg != nil {
		s.Error = *errMsg
		return s
	}
	for _, q := range quotes {
		s.Rows = append(s.Rows, row{
			Label: q.Label,
			Buy:   priceCell(q.Buy),
			Sell:  priceCell(q.Sell),
		})
	}
	return s
}

func priceCell(p *int64) cell {
	if p == nil {
		return cell{Text: "-", NA: true}
	}
	return cell{Text: Rupiah(*p)}
}
