package source

import "strings"

// ID identifies one of the upstream price sources.
type ID string

const (
	// RajaEmas is the JavaScript-rendered table page
	RajaEmas ID = "rajaEmas"
	// ILoveEmas is the server-rendered page with tabbed sections
	ILoveEmas ID = "iloveemas"
	// GoEmas is the page embedding its prices as inline script state
	GoEmas ID = "goEmas"
	// EmasNow is the public JSON price feed
	EmasNow ID = "emasNow"
)

// AllIDs lists every source in display order.
var AllIDs = []ID{RajaEmas, ILoveEmas, GoEmas, EmasNow}

// PriceQuote is a single row of a price table. Label is either a purity tier
// ("22K") or a bullion product name. A nil price means the source does not
// publish that side.
type PriceQuote struct {
	Label string `json:"label"`
	Buy   *int64 `json:"buy"`
	Sell  *int64 `json:"sell"`
}

// Price returns a pointer to v, for building quotes.
func Price(v int64) *int64 {
	return &v
}

// Prices is the raw record set extracted by an adapter.
type Prices struct {
	Jewelry []PriceQuote
	Bullion []PriceQuote
}

// SourceResult is the outcome of one adapter run.
// When Error is set both quote lists are empty.
type SourceResult struct {
	Jewelry []PriceQuote `json:"jewelry"`
	Bullion []PriceQuote `json:"bullion"`
	Error   *string      `json:"error"`
}

// Succeeded wraps extracted prices. Quotes without a label are dropped.
func Succeeded(p Prices) SourceResult {
	return SourceResult{
		Jewelry: labelled(p.Jewelry),
		Bullion: labelled(p.Bullion),
	}
}

// Failed builds the result reported for a source whose fetch or extraction failed.
func Failed(err error) SourceResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return SourceResult{
		Jewelry: []PriceQuote{},
		Bullion: []PriceQuote{},
		Error:   &msg,
	}
}

// OK reports whether the source produced a result without error.
func (r SourceResult) OK() bool {
	return r.Error == nil
}

// Err returns the error message, or an empty string for a successful result.
func (r SourceResult) Err() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func labelled(quotes []PriceQuote) []PriceQuote {
	out := make([]PriceQuote, 0, len(quotes))
	for _, q := range quotes {
		q.Label = strings.TrimSpace(q.Label)
		if q.Label == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

// AggregateResult maps every source to its outcome.
type AggregateResult map[ID]SourceResult

// Counts returns how many sources succeeded and failed.
func (a AggregateResult) Counts() (succeeded, failed int) {
	for _, r := range a {
		if r.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// ParsePrice strips every non-digit from text and parses the remainder.
// It reports false when nothing numeric is left or the value is zero.
func ParsePrice(text string) (int64, bool) {
	var v int64
	seen := false
	for _, r := range text {
		if r < '0' || r > '9' {
			continue
		}
		seen = true
		v = v*10 + int64(r-'0')
		if v < 0 {
			return 0, false
		}
	}
	if !seen || v == 0 {
		return 0, false
	}
	return v, true
}

