package source

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Adapter is the interface every price source implements.
// Each adapter knows how to fetch its upstream page exactly once and
// turn it into jewelry and bullion quotes.
type Adapter interface {
	// ID returns the fixed key this adapter reports under.
	ID() ID

	// FetchAndExtract retrieves the upstream content and extracts the quotes.
	// Returns an error if the fetch or the extraction fails.
	FetchAndExtract(ctx context.Context) (Prices, error)
}

// Run executes the adapter and converts any error, or panic, into a failed
// SourceResult so that a broken source never escapes its own boundary.
func Run(ctx context.Context, a Adapter) SourceResult {
	var (
		prices Prices
		err    error
		pc     panics.Catcher
	)

	pc.Try(func() {
		prices, err = a.FetchAndExtract(ctx)
	})

	if r := pc.Recovered(); r != nil {
		return Failed(fmt.Errorf("adapter panicked: %v", r.Value))
	}
	if err != nil {
		return Failed(err)
	}
	return Succeeded(prices)
}
