// Package formula derives published prices from a base rate when a source
// only exposes the rate and its margin configuration.
package formula

import "math"

// ModePercentFirst applies the percentage to the base before adding the fixed amount.
const ModePercentFirst = "percent-first"

// Margin is a markup made of a fixed rupiah amount and a percentage.
type Margin struct {
	Rupiah  float64
	Percent float64
	Mode    string
}

// Apply returns the base price b with margin m applied.
//
//	percent-first: (b + b*p/100) + r
//	otherwise:     (b + r) * (1 + p/100)
func Apply(b float64, m Margin) float64 {
	if m.Mode == ModePercentFirst {
		return (b + b*m.Percent/100) + m.Rupiah
	}
	return (b + m.Rupiah) * (1 + m.Percent/100)
}

// Scale converts a 24K per-gram price to the given karat.
func Scale(perGramK24 float64, karat int) float64 {
	return perGramK24 * float64(karat) / 24
}

// PerMille applies a purity factor expressed in parts per thousand.
func PerMille(rate, murni float64) float64 {
	return rate * murni / 1000
}

// Round rounds half away from zero to a whole rupiah.
func Round(v float64) int64 {
	return int64(math.Round(v))
}
