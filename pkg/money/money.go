// Package money holds currency-amount helpers shared across features.
package money

import "math"

// Round2 rounds a currency amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
