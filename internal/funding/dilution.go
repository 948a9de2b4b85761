package funding

import (
	"fmt"
	"math"
)

// BaselineShares is the unit share pool a company starts from before any
// dilution is applied.
const BaselineShares = 100000.0

// RoundDilution is the dilution recorded for one historical round, in
// sequence order. A zero percentage means no dilution was recorded.
type RoundDilution struct {
	SequenceNumber int
	EquityDiluted  float64
}

// TotalShares folds cumulative dilution over a founder's rounds, ordered by
// sequence number ascending. Each diluted round grows the pool by
// shares*d/(1-d) so that the new investors end up owning d of the total.
func TotalShares(history []RoundDilution) (float64, error) {
	total := BaselineShares
	for _, round := range history {
		d := round.EquityDiluted
		if d == 0 {
			continue
		}
		if d < 0 || d >= 100 {
			return 0, fmt.Errorf("%w: equity diluted %.2f%% in round %d", ErrArithmetic, d, round.SequenceNumber)
		}
		frac := d / 100
		total += total * frac / (1 - frac)
	}
	return math.Round(total), nil
}

// EquityPercentage computes the stake a single commitment buys against the
// round's valuation. The valuation must be positive; a zero valuation is an
// input error, never an infinity.
func EquityPercentage(amountInvested, valuationAmount float64) (float64, error) {
	if valuationAmount <= 0 {
		return 0, fmt.Errorf("%w: valuation amount must be positive", ErrArithmetic)
	}
	if amountInvested < 0 {
		return 0, fmt.Errorf("%w: amount invested must not be negative", ErrValidation)
	}
	return amountInvested / valuationAmount * 100, nil
}

// RoundPercent formats an equity percentage for display, rounded to two
// decimal places.
func RoundPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}
