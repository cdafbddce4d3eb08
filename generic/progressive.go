package generic

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// =============================================================================
// BAND ACCUMULATION - Slice-by-slice progressive contribution
// =============================================================================

// BandShare is the part of a gross amount attributed to one band.
type BandShare struct {
	Band   Band
	Slice  decimal.Decimal // portion of gross inside this band
	Amount decimal.Decimal // Truncate2(Slice * Rate)
}

// AccumulateBands walks bands in order with a running previous-limit cursor
// starting at zero. Each positive slice contributes Truncate2(slice * rate);
// the total is the truncated sum of those truncated parts. Iteration stops
// once gross is fully covered, so a gross equal to a band limit attributes
// nothing to the next band.
func AccumulateBands(gross decimal.Decimal, bands []Band) ([]BandShare, decimal.Decimal) {
	var shares []BandShare
	previous := decimal.Zero
	total := decimal.Zero

	for _, band := range bands {
		slice := decimal.Max(decimal.Zero, decimal.Min(gross, band.UpperLimit).Sub(previous))
		if slice.IsPositive() {
			amount := Truncate2(slice.Mul(band.Rate))
			total = total.Add(amount)
			shares = append(shares, BandShare{Band: band, Slice: slice, Amount: amount})
		}
		previous = band.UpperLimit
		if gross.LessThanOrEqual(previous) {
			break
		}
	}
	return shares, Truncate2(total)
}

// =============================================================================
// TIER SELECTION - Whole-base withholding
// =============================================================================

// SelectTier returns the first tier whose upper limit is at or above base.
// Falls back to the last tier when none matches. ok is false only for an
// empty table.
func SelectTier(base decimal.Decimal, tiers []Tier) (Tier, bool) {
	if len(tiers) == 0 {
		return Tier{}, false
	}
	tier, found := lo.Find(tiers, func(t Tier) bool { return t.Covers(base) })
	if !found {
		return tiers[len(tiers)-1], true
	}
	return tier, true
}

// TierTax applies a tier to base: Truncate2(base * rate - deduction),
// clamped at zero.
func TierTax(base decimal.Decimal, tier Tier) decimal.Decimal {
	tax := Truncate2(base.Mul(tier.Rate).Sub(tier.Deduction))
	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax
}
