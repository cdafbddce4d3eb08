package generic_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func inss2022() []generic.Band {
	return []generic.Band{
		generic.NewBand("1212.00", "0.075"),
		generic.NewBand("2427.35", "0.09"),
		generic.NewBand("3641.03", "0.12"),
		generic.NewBand("7087.22", "0.14"),
	}
}

func irrf2022() []generic.Tier {
	return []generic.Tier{
		generic.NewTier("1903.98", "0", "0"),
		generic.NewTier("2826.65", "0.075", "142.80"),
		generic.NewTier("3751.05", "0.15", "354.80"),
		generic.NewTier("4664.68", "0.225", "636.13"),
		generic.NewTopTier("0.275", "869.36"),
	}
}

// =============================================================================
// BAND ACCUMULATION
// =============================================================================

func TestAccumulateBands_ThreeBands(t *testing.T) {
	shares, total := generic.AccumulateBands(d("3000.00"), inss2022())

	require.Len(t, shares, 3)
	assert.True(t, shares[0].Amount.Equal(d("90.90")), "got %s", shares[0].Amount)
	assert.True(t, shares[1].Slice.Equal(d("1215.35")))
	assert.True(t, shares[1].Amount.Equal(d("109.38")), "got %s", shares[1].Amount)
	assert.True(t, shares[2].Slice.Equal(d("572.65")))
	assert.True(t, shares[2].Amount.Equal(d("68.71")), "got %s", shares[2].Amount)
	assert.True(t, total.Equal(d("268.99")), "got %s", total)
}

func TestAccumulateBands_AboveCeiling(t *testing.T) {
	shares, total := generic.AccumulateBands(d("10000"), inss2022())

	require.Len(t, shares, 4)
	assert.True(t, total.Equal(d("828.38")), "got %s", total)
}

func TestAccumulateBands_ExactLimitStopsAtBand(t *testing.T) {
	// GIVEN: Gross equal to the first band's limit
	// THEN: Nothing is attributed to the second band
	shares, total := generic.AccumulateBands(d("1212.00"), inss2022())

	require.Len(t, shares, 1)
	assert.True(t, total.Equal(d("90.90")))
}

func TestAccumulateBands_Zero(t *testing.T) {
	shares, total := generic.AccumulateBands(decimal.Zero, inss2022())

	assert.Empty(t, shares)
	assert.True(t, total.IsZero())
}

func TestAccumulateBands_SumsTruncatedParts(t *testing.T) {
	// GIVEN: A gross where each slice has a sub-cent remainder
	//   band 2: 1215.35 × 0.09 = 109.3815
	//   band 3: 0.0725 × 0.12  = 0.0087
	// Truncating the raw sum would give 200.29; summing truncated parts gives 200.28.
	_, total := generic.AccumulateBands(d("2427.4225"), inss2022())

	assert.True(t, total.Equal(d("200.28")), "got %s", total)
}

func TestAccumulateBands_Monotonic(t *testing.T) {
	step := d("37.53")
	previous := decimal.Zero
	for gross := decimal.Zero; gross.LessThan(d("9000")); gross = gross.Add(step) {
		_, total := generic.AccumulateBands(gross, inss2022())
		require.False(t, total.LessThan(previous), "contribution decreased at gross %s", gross)
		require.True(t, total.Equal(generic.Truncate2(total)), "total not truncated at gross %s", gross)
		previous = total
	}
}

// =============================================================================
// TIER SELECTION
// =============================================================================

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		wantRate  string
		unbounded bool
	}{
		{"exempt", "1500", "0", false},
		{"exactly at limit", "1903.98", "0", false},
		{"just above limit", "1903.99", "0.075", false},
		{"second tier", "2731.01", "0.075", false},
		{"top tier", "100000", "0.275", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := generic.SelectTier(d(tt.base), irrf2022())
			require.True(t, ok)
			assert.True(t, tier.Rate.Equal(d(tt.wantRate)), "rate %s", tier.Rate)
			assert.Equal(t, tt.unbounded, tier.Unbounded())
		})
	}
}

func TestSelectTier_FallsBackToLast(t *testing.T) {
	// A table without an unbounded tier still yields its last tier
	tiers := []generic.Tier{
		generic.NewTier("1000", "0", "0"),
		generic.NewTier("2000", "0.1", "100"),
	}
	tier, ok := generic.SelectTier(d("5000"), tiers)

	require.True(t, ok)
	assert.True(t, tier.Rate.Equal(d("0.1")))
}

func TestSelectTier_Empty(t *testing.T) {
	_, ok := generic.SelectTier(d("1"), nil)
	assert.False(t, ok)
}

func TestTierTax(t *testing.T) {
	tier := generic.NewTier("2826.65", "0.075", "142.80")

	// 2731.01 × 0.075 = 204.82575 − 142.80 = 62.02575
	assert.True(t, generic.TierTax(d("2731.01"), tier).Equal(d("62.02")))

	// Negative results are clamped
	assert.True(t, generic.TierTax(d("1000"), tier).IsZero())
	assert.True(t, generic.TierTax(decimal.Zero, tier).IsZero())
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

func TestTruncate2(t *testing.T) {
	assert.Equal(t, "1.99", generic.Truncate2(d("1.999")).String())
	assert.Equal(t, "-5.67", generic.Truncate2(d("-5.678")).String())
	assert.Equal(t, "109.38", generic.Truncate2(d("109.3815")).String())

	once := generic.Truncate2(d("268.9995"))
	assert.True(t, once.Equal(generic.Truncate2(once)))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "3000.00", generic.FormatMoney(d("3000")))
	assert.Equal(t, "7.50%", generic.FormatPercent(d("0.075"), 2))
	assert.Equal(t, "12.00%", generic.FormatPercent(d("0.12"), 2))
	assert.Equal(t, "0%", generic.FormatPercent(d("0"), 0))
	assert.Equal(t, "8%", generic.FormatPercent(d("0.075"), 0))
	assert.Equal(t, "15%", generic.FormatPercent(d("0.15"), 0))
	assert.Equal(t, "23%", generic.FormatPercent(d("0.225"), 0))
	assert.Equal(t, "28%", generic.FormatPercent(d("0.275"), 0))
	assert.Equal(t, "Infinity", generic.FormatLimit(generic.NewTopTier("0.275", "0").UpperLimit))
	assert.Equal(t, "2826.65", generic.FormatLimit(generic.NewTier("2826.65", "0", "0").UpperLimit))
}
