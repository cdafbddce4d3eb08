package contribution_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/contribution"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tables"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProgressive_2022(t *testing.T) {
	res, err := contribution.Progressive(tables.Default, d("3000.00"), 2022)
	require.NoError(t, err)

	assert.Equal(t, "268.99", res.Total.StringFixed(2))
	assert.Equal(t, contribution.LabelRGPS, res.Label)
	assert.Equal(t, []string{
		"Faixa até 1212.00: 1212.00 × 7.50% = 90.90",
		"Faixa até 2427.35: 1215.35 × 9.00% = 109.38",
		"Faixa até 3641.03: 572.65 × 12.00% = 68.71",
	}, res.Trace)
}

func TestProgressive_2025AllBands(t *testing.T) {
	// 113.85 + 114.82 + 167.63 + 113.28
	res, err := contribution.Progressive(tables.Default, d("5000"), 2025)
	require.NoError(t, err)

	assert.Equal(t, "509.58", res.Total.StringFixed(2))
	require.Len(t, res.Trace, 4)
	assert.Equal(t, "Faixa até 8157.41: 809.17 × 14.00% = 113.28", res.Trace[3])
}

func TestProgressive_CappedAtCeiling(t *testing.T) {
	atCeiling, err := contribution.Progressive(tables.Default, d("7087.22"), 2022)
	require.NoError(t, err)
	above, err := contribution.Progressive(tables.Default, d("25000"), 2022)
	require.NoError(t, err)

	assert.True(t, atCeiling.Total.Equal(above.Total))
	assert.Equal(t, "828.38", above.Total.StringFixed(2))
}

func TestProgressive_Errors(t *testing.T) {
	_, err := contribution.Progressive(tables.Default, d("3000"), 2026)
	assert.ErrorIs(t, err, generic.ErrNoTable)

	_, err = contribution.Progressive(tables.Default, d("-1"), 2022)
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

func TestFlat(t *testing.T) {
	res, err := contribution.Flat(d("3333.33"), d("11"))
	require.NoError(t, err)

	// 366.6663 truncated
	assert.Equal(t, "366.66", res.Total.StringFixed(2))
	assert.Equal(t, contribution.LabelRPPS, res.Label)
	assert.Equal(t, []string{"Previdência Municipal: 3333.33 × 11.00% = 366.66"}, res.Trace)

	res, err = contribution.Flat(d("4200"), d("14"))
	require.NoError(t, err)
	assert.Equal(t, "588.00", res.Total.StringFixed(2))

	res, err = contribution.Flat(d("4200"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.Total.IsZero())
}

func TestFlat_Errors(t *testing.T) {
	_, err := contribution.Flat(d("1000"), d("-1"))
	assert.ErrorIs(t, err, generic.ErrInvalidRate)

	_, err = contribution.Flat(d("-1000"), d("11"))
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

func TestParseRegime(t *testing.T) {
	for in, want := range map[string]contribution.Regime{
		"RGPS": contribution.RegimeRGPS,
		"rpps": contribution.RegimeRPPS,
		" Rgps ": contribution.RegimeRGPS,
	} {
		got, err := contribution.ParseRegime(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := contribution.ParseRegime("CLT")
	assert.ErrorIs(t, err, generic.ErrInvalidRegime)
}
