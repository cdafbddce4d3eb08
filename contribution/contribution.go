/*
Package contribution computes the social-security deduction from gross pay.

PURPOSE:
  Two regimes are supported:
  - RGPS: The national INSS table, progressive slice by slice. Each slice of
    gross pay inside a band is multiplied by that band's rate and truncated
    before the parts are summed.
  - RPPS: A municipal pension scheme with a single flat rate chosen by the
    employer, entered as a percentage.

EXAMPLE (2022, gross 3000.00):
  Faixa até 1212.00: 1212.00 × 7.50% = 90.90
  Faixa até 2427.35: 1215.35 × 9.00% = 109.38
  Faixa até 3641.03: 572.65 × 12.00% = 68.71
  Total = 268.99

SEE ALSO:
  - generic/progressive.go: AccumulateBands
  - tables/builtin.go: INSS bands per year
  - withholding/: Consumes the contribution total
*/
package contribution

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tables"
)

// Regime selects which contribution calculator applies.
type Regime string

const (
	RegimeRGPS Regime = "RGPS" // progressive national table
	RegimeRPPS Regime = "RPPS" // flat municipal rate
)

// ParseRegime accepts either regime name, case-insensitively.
func ParseRegime(s string) (Regime, error) {
	switch Regime(strings.ToUpper(strings.TrimSpace(s))) {
	case RegimeRGPS:
		return RegimeRGPS, nil
	case RegimeRPPS:
		return RegimeRPPS, nil
	default:
		return "", fmt.Errorf("%w: %q", generic.ErrInvalidRegime, s)
	}
}

// Labels used in traces and reports.
const (
	LabelRGPS = "INSS (RGPS)"
	LabelRPPS = "Previdência Municipal (RPPS)"
)

// Progressive computes the RGPS contribution using the year's bands.
func Progressive(reg *tables.Registry, gross decimal.Decimal, year int) (generic.Result, error) {
	if gross.IsNegative() {
		return generic.Result{}, fmt.Errorf("%w: gross %s", generic.ErrInvalidAmount, gross)
	}
	bands, err := reg.ContributionTable(year)
	if err != nil {
		return generic.Result{}, err
	}

	shares, total := generic.AccumulateBands(gross, bands)
	trace := make([]string, 0, len(shares))
	for _, s := range shares {
		trace = append(trace, fmt.Sprintf("Faixa até %s: %s × %s = %s",
			generic.FormatMoney(s.Band.UpperLimit),
			generic.FormatMoney(s.Slice),
			generic.FormatPercent(s.Band.Rate, 2),
			generic.FormatMoney(s.Amount)))
	}

	return generic.Result{Total: total, Trace: trace, Label: LabelRGPS}, nil
}

// Flat computes the RPPS contribution: Truncate2(gross * ratePct / 100).
func Flat(gross, ratePct decimal.Decimal) (generic.Result, error) {
	if gross.IsNegative() {
		return generic.Result{}, fmt.Errorf("%w: gross %s", generic.ErrInvalidAmount, gross)
	}
	if ratePct.IsNegative() {
		return generic.Result{}, fmt.Errorf("%w: %s%%", generic.ErrInvalidRate, ratePct)
	}

	amount := generic.Truncate2(gross.Mul(generic.PercentToRate(ratePct)))
	return generic.Result{
		Total: amount,
		Trace: []string{fmt.Sprintf("Previdência Municipal: %s × %s%% = %s",
			generic.FormatMoney(gross), ratePct.StringFixed(2), generic.FormatMoney(amount))},
		Label: LabelRPPS,
	}, nil
}
