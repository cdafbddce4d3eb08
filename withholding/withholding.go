/*
Package withholding computes the monthly IRRF income tax withheld from pay.

PURPOSE:
  Unlike the contribution, IRRF is not accumulated slice by slice. The
  taxable base is matched to a single tier and taxed as
  base × rate − deduction, truncated and floored at zero.

DEDUCTION MODES:
  Legal (dependents):   base = gross − contribution − dependents × 189.59
  Standard (simplified): base = gross − standard deduction
  In standard mode the contribution is not subtracted; the simplified
  deduction replaces it together with the dependent allowance.

SEE ALSO:
  - tables/registry.go: Period resolution and standard deduction amounts
  - generic/progressive.go: SelectTier, TierTax
*/
package withholding

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tables"
)

// DependentAllowance is the monthly deduction per dependent.
var DependentAllowance = decimal.RequireFromString("189.59")

// Input carries everything the withholding needs.
type Input struct {
	Gross             decimal.Decimal
	Contribution      decimal.Decimal
	ContributionLabel string
	Dependents        int
	Competence        generic.Competence
	StandardDeduction bool
}

// Result is the withholding outcome plus the table that produced it.
type Result struct {
	Total  decimal.Decimal
	Trace  []string
	Period generic.PeriodKey
	Tier   generic.Tier
	Base   decimal.Decimal
}

// Calculate computes the IRRF for in.
func Calculate(reg *tables.Registry, in Input) (Result, error) {
	if in.Gross.IsNegative() {
		return Result{}, fmt.Errorf("%w: gross %s", generic.ErrInvalidAmount, in.Gross)
	}
	if in.Dependents < 0 {
		return Result{}, fmt.Errorf("%w: %d", generic.ErrInvalidDependents, in.Dependents)
	}
	key, tiers, err := reg.WithholdingTable(in.Competence)
	if err != nil {
		return Result{}, err
	}

	standard, dependents := decimal.Zero, decimal.Zero
	var base decimal.Decimal
	if in.StandardDeduction {
		standard = reg.StandardDeduction(in.Competence)
		base = in.Gross.Sub(standard)
	} else {
		dependents = DependentAllowance.Mul(decimal.NewFromInt(int64(in.Dependents)))
		base = in.Gross.Sub(in.Contribution).Sub(dependents)
	}
	base = decimal.Max(decimal.Zero, base)

	tier, _ := generic.SelectTier(base, tiers)
	tax := generic.TierTax(base, tier)

	trace := make([]string, 0, 3)
	if in.StandardDeduction {
		trace = append(trace, fmt.Sprintf("Base = Remuneração − Dedução legal = %s − %s = %s",
			generic.FormatMoney(in.Gross), generic.FormatMoney(standard), generic.FormatMoney(base)))
	} else {
		trace = append(trace, fmt.Sprintf("Base = Remuneração − %s − Dependentes×189,59 = %s − %s − %s = %s",
			in.ContributionLabel,
			generic.FormatMoney(in.Gross), generic.FormatMoney(in.Contribution),
			generic.FormatMoney(dependents), generic.FormatMoney(base)))
	}
	trace = append(trace,
		fmt.Sprintf("Faixa até %s | Alíquota %s | Parcela a deduzir %s",
			generic.FormatLimit(tier.UpperLimit), generic.FormatPercent(tier.Rate, 0), generic.FormatMoney(tier.Deduction)),
		fmt.Sprintf("IRRF = (%s × %s) − %s = %s",
			generic.FormatMoney(base), generic.FormatPercent(tier.Rate, 0),
			generic.FormatMoney(tier.Deduction), generic.FormatMoney(tax)),
	)

	return Result{Total: tax, Trace: trace, Period: key, Tier: tier, Base: base}, nil
}
