/*
Package generic provides the core progressive-bracket engine.

PURPOSE:
  This package contains jurisdiction-agnostic types and algorithms for
  evaluating payroll rate tables. Whether the table is a social-security
  contribution walked slice by slice or an income-tax table where a single
  tier applies to the whole base, the same primitives handle bracket
  accumulation, tier selection, truncation and trace formatting.

KEY CONCEPTS IN THIS FILE (types.go):
  - Band: A contribution bracket (upper limit + marginal rate)
  - Tier: A withholding bracket (upper limit or unbounded, rate, deduction)
  - Result: Total + human-readable trace lines + label
  - Money helpers: Truncate2, FormatMoney, FormatPercent

DESIGN PRINCIPLES:
  1. Immutability: Tables are read-only values, results are never mutated
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Truncation: Money is truncated (never rounded) to 2 places when finalized

USAGE:
  bands := []generic.Band{
      {UpperLimit: generic.MustParseDecimal("1212.00"), Rate: generic.MustParseDecimal("0.075")},
  }
  shares, total := generic.AccumulateBands(gross, bands)

SEE ALSO:
  - progressive.go: Bracket accumulation and tier selection
  - period.go: Competence (year/month) and table period keys
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// BRACKETS
// =============================================================================

// Band is one bracket of a progressive contribution table.
// Bands are ordered ascending by UpperLimit within a table.
type Band struct {
	UpperLimit decimal.Decimal
	Rate       decimal.Decimal
}

// Tier is one bracket of a withholding table. An invalid UpperLimit means
// the tier is unbounded; the last tier of every table is unbounded.
type Tier struct {
	UpperLimit decimal.NullDecimal
	Rate       decimal.Decimal
	Deduction  decimal.Decimal
}

// Unbounded reports whether the tier has no upper limit.
func (t Tier) Unbounded() bool { return !t.UpperLimit.Valid }

// Covers reports whether base falls at or below the tier's upper limit.
func (t Tier) Covers(base decimal.Decimal) bool {
	return t.Unbounded() || base.LessThanOrEqual(t.UpperLimit.Decimal)
}

// NewBand builds a band from decimal strings. Panics on malformed input,
// so it is only meant for static table literals.
func NewBand(limit, rate string) Band {
	return Band{UpperLimit: decimal.RequireFromString(limit), Rate: decimal.RequireFromString(rate)}
}

// NewTier builds a bounded tier from decimal strings.
func NewTier(limit, rate, deduction string) Tier {
	return Tier{
		UpperLimit: decimal.NewNullDecimal(decimal.RequireFromString(limit)),
		Rate:       decimal.RequireFromString(rate),
		Deduction:  decimal.RequireFromString(deduction),
	}
}

// NewTopTier builds the unbounded catch-all tier.
func NewTopTier(rate, deduction string) Tier {
	return Tier{
		Rate:      decimal.RequireFromString(rate),
		Deduction: decimal.RequireFromString(deduction),
	}
}

// =============================================================================
// RESULT - Output of a single calculator call
// =============================================================================

// Result is produced fresh per calculation and owned by the caller.
type Result struct {
	Total decimal.Decimal
	Trace []string
	Label string
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Truncate2 cuts a value to 2 decimal places toward zero.
func Truncate2(d decimal.Decimal) decimal.Decimal { return d.Truncate(2) }

// FormatMoney renders a value with exactly 2 decimal places.
func FormatMoney(d decimal.Decimal) string { return d.StringFixed(2) }

// FormatLimit renders a tier limit; unbounded limits print as "Infinity".
func FormatLimit(limit decimal.NullDecimal) string {
	if !limit.Valid {
		return "Infinity"
	}
	return FormatMoney(limit.Decimal)
}

// FormatPercent renders a fractional rate as a percentage with the given
// number of decimal places, e.g. FormatPercent(0.075, 2) == "7.50%".
func FormatPercent(rate decimal.Decimal, places int32) string {
	return rate.Mul(hundred).StringFixed(places) + "%"
}

// PercentToRate converts a percentage (11 for 11%) into a fraction.
func PercentToRate(pct decimal.Decimal) decimal.Decimal { return pct.Div(hundred) }

// MustParseDecimal parses s, yielding zero for malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
