/*
Package tables is the rate table registry.

PURPOSE:
  Holds the versioned bracket tables for the progressive contribution and
  the income-tax withholding, plus the standard-deduction amounts, and
  resolves which version applies to a given competence (year, month).

KEY CONCEPTS:
  - Definition: Plain data describing tables; what factory documents decode into
  - Registry: Validated, read-only view over a Definition
  - Transition: Last month of the "early" table in a year with a mid-year change

IMMUTABILITY:
  A Registry is never mutated after New returns. Merge builds a new Registry
  from a copy, so the built-in Default can be shared without locking.

SEE ALSO:
  - builtin.go: The statutory tables shipped with the engine
  - factory/tables.go: Loading extra tables from JSON/YAML
*/
package tables

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Definition is the raw content of a registry.
type Definition struct {
	Contribution       map[int][]generic.Band
	Withholding        map[generic.PeriodKey][]generic.Tier
	Transitions        map[int]time.Month
	StandardDeductions map[generic.PeriodKey]decimal.Decimal
}

// Registry answers table lookups. Safe for concurrent use.
type Registry struct {
	def             Definition
	lastWithholding int
}

// New validates def and builds a Registry. def is copied.
func New(def Definition) (*Registry, error) {
	cp := Definition{
		Contribution:       cloneMap(def.Contribution),
		Withholding:        cloneMap(def.Withholding),
		Transitions:        cloneMap(def.Transitions),
		StandardDeductions: cloneMap(def.StandardDeductions),
	}
	if err := validate(cp); err != nil {
		return nil, err
	}

	r := &Registry{def: cp}
	for key := range cp.Withholding {
		r.lastWithholding = max(r.lastWithholding, key.Year)
	}
	return r, nil
}

// MustNew is New for static data.
func MustNew(def Definition) *Registry {
	r, err := New(def)
	if err != nil {
		panic(err)
	}
	return r
}

// Merge returns a new Registry with overlay's entries replacing or adding
// to r's. r itself is left untouched.
func (r *Registry) Merge(overlay Definition) (*Registry, error) {
	merged := r.Definition()
	maps.Copy(merged.Contribution, overlay.Contribution)
	maps.Copy(merged.Withholding, overlay.Withholding)
	maps.Copy(merged.Transitions, overlay.Transitions)
	maps.Copy(merged.StandardDeductions, overlay.StandardDeductions)
	return New(merged)
}

// Definition returns a copy of the registry's content.
func (r *Registry) Definition() Definition {
	return Definition{
		Contribution:       cloneMap(r.def.Contribution),
		Withholding:        cloneMap(r.def.Withholding),
		Transitions:        cloneMap(r.def.Transitions),
		StandardDeductions: cloneMap(r.def.StandardDeductions),
	}
}

// =============================================================================
// CONTRIBUTION
// =============================================================================

// ContributionTable returns the progressive contribution bands for year.
func (r *Registry) ContributionTable(year int) ([]generic.Band, error) {
	bands, ok := r.def.Contribution[year]
	if !ok {
		return nil, &generic.NoTableError{Kind: generic.TableContribution, Key: generic.YearKey(year)}
	}
	return slices.Clone(bands), nil
}

// ContributionYears lists the years with a contribution table, ascending.
func (r *Registry) ContributionYears() []int {
	years := lo.Keys(r.def.Contribution)
	slices.Sort(years)
	return years
}

// =============================================================================
// WITHHOLDING
// =============================================================================

// ResolveWithholdingPeriod maps a competence to the withholding table key:
//   - years with a transition: month <= transition is early, later months late
//   - years after the last defined year: that year's late (or only) table
//   - anything else: the year's full-year table
func (r *Registry) ResolveWithholdingPeriod(c generic.Competence) generic.PeriodKey {
	if c.Year > r.lastWithholding {
		if _, ok := r.def.Transitions[r.lastWithholding]; ok {
			return generic.PeriodKey{Year: r.lastWithholding, Phase: generic.PhaseLate}
		}
		return generic.YearKey(r.lastWithholding)
	}
	return r.phaseKey(c)
}

func (r *Registry) phaseKey(c generic.Competence) generic.PeriodKey {
	last, ok := r.def.Transitions[c.Year]
	if !ok {
		return generic.YearKey(c.Year)
	}
	if c.Month <= last {
		return generic.PeriodKey{Year: c.Year, Phase: generic.PhaseEarly}
	}
	return generic.PeriodKey{Year: c.Year, Phase: generic.PhaseLate}
}

// WithholdingTable resolves and returns the tiers for a competence.
func (r *Registry) WithholdingTable(c generic.Competence) (generic.PeriodKey, []generic.Tier, error) {
	key := r.ResolveWithholdingPeriod(c)
	tiers, ok := r.def.Withholding[key]
	if !ok {
		return key, nil, &generic.NoTableError{Kind: generic.TableWithholding, Key: key}
	}
	return key, slices.Clone(tiers), nil
}

// StandardDeduction returns the simplified monthly deduction for a
// competence. Years without an entry have no standard deduction and yield
// zero; there is no forward fallback here.
func (r *Registry) StandardDeduction(c generic.Competence) decimal.Decimal {
	if amount, ok := r.def.StandardDeductions[r.phaseKey(c)]; ok {
		return amount
	}
	if amount, ok := r.def.StandardDeductions[generic.YearKey(c.Year)]; ok {
		return amount
	}
	return decimal.Zero
}

// Legend describes a withholding period the way payslips label it,
// e.g. "IRRF 2023 até abril".
func (r *Registry) Legend(key generic.PeriodKey) string {
	last, ok := r.def.Transitions[key.Year]
	if !ok || key.Phase == generic.PhaseFullYear {
		return fmt.Sprintf("IRRF %d", key.Year)
	}
	if key.Phase == generic.PhaseEarly {
		return fmt.Sprintf("IRRF %d até %s", key.Year, monthNames[last])
	}
	return fmt.Sprintf("IRRF %d após %s", key.Year, monthNames[last%12+1])
}

var monthNames = map[time.Month]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// =============================================================================
// VALIDATION
// =============================================================================

func validate(def Definition) error {
	for year, bands := range def.Contribution {
		if len(bands) == 0 {
			return fmt.Errorf("%w: contribution %d has no bands", generic.ErrInvalidTable, year)
		}
		for i, b := range bands {
			if !b.UpperLimit.IsPositive() || b.Rate.IsNegative() {
				return fmt.Errorf("%w: contribution %d band %d", generic.ErrInvalidTable, year, i)
			}
			if i > 0 && !b.UpperLimit.GreaterThan(bands[i-1].UpperLimit) {
				return fmt.Errorf("%w: contribution %d limits not ascending", generic.ErrInvalidTable, year)
			}
		}
	}

	for key, tiers := range def.Withholding {
		if len(tiers) == 0 || !tiers[len(tiers)-1].Unbounded() {
			return fmt.Errorf("%w: withholding %s must end with an unbounded tier", generic.ErrInvalidTable, key)
		}
		for i, t := range tiers[:len(tiers)-1] {
			if t.Unbounded() {
				return fmt.Errorf("%w: withholding %s tier %d unbounded before last", generic.ErrInvalidTable, key, i)
			}
			if i > 0 && !t.UpperLimit.Decimal.GreaterThan(tiers[i-1].UpperLimit.Decimal) {
				return fmt.Errorf("%w: withholding %s limits not ascending", generic.ErrInvalidTable, key)
			}
		}
	}

	for year, month := range def.Transitions {
		if month < time.January || month >= time.December {
			return fmt.Errorf("%w: transition month %d for %d", generic.ErrInvalidTable, month, year)
		}
	}
	return validatePhases(def)
}

// validatePhases checks that a year with a transition has exactly an early
// and a late withholding table, and every other year a full-year table only.
func validatePhases(def Definition) error {
	for year := range def.Transitions {
		_, early := def.Withholding[generic.PeriodKey{Year: year, Phase: generic.PhaseEarly}]
		_, late := def.Withholding[generic.PeriodKey{Year: year, Phase: generic.PhaseLate}]
		_, full := def.Withholding[generic.YearKey(year)]
		if !early || !late || full {
			return fmt.Errorf("%w: transition year %d needs early and late withholding tables only",
				generic.ErrInvalidTable, year)
		}
	}
	for key := range def.Withholding {
		if _, split := def.Transitions[key.Year]; !split && key.Phase != generic.PhaseFullYear {
			return fmt.Errorf("%w: withholding %s has no transition month", generic.ErrInvalidTable, key)
		}
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}
