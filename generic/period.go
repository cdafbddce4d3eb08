package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// COMPETENCE - The payroll month a calculation refers to
// =============================================================================

// Competence is the (year, month) a payslip belongs to.
type Competence struct {
	Year  int
	Month time.Month
}

// NewCompetence validates month and builds a Competence.
func NewCompetence(year, month int) (Competence, error) {
	if month < 1 || month > 12 {
		return Competence{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return Competence{Year: year, Month: time.Month(month)}, nil
}

func (c Competence) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// =============================================================================
// PERIOD KEY - Which version of a table applies
// =============================================================================

// Phase identifies the part of a year a table version covers.
type Phase int

const (
	PhaseFullYear Phase = iota // table valid for the whole year
	PhaseEarly                 // before a mid-year change
	PhaseLate                  // after a mid-year change
)

func (p Phase) String() string {
	switch p {
	case PhaseEarly:
		return "early"
	case PhaseLate:
		return "late"
	default:
		return "full_year"
	}
}

// ParsePhase is the inverse of Phase.String. Empty input means full year.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "", "full_year":
		return PhaseFullYear, nil
	case "early":
		return PhaseEarly, nil
	case "late":
		return PhaseLate, nil
	default:
		return PhaseFullYear, fmt.Errorf("%w: unknown phase %q", ErrInvalidTable, s)
	}
}

// PeriodKey addresses one table version in a registry.
type PeriodKey struct {
	Year  int
	Phase Phase
}

// YearKey is the key of a table valid for the whole year.
func YearKey(year int) PeriodKey { return PeriodKey{Year: year, Phase: PhaseFullYear} }

func (k PeriodKey) String() string {
	if k.Phase == PhaseFullYear {
		return fmt.Sprintf("%d", k.Year)
	}
	return fmt.Sprintf("%d/%s", k.Year, k.Phase)
}
