/*
Package payslip orchestrates a full net-pay calculation.

PURPOSE:
  Validates the six scalar inputs coming from a form, CLI or API request,
  runs the contribution and withholding calculators in order and renders
  the step-by-step text report.

FLOW:
  1. Validate gross pay (positive), month (1-12), dependents (>= 0)
  2. RGPS → progressive contribution; RPPS → validate rate, flat contribution
  3. Withholding with the contribution total
  4. Net = Truncate2(gross − contribution − withholding)

ERRORS:
  Input problems come back as *generic.ValidationError whose Message is the
  text shown to the user instead of the report. Anything else (a year with
  no table) is a contract error and is returned wrapped.

SEE ALSO:
  - report.go: Text rendering
  - api/handlers.go, cmd/netpay: Callers
*/
package payslip

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/contribution"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tables"
	"github.com/warp/payroll-engine/withholding"
)

// User-facing validation messages.
const (
	MsgInvalidGross      = "Informe uma remuneração válida."
	MsgInvalidRate       = "Informe uma alíquota de Previdência Municipal válida."
	MsgInvalidMonth      = "Informe um mês válido."
	MsgInvalidDependents = "Informe um número de dependentes válido."
	MsgInvalidRegime     = "Informe um regime de previdência válido."
)

// Input is one calculation request. Rate is only read for RPPS.
type Input struct {
	Year              int
	Month             int
	Gross             decimal.Decimal
	Dependents        int
	StandardDeduction bool
	Regime            contribution.Regime
	Rate              *decimal.Decimal
}

// Payslip is the full outcome of a calculation.
type Payslip struct {
	Input        Input
	Competence   generic.Competence
	Contribution generic.Result
	Withholding  withholding.Result
	Legend       string
	Net          decimal.Decimal
}

// Calculate validates in and computes the payslip against reg.
func Calculate(reg *tables.Registry, in Input) (Payslip, error) {
	if !in.Gross.IsPositive() {
		return Payslip{}, invalid("gross", MsgInvalidGross, generic.ErrInvalidAmount)
	}
	competence, err := generic.NewCompetence(in.Year, in.Month)
	if err != nil {
		return Payslip{}, invalid("month", MsgInvalidMonth, err)
	}
	if in.Dependents < 0 {
		return Payslip{}, invalid("dependents", MsgInvalidDependents, generic.ErrInvalidDependents)
	}
	if in.Regime == "" {
		in.Regime = contribution.RegimeRGPS
	}

	var contrib generic.Result
	switch in.Regime {
	case contribution.RegimeRGPS:
		contrib, err = contribution.Progressive(reg, in.Gross, competence.Year)
	case contribution.RegimeRPPS:
		if in.Rate == nil || in.Rate.IsNegative() {
			return Payslip{}, invalid("rate", MsgInvalidRate, generic.ErrInvalidRate)
		}
		contrib, err = contribution.Flat(in.Gross, *in.Rate)
	default:
		return Payslip{}, invalid("regime", MsgInvalidRegime, generic.ErrInvalidRegime)
	}
	if err != nil {
		return Payslip{}, fmt.Errorf("contribution for %s: %w", competence, err)
	}

	irrf, err := withholding.Calculate(reg, withholding.Input{
		Gross:             in.Gross,
		Contribution:      contrib.Total,
		ContributionLabel: contrib.Label,
		Dependents:        in.Dependents,
		Competence:        competence,
		StandardDeduction: in.StandardDeduction,
	})
	if err != nil {
		return Payslip{}, fmt.Errorf("withholding for %s: %w", competence, err)
	}

	return Payslip{
		Input:        in,
		Competence:   competence,
		Contribution: contrib,
		Withholding:  irrf,
		Legend:       reg.Legend(irrf.Period),
		Net:          generic.Truncate2(in.Gross.Sub(contrib.Total).Sub(irrf.Total)),
	}, nil
}

// ValidationMessage returns the user-facing message carried by err, if any.
func ValidationMessage(err error) (string, bool) {
	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

func invalid(field, msg string, err error) error {
	return &generic.ValidationError{Field: field, Message: msg, Err: err}
}
