package payslip

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/contribution"
	"github.com/warp/payroll-engine/generic"
)

// Record converts a payslip into a history record with a fresh ID.
func (p Payslip) Record(now time.Time) generic.Calculation {
	var rate decimal.NullDecimal
	if p.Input.Regime == contribution.RegimeRPPS && p.Input.Rate != nil {
		rate = decimal.NewNullDecimal(*p.Input.Rate)
	}
	return generic.Calculation{
		ID:                uuid.NewString(),
		CreatedAt:         now.UTC(),
		Competence:        p.Competence,
		Regime:            string(p.Input.Regime),
		Gross:             p.Input.Gross,
		Dependents:        p.Input.Dependents,
		StandardDeduction: p.Input.StandardDeduction,
		Rate:              rate,
		Contribution:      p.Contribution.Total,
		Withholding:       p.Withholding.Total,
		Net:               p.Net,
		Legend:            p.Legend,
		Report:            p.Report(),
	}
}
