/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the calculator types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are JSON strings with exactly 2 decimal places ("2668.99"), the
  same text the report shows. Requests accept numbers or strings.

VALIDATION:
  Validation is done by payslip.Calculate, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/tables.go: Document type served by GET /api/tables
*/
package api

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/contribution"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payslip"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// CALCULATIONS
// =============================================================================

// CalculationRequest is the body of POST /api/calculations.
type CalculationRequest struct {
	Year              int              `json:"year"`
	Month             int              `json:"month"`
	Gross             decimal.Decimal  `json:"gross"`
	Dependents        int              `json:"dependents"`
	StandardDeduction bool             `json:"standard_deduction"`
	Regime            string           `json:"regime"`
	Rate              *decimal.Decimal `json:"rate,omitempty"`
}

// ToInput converts the request. An unknown regime is passed through so
// payslip.Calculate reports it with its validation message.
func (r CalculationRequest) ToInput() payslip.Input {
	regime, err := contribution.ParseRegime(r.Regime)
	if err != nil && r.Regime != "" {
		regime = contribution.Regime(r.Regime)
	}
	return payslip.Input{
		Year:              r.Year,
		Month:             r.Month,
		Gross:             r.Gross,
		Dependents:        r.Dependents,
		StandardDeduction: r.StandardDeduction,
		Regime:            regime,
		Rate:              r.Rate,
	}
}

// SectionDTO is one block of the calculation memo.
type SectionDTO struct {
	Label string   `json:"label"`
	Trace []string `json:"trace"`
	Total string   `json:"total"`
}

// CalculationDTO represents a payslip in API responses. Sections are only
// present for fresh calculations; stored ones keep the rendered report.
type CalculationDTO struct {
	ID                string      `json:"id"`
	CreatedAt         string      `json:"created_at"`
	Year              int         `json:"year"`
	Month             int         `json:"month"`
	Regime            string      `json:"regime"`
	Gross             string      `json:"gross"`
	Dependents        int         `json:"dependents"`
	StandardDeduction bool        `json:"standard_deduction"`
	Rate              *string     `json:"rate,omitempty"`
	Contribution      string      `json:"contribution"`
	Withholding       string      `json:"withholding"`
	Net               string      `json:"net"`
	Legend            string      `json:"legend"`
	ContributionMemo  *SectionDTO `json:"contribution_memo,omitempty"`
	WithholdingMemo   *SectionDTO `json:"withholding_memo,omitempty"`
	Report            string      `json:"report"`
}

func toCalculationDTO(c generic.Calculation) CalculationDTO {
	dto := CalculationDTO{
		ID:                c.ID,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		Year:              c.Competence.Year,
		Month:             int(c.Competence.Month),
		Regime:            c.Regime,
		Gross:             generic.FormatMoney(c.Gross),
		Dependents:        c.Dependents,
		StandardDeduction: c.StandardDeduction,
		Contribution:      generic.FormatMoney(c.Contribution),
		Withholding:       generic.FormatMoney(c.Withholding),
		Net:               generic.FormatMoney(c.Net),
		Legend:            c.Legend,
		Report:            c.Report,
	}
	if c.Rate.Valid {
		dto.Rate = lo.ToPtr(c.Rate.Decimal.StringFixed(2))
	}
	return dto
}

func toPayslipDTO(p payslip.Payslip, rec generic.Calculation) CalculationDTO {
	dto := toCalculationDTO(rec)
	dto.ContributionMemo = &SectionDTO{
		Label: p.Contribution.Label,
		Trace: p.Contribution.Trace,
		Total: generic.FormatMoney(p.Contribution.Total),
	}
	dto.WithholdingMemo = &SectionDTO{
		Label: p.Legend,
		Trace: p.Withholding.Trace,
		Total: generic.FormatMoney(p.Withholding.Total),
	}
	return dto
}

func toCalculationDTOs(calcs []generic.Calculation) []CalculationDTO {
	return lo.Map(calcs, func(c generic.Calculation, _ int) CalculationDTO { return toCalculationDTO(c) })
}

// =============================================================================
// TABLES
// =============================================================================

// BandDTO is one contribution band.
type BandDTO struct {
	Limit string `json:"limit"`
	Rate  string `json:"rate"`
}

// ContributionTableDTO is the response of GET /api/tables/contribution/{year}.
type ContributionTableDTO struct {
	Year  int       `json:"year"`
	Label string    `json:"label"`
	Bands []BandDTO `json:"bands"`
}

// TierDTO is one withholding tier. Limit is omitted for the top tier.
type TierDTO struct {
	Limit     *string `json:"limit,omitempty"`
	Rate      string  `json:"rate"`
	Deduction string  `json:"deduction"`
}

// WithholdingTableDTO is the response of GET /api/tables/withholding.
type WithholdingTableDTO struct {
	Year              int       `json:"year"`
	Phase             string    `json:"phase"`
	Legend            string    `json:"legend"`
	StandardDeduction string    `json:"standard_deduction"`
	Tiers             []TierDTO `json:"tiers"`
}

func toBandDTOs(bands []generic.Band) []BandDTO {
	return lo.Map(bands, func(b generic.Band, _ int) BandDTO {
		return BandDTO{Limit: generic.FormatMoney(b.UpperLimit), Rate: generic.FormatPercent(b.Rate, 2)}
	})
}

func toTierDTOs(tiers []generic.Tier) []TierDTO {
	return lo.Map(tiers, func(t generic.Tier, _ int) TierDTO {
		dto := TierDTO{Rate: generic.FormatPercent(t.Rate, 1), Deduction: generic.FormatMoney(t.Deduction)}
		if !t.Unbounded() {
			dto.Limit = lo.ToPtr(generic.FormatMoney(t.UpperLimit.Decimal))
		}
		return dto
	})
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Request     CalculationRequest `json:"request"`
}

// =============================================================================
// HISTORY
// =============================================================================

// PruneRunDTO represents one retention pruner execution.
type PruneRunDTO struct {
	ID      int64  `json:"id"`
	RunAt   string `json:"run_at"`
	Cutoff  string `json:"cutoff"`
	Deleted int64  `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

func toPruneRunDTOs(runs []sqlite.PruneRun) []PruneRunDTO {
	return lo.Map(runs, func(r sqlite.PruneRun, _ int) PruneRunDTO {
		return PruneRunDTO{
			ID:      r.ID,
			RunAt:   r.RunAt.Format(time.RFC3339),
			Cutoff:  r.Cutoff.Format(time.RFC3339),
			Deleted: r.Deleted,
			Error:   r.Error,
		}
	})
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
