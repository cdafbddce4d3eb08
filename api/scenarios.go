/*
scenarios.go - Preset payslips for demos and smoke tests

PURPOSE:
	Provides ready-made calculation requests that exercise the interesting
	rules: a hand-checkable progressive case, the 2023 table boundary, the
	simplified deduction, the municipal flat rate and the forward fallback
	for years after the last IRRF table.

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/{id}/run

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and request

SEE ALSO:
  - handlers.go: calculate
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "rgps-2022",
		Name:        "RGPS June 2022",
		Description: "3000.00 gross, no dependents: three INSS bands, second IRRF tier",
		Request:     CalculationRequest{Year: 2022, Month: 6, Gross: money("3000.00"), Regime: "RGPS"},
	},
	{
		ID:          "irrf-2023-april",
		Name:        "IRRF 2023 until April",
		Description: "Last month of the old exemption limit (1903.98)",
		Request:     CalculationRequest{Year: 2023, Month: 4, Gross: money("2500.00"), Regime: "RGPS"},
	},
	{
		ID:          "irrf-2023-may",
		Name:        "IRRF 2023 from May",
		Description: "First month of the new exemption limit (2112.00)",
		Request:     CalculationRequest{Year: 2023, Month: 5, Gross: money("2500.00"), Regime: "RGPS"},
	},
	{
		ID:          "simplified-2025",
		Name:        "Simplified deduction 2025",
		Description: "Standard deduction replaces contribution and dependents",
		Request: CalculationRequest{Year: 2025, Month: 6, Gross: money("5000.00"), Dependents: 2,
			StandardDeduction: true, Regime: "RGPS"},
	},
	{
		ID:          "rpps-municipal",
		Name:        "Municipal pension 14%",
		Description: "Flat-rate RPPS contribution with one dependent",
		Request: CalculationRequest{Year: 2024, Month: 3, Gross: money("4200.00"), Dependents: 1,
			Regime: "RPPS", Rate: lo.ToPtr(money("14"))},
	},
	{
		ID:          "fallback-2026",
		Name:        "After the last table",
		Description: "2026 falls back to the IRRF 2025 table from May",
		Request: CalculationRequest{Year: 2026, Month: 2, Gross: money("3500.00"),
			Regime: "RPPS", Rate: lo.ToPtr(money("11"))},
	},
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ListScenarios returns the available presets.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// RunScenario calculates a preset as if it had been posted.
// POST /api/scenarios/{id}/run
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scenario, ok := lo.Find(scenarios, func(s ScenarioDTO) bool { return s.ID == id })
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}
	h.calculate(w, r, scenario.Request)
}
