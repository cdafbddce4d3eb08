/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the net-pay calculator via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to payslip.Calculate.

ENDPOINTS:
  Calculations:
    POST   /api/calculations              Calculate (and store) a payslip
                                          ?format=text returns only the report
    GET    /api/calculations              List stored calculations (?limit=)
    GET    /api/calculations/{id}         Get a stored calculation

  Tables:
    GET    /api/tables                    Export the active registry as a document
    GET    /api/tables/contribution/{year} INSS bands for a year
    GET    /api/tables/withholding        IRRF table resolved for ?year=&month=

  Scenarios:
    GET    /api/scenarios                 List preset payslips
    POST   /api/scenarios/{id}/run        Calculate a preset

  History:
    GET    /api/history/prune-runs        Retention pruner executions

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Registry: Rate tables (built-in merged with TABLES_PATH)
  - Store: Calculation history
  - cache: Payslips for identical inputs

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (message is the user-facing text), no table for year
  - 404: Calculation not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Preset payslips
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/contribution"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payslip"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tables"
)

var log = logrus.WithField("module", "api")

const defaultListLimit = 50

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// PruneRunLister is implemented by stores that audit the pruner.
type PruneRunLister interface {
	ListPruneRuns(ctx context.Context, limit int) ([]sqlite.PruneRun, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Registry *tables.Registry
	Store    generic.Store
	Runs     PruneRunLister // optional

	cache *cache.Cache
	now   func() time.Time
}

// NewHandler creates a new handler. cacheTTL <= 0 disables result caching.
func NewHandler(reg *tables.Registry, store generic.Store, cacheTTL time.Duration) *Handler {
	h := &Handler{
		Registry: reg,
		Store:    store,
		now:      time.Now,
	}
	if runs, ok := store.(PruneRunLister); ok {
		h.Runs = runs
	}
	if cacheTTL > 0 {
		h.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return h
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// CreateCalculation computes a payslip from the request body and stores it.
// POST /api/calculations
func (h *Handler) CreateCalculation(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.calculate(w, r, req)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request, req CalculationRequest) {
	textOnly := r.URL.Query().Get("format") == "text"

	slip, err := h.payslip(req.ToInput())
	if err != nil {
		if msg, ok := payslip.ValidationMessage(err); ok {
			if textOnly {
				writeText(w, http.StatusBadRequest, msg)
				return
			}
			writeError(w, http.StatusBadRequest, msg, err)
			return
		}
		status := http.StatusInternalServerError
		if generic.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Calculation failed", err)
		return
	}

	rec := slip.Record(h.now())
	if h.Store != nil {
		if err := h.Store.Save(r.Context(), rec); err != nil {
			log.WithError(err).WithField("calculation", rec.ID).Error("Failed to store calculation")
			writeError(w, http.StatusInternalServerError, "Failed to store calculation", err)
			return
		}
	}

	log.WithFields(logrus.Fields{
		"calculation": rec.ID,
		"competence":  slip.Competence.String(),
		"regime":      slip.Input.Regime,
		"net":         generic.FormatMoney(slip.Net),
	}).Debug("Payslip calculated")

	if textOnly {
		writeText(w, http.StatusCreated, rec.Report)
		return
	}
	writeJSON(w, http.StatusCreated, toPayslipDTO(slip, rec))
}

// payslip computes through the result cache.
func (h *Handler) payslip(in payslip.Input) (payslip.Payslip, error) {
	if h.cache == nil {
		return payslip.Calculate(h.Registry, in)
	}

	key := cacheKey(in)
	if cached, ok := h.cache.Get(key); ok {
		return cached.(payslip.Payslip), nil
	}
	slip, err := payslip.Calculate(h.Registry, in)
	if err != nil {
		return payslip.Payslip{}, err
	}
	h.cache.SetDefault(key, slip)
	return slip, nil
}

func cacheKey(in payslip.Input) string {
	rate := "-"
	if in.Rate != nil && in.Regime == contribution.RegimeRPPS {
		rate = in.Rate.String()
	}
	regime := in.Regime
	if regime == "" {
		regime = contribution.RegimeRGPS
	}
	return fmt.Sprintf("%d|%d|%s|%d|%t|%s|%s",
		in.Year, in.Month, in.Gross.String(), in.Dependents, in.StandardDeduction, regime, rate)
}

// ListCalculations returns stored calculations, newest first. limit must be
// positive; without a store the list is empty.
// GET /api/calculations
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}
	if h.Store == nil {
		writeJSON(w, http.StatusOK, []CalculationDTO{})
		return
	}

	calcs, err := h.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTOs(calcs))
}

// GetCalculation returns a single stored calculation.
// GET /api/calculations/{id}
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.Store == nil {
		writeError(w, http.StatusNotFound, "Calculation not found", nil)
		return
	}

	calc, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Calculation not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get calculation", err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		writeText(w, http.StatusOK, calc.Report)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(calc))
}

// =============================================================================
// TABLE HANDLERS
// =============================================================================

// ExportTables returns the active registry in the factory document format.
// GET /api/tables
func (h *Handler) ExportTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.ToDocument(h.Registry.Definition()))
}

// GetContributionTable returns the INSS bands for a year.
// GET /api/tables/contribution/{year}
func (h *Handler) GetContributionTable(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	bands, err := h.Registry.ContributionTable(year)
	if err != nil {
		writeError(w, http.StatusNotFound, "No contribution table for year", err)
		return
	}

	writeJSON(w, http.StatusOK, ContributionTableDTO{
		Year:  year,
		Label: contribution.LabelRGPS,
		Bands: toBandDTOs(bands),
	})
}

// GetWithholdingTable resolves the IRRF table for a competence.
// GET /api/tables/withholding?year=2023&month=5
func (h *Handler) GetWithholdingTable(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	competence, err := generic.NewCompetence(year, month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	key, tiers, err := h.Registry.WithholdingTable(competence)
	if err != nil {
		writeError(w, http.StatusNotFound, "No withholding table for period", err)
		return
	}

	writeJSON(w, http.StatusOK, WithholdingTableDTO{
		Year:              key.Year,
		Phase:             key.Phase.String(),
		Legend:            h.Registry.Legend(key),
		StandardDeduction: generic.FormatMoney(h.Registry.StandardDeduction(competence)),
		Tiers:             toTierDTOs(tiers),
	})
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListPruneRuns returns recent retention pruner executions.
// GET /api/history/prune-runs
func (h *Handler) ListPruneRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []PruneRunDTO{})
		return
	}
	runs, err := h.Runs.ListPruneRuns(r.Context(), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list prune runs", err)
		return
	}
	writeJSON(w, http.StatusOK, toPruneRunDTOs(runs))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		var verr *generic.ValidationError
		if errors.As(err, &verr) {
			resp.Code = verr.Field
		}
	}
	writeJSON(w, status, resp)
}
