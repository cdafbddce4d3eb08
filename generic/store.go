/*
store.go - Persistence interface for calculation history

PURPOSE:
  Calculations themselves are pure and stateless. The history store is an
  optional audit trail: every payslip computed through the API or the CLI
  can be saved with its inputs, totals and rendered report.

APPEND-ONLY CONTRACT:
  Records are never updated. Save writes a new record; the only removal is
  DeleteBefore, used by the retention pruner.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - payslip/record.go: Builds Calculation records
  - api/scheduler.go: Retention pruner
*/
package generic

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATION RECORD
// =============================================================================

// Calculation is a stored payslip.
type Calculation struct {
	ID                string
	CreatedAt         time.Time
	Competence        Competence
	Regime            string
	Gross             decimal.Decimal
	Dependents        int
	StandardDeduction bool
	Rate              decimal.NullDecimal // flat regimes only
	Contribution      decimal.Decimal
	Withholding       decimal.Decimal
	Net               decimal.Decimal
	Legend            string
	Report            string
}

// =============================================================================
// STORE - Interface for calculation history
// =============================================================================

type Store interface {
	// Save persists a calculation. IDs are unique.
	Save(ctx context.Context, c Calculation) error

	// Get returns ErrCalculationNotFound for unknown IDs.
	Get(ctx context.Context, id string) (Calculation, error)

	// List returns the most recent calculations first, at most limit.
	List(ctx context.Context, limit int) ([]Calculation, error)

	// DeleteBefore removes calculations created before t and reports how many.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}
