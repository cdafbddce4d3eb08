/*
Package factory provides document to rate-table conversion.

PURPOSE:
  Converts JSON or YAML table documents into a tables.Definition that can be
  merged over the built-in registry. New statutory tables (a new year, a
  mid-year change) can then be deployed as a file instead of a release.

DOCUMENT SCHEMA (JSON shown, YAML uses the same keys):
  {
    "contribution": [
      {"year": 2026, "bands": [{"limit": "1621.00", "rate": "0.075"}, ...]}
    ],
    "withholding": [
      {"year": 2026, "phase": "late", "tiers": [
        {"limit": "2428.80", "rate": "0", "deduction": "0"},
        {"rate": "0.275", "deduction": "908.73"}
      ]}
    ],
    "transitions": [{"year": 2026, "last_early_month": 4}],
    "standard_deduction": [{"year": 2026, "amount": "607.20"}]
  }

  A tier without "limit" is unbounded and must be last. "phase" is one of
  full_year (default), early, late.

USAGE:
  def, err := factory.LoadFile("tables/2026.yaml")
  reg, err := tables.Default.Merge(def)

SEE ALSO:
  - tables/registry.go: Definition, Merge, validation
  - config/config.go: TABLES_PATH
*/
package factory

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tables"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// Document is the serialized form of a set of tables.
type Document struct {
	Contribution      []ContributionDoc      `json:"contribution,omitempty" yaml:"contribution,omitempty"`
	Withholding       []WithholdingDoc       `json:"withholding,omitempty" yaml:"withholding,omitempty"`
	Transitions       []TransitionDoc        `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	StandardDeduction []StandardDeductionDoc `json:"standard_deduction,omitempty" yaml:"standard_deduction,omitempty"`
}

type ContributionDoc struct {
	Year  int       `json:"year" yaml:"year"`
	Bands []BandDoc `json:"bands" yaml:"bands"`
}

type BandDoc struct {
	Limit decimal.Decimal `json:"limit" yaml:"limit"`
	Rate  decimal.Decimal `json:"rate" yaml:"rate"`
}

type WithholdingDoc struct {
	Year  int       `json:"year" yaml:"year"`
	Phase string    `json:"phase,omitempty" yaml:"phase,omitempty"`
	Tiers []TierDoc `json:"tiers" yaml:"tiers"`
}

type TierDoc struct {
	Limit     *decimal.Decimal `json:"limit,omitempty" yaml:"limit,omitempty"` // nil = unbounded
	Rate      decimal.Decimal  `json:"rate" yaml:"rate"`
	Deduction decimal.Decimal  `json:"deduction" yaml:"deduction"`
}

type TransitionDoc struct {
	Year           int `json:"year" yaml:"year"`
	LastEarlyMonth int `json:"last_early_month" yaml:"last_early_month"`
}

type StandardDeductionDoc struct {
	Year   int             `json:"year" yaml:"year"`
	Phase  string          `json:"phase,omitempty" yaml:"phase,omitempty"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// =============================================================================
// PARSING
// =============================================================================

// LoadFile reads a table document, picking the format from the extension.
func LoadFile(path string) (tables.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tables.Definition{}, fmt.Errorf("failed to read tables file: %w", err)
	}
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return ParseTables(data, format)
}

// ParseTables decodes a document and converts it to a Definition.
func ParseTables(data []byte, format Format) (tables.Definition, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return tables.Definition{}, fmt.Errorf("%w: unknown format %q", generic.ErrInvalidTable, format)
	}
	if err != nil {
		return tables.Definition{}, fmt.Errorf("%w: failed to parse %s: %v", generic.ErrInvalidTable, format, err)
	}
	return FromDocument(doc)
}

// FromDocument converts a Document to a Definition. Structural checks
// (ordering, unbounded last tier) happen when the Definition is turned into
// a Registry.
func FromDocument(doc Document) (tables.Definition, error) {
	def := tables.Definition{
		Contribution:       make(map[int][]generic.Band),
		Withholding:        make(map[generic.PeriodKey][]generic.Tier),
		Transitions:        make(map[int]time.Month),
		StandardDeductions: make(map[generic.PeriodKey]decimal.Decimal),
	}

	for _, c := range doc.Contribution {
		bands := make([]generic.Band, len(c.Bands))
		for i, b := range c.Bands {
			bands[i] = generic.Band{UpperLimit: b.Limit, Rate: b.Rate}
		}
		def.Contribution[c.Year] = bands
	}

	for _, w := range doc.Withholding {
		phase, err := generic.ParsePhase(w.Phase)
		if err != nil {
			return tables.Definition{}, fmt.Errorf("withholding %d: %w", w.Year, err)
		}
		tiers := make([]generic.Tier, len(w.Tiers))
		for i, t := range w.Tiers {
			tiers[i] = generic.Tier{Rate: t.Rate, Deduction: t.Deduction}
			if t.Limit != nil {
				tiers[i].UpperLimit = decimal.NewNullDecimal(*t.Limit)
			}
		}
		def.Withholding[generic.PeriodKey{Year: w.Year, Phase: phase}] = tiers
	}

	for _, t := range doc.Transitions {
		def.Transitions[t.Year] = time.Month(t.LastEarlyMonth)
	}

	for _, s := range doc.StandardDeduction {
		phase, err := generic.ParsePhase(s.Phase)
		if err != nil {
			return tables.Definition{}, fmt.Errorf("standard deduction %d: %w", s.Year, err)
		}
		def.StandardDeductions[generic.PeriodKey{Year: s.Year, Phase: phase}] = s.Amount
	}

	return def, nil
}

// ToDocument is the inverse of FromDocument, used to export a registry.
func ToDocument(def tables.Definition) Document {
	var doc Document
	for year, bands := range def.Contribution {
		cd := ContributionDoc{Year: year}
		for _, b := range bands {
			cd.Bands = append(cd.Bands, BandDoc{Limit: b.UpperLimit, Rate: b.Rate})
		}
		doc.Contribution = append(doc.Contribution, cd)
	}
	for key, tiers := range def.Withholding {
		wd := WithholdingDoc{Year: key.Year, Phase: key.Phase.String()}
		for _, t := range tiers {
			td := TierDoc{Rate: t.Rate, Deduction: t.Deduction}
			if !t.Unbounded() {
				limit := t.UpperLimit.Decimal
				td.Limit = &limit
			}
			wd.Tiers = append(wd.Tiers, td)
		}
		doc.Withholding = append(doc.Withholding, wd)
	}
	for year, month := range def.Transitions {
		doc.Transitions = append(doc.Transitions, TransitionDoc{Year: year, LastEarlyMonth: int(month)})
	}
	for key, amount := range def.StandardDeductions {
		doc.StandardDeduction = append(doc.StandardDeduction,
			StandardDeductionDoc{Year: key.Year, Phase: key.Phase.String(), Amount: amount})
	}
	sortDocument(&doc)
	return doc
}

func sortDocument(doc *Document) {
	slices.SortFunc(doc.Contribution, func(a, b ContributionDoc) int { return cmp.Compare(a.Year, b.Year) })
	slices.SortFunc(doc.Withholding, func(a, b WithholdingDoc) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(phaseOrder(a.Phase), phaseOrder(b.Phase)))
	})
	slices.SortFunc(doc.Transitions, func(a, b TransitionDoc) int { return cmp.Compare(a.Year, b.Year) })
	slices.SortFunc(doc.StandardDeduction, func(a, b StandardDeductionDoc) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(phaseOrder(a.Phase), phaseOrder(b.Phase)))
	})
}

func phaseOrder(s string) int {
	p, _ := generic.ParsePhase(s)
	return int(p)
}
