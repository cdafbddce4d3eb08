package factory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/tables"
)

const tables2026YAML = `
contribution:
  - year: 2026
    bands:
      - {limit: 1621.00, rate: 0.075}
      - {limit: 2902.84, rate: 0.09}
      - {limit: 4354.27, rate: 0.12}
      - {limit: 8475.55, rate: 0.14}
withholding:
  - year: 2026
    tiers:
      - {limit: 2428.80, rate: 0, deduction: 0}
      - {limit: 2826.65, rate: 0.075, deduction: 182.16}
      - {limit: 3751.05, rate: 0.15, deduction: 394.16}
      - {limit: 4664.68, rate: 0.225, deduction: 675.49}
      - {rate: 0.275, deduction: 908.73}
standard_deduction:
  - year: 2026
    amount: 607.20
`

const tables2026JSON = `{
  "withholding": [
    {"year": 2026, "phase": "early", "tiers": [
      {"limit": "2428.80", "rate": "0", "deduction": "0"},
      {"rate": "0.275", "deduction": "908.73"}
    ]},
    {"year": 2026, "phase": "late", "tiers": [
      {"limit": "5000.00", "rate": "0", "deduction": "0"},
      {"rate": "0.275", "deduction": "908.73"}
    ]}
  ],
  "transitions": [{"year": 2026, "last_early_month": 3}],
  "standard_deduction": [{"year": 2026, "phase": "late", "amount": "650.00"}]
}`

func competence(t *testing.T, year, month int) generic.Competence {
	t.Helper()
	c, err := generic.NewCompetence(year, month)
	require.NoError(t, err)
	return c
}

func TestParseTables_YAML(t *testing.T) {
	def, err := factory.ParseTables([]byte(tables2026YAML), factory.FormatYAML)
	require.NoError(t, err)

	require.Len(t, def.Contribution[2026], 4)
	assert.Equal(t, "1621", def.Contribution[2026][0].UpperLimit.String())

	tiers := def.Withholding[generic.YearKey(2026)]
	require.Len(t, tiers, 5)
	assert.False(t, tiers[0].Unbounded())
	assert.True(t, tiers[4].Unbounded())
	assert.Equal(t, "908.73", tiers[4].Deduction.String())

	// GIVEN: The document merged over the built-in tables
	reg, err := tables.Default.Merge(def)
	require.NoError(t, err)

	// THEN: 2026 resolves to its own table and the standard deduction applies
	assert.Equal(t, generic.YearKey(2026), reg.ResolveWithholdingPeriod(competence(t, 2026, 7)))
	assert.Equal(t, "607.20", reg.StandardDeduction(competence(t, 2026, 7)).StringFixed(2))
	_, err = reg.ContributionTable(2026)
	assert.NoError(t, err)
}

func TestParseTables_JSONWithTransition(t *testing.T) {
	def, err := factory.ParseTables([]byte(tables2026JSON), factory.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, time.March, def.Transitions[2026])

	reg, err := tables.Default.Merge(def)
	require.NoError(t, err)

	assert.Equal(t, "IRRF 2026 até março", reg.Legend(reg.ResolveWithholdingPeriod(competence(t, 2026, 3))))
	assert.Equal(t, "IRRF 2026 após abril", reg.Legend(reg.ResolveWithholdingPeriod(competence(t, 2026, 4))))
	assert.Equal(t, "0.00", reg.StandardDeduction(competence(t, 2026, 2)).StringFixed(2))
	assert.Equal(t, "650.00", reg.StandardDeduction(competence(t, 2026, 9)).StringFixed(2))
}

func TestParseTables_Errors(t *testing.T) {
	_, err := factory.ParseTables([]byte(`{"withholding": [{"year": 2026, "phase": "mid", "tiers": []}]}`), factory.FormatJSON)
	assert.ErrorIs(t, err, generic.ErrInvalidTable)

	_, err = factory.ParseTables([]byte(`{not json`), factory.FormatJSON)
	assert.ErrorIs(t, err, generic.ErrInvalidTable)

	_, err = factory.ParseTables([]byte(`{}`), factory.Format("toml"))
	assert.ErrorIs(t, err, generic.ErrInvalidTable)
}

func TestParseTables_StructuralErrorsOnMerge(t *testing.T) {
	// Parsing accepts a table without an unbounded tier; building the registry rejects it
	doc := `{"withholding": [{"year": 2026, "tiers": [{"limit": "1000", "rate": "0", "deduction": "0"}]}]}`
	def, err := factory.ParseTables([]byte(doc), factory.FormatJSON)
	require.NoError(t, err)

	_, err = tables.Default.Merge(def)
	assert.ErrorIs(t, err, generic.ErrInvalidTable)
}

func TestLoadFile_PicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "2026.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(tables2026YAML), 0o600))

	def, err := factory.LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, def.Withholding, 1)

	_, err = factory.LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestToDocument_RoundTripsBuiltin(t *testing.T) {
	doc := factory.ToDocument(tables.Builtin())

	require.Len(t, doc.Contribution, 6)
	assert.Equal(t, 2020, doc.Contribution[0].Year)
	assert.Equal(t, 2025, doc.Contribution[5].Year)

	// Ordered by year, then phase
	assert.Equal(t, 2023, doc.Withholding[3].Year)
	assert.Equal(t, "early", doc.Withholding[3].Phase)
	assert.Equal(t, "late", doc.Withholding[4].Phase)
	assert.Nil(t, doc.Withholding[0].Tiers[4].Limit)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	def, err := factory.ParseTables(data, factory.FormatJSON)
	require.NoError(t, err)

	reg, err := tables.New(def)
	require.NoError(t, err)
	for _, c := range []generic.Competence{competence(t, 2022, 6), competence(t, 2023, 5), competence(t, 2025, 4)} {
		_, want, err := tables.Default.WithholdingTable(c)
		require.NoError(t, err)
		_, got, err := reg.WithholdingTable(c)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.True(t, want[i].Rate.Equal(got[i].Rate))
			assert.True(t, want[i].Deduction.Equal(got[i].Deduction))
			assert.Equal(t, want[i].Unbounded(), got[i].Unbounded())
		}
	}
	assert.Equal(t, "607.20", reg.StandardDeduction(competence(t, 2025, 8)).StringFixed(2))
}
