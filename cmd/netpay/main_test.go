package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payslip"
	"github.com/warp/payroll-engine/store/sqlite"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_PrintsReport(t *testing.T) {
	code, out, _ := runCLI("-year", "2022", "-month", "6", "-gross", "3000")

	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "Salário bruto: 3000.00\nDependentes: 0\n\n=== INSS (RGPS) ===\n"))
	assert.Contains(t, out, "=== IRRF 2022 ===\n")
	assert.True(t, strings.HasSuffix(out, "Salário líquido (Bruto − INSS (RGPS) − IRRF): 2668.99\n"))
}

func TestRun_RPPSAndSimplified(t *testing.T) {
	code, out, _ := runCLI("-year", "2024", "-month", "3", "-gross", "4200",
		"-regime", "rpps", "-rate", "14", "-dependents", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Previdência Municipal: 4200.00 × 14.00% = 588.00")

	code, out, _ = runCLI("-year", "2025", "-month", "6", "-gross", "5000", "-simplified")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Base = Remuneração − Dedução legal = 5000.00 − 607.20 = 4392.80")
}

func TestRun_ValidationMessages(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-year", "2022", "-month", "6"}, payslip.MsgInvalidGross},
		{[]string{"-year", "2022", "-month", "6", "-gross", "abc"}, payslip.MsgInvalidGross},
		{[]string{"-year", "2022", "-month", "13", "-gross", "1000"}, payslip.MsgInvalidMonth},
		{[]string{"-year", "2022", "-month", "6", "-gross", "1000", "-dependents", "-1"}, payslip.MsgInvalidDependents},
		{[]string{"-year", "2022", "-month", "6", "-gross", "1000", "-regime", "RPPS"}, payslip.MsgInvalidRate},
		{[]string{"-year", "2022", "-month", "6", "-gross", "1000", "-regime", "RPPS", "-rate", "x"}, payslip.MsgInvalidRate},
		{[]string{"-year", "2022", "-month", "6", "-gross", "1000", "-regime", "CLT"}, payslip.MsgInvalidRegime},
	}

	for _, tt := range tests {
		code, out, _ := runCLI(tt.args...)
		assert.Equal(t, 1, code, "%v", tt.args)
		assert.Equal(t, tt.want+"\n", out, "%v", tt.args)
	}
}

func TestRun_NoTableAndBadFlags(t *testing.T) {
	code, out, errOut := runCLI("-year", "2026", "-month", "2", "-gross", "3500")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no contribution table for 2026")

	code, _, _ = runCLI("-unknown")
	assert.Equal(t, 2, code)
}

func TestRun_ExtraTablesAndHistory(t *testing.T) {
	dir := t.TempDir()
	tablesPath := filepath.Join(dir, "2026.yaml")
	require.NoError(t, os.WriteFile(tablesPath, []byte(`
contribution:
  - year: 2026
    bands:
      - {limit: 1621.00, rate: 0.075}
      - {limit: 8475.55, rate: 0.14}
`), 0o600))
	dbPath := filepath.Join(dir, "history.db")

	// GIVEN: A 2026 contribution table loaded from a file
	code, out, errOut := runCLI("-year", "2026", "-month", "2", "-gross", "3500",
		"-tables", tablesPath, "-db", dbPath)

	// THEN: RGPS works for 2026 and the calculation is saved
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "=== IRRF 2025 após maio ===")

	s, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer s.Close()
	list, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, strings.TrimSuffix(out, "\n"), list[0].Report)
}

func TestRun_BadTablesFile(t *testing.T) {
	code, _, errOut := runCLI("-gross", "1000", "-tables", filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "tables:")
}
