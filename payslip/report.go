package payslip

import (
	"fmt"
	"strings"

	"github.com/warp/payroll-engine/generic"
)

// Report renders the payslip as the plain-text calculation memo:
// gross and dependents, the contribution section, the withholding section
// headed by its table legend, and the net pay line.
func (p Payslip) Report() string {
	label := p.Contribution.Label

	var b strings.Builder
	fmt.Fprintf(&b, "Salário bruto: %s\n", generic.FormatMoney(p.Input.Gross))
	fmt.Fprintf(&b, "Dependentes: %d\n\n", p.Input.Dependents)

	fmt.Fprintf(&b, "=== %s ===\n", label)
	b.WriteString(strings.Join(p.Contribution.Trace, "\n"))
	fmt.Fprintf(&b, "\nTotal %s: %s\n\n", label, generic.FormatMoney(p.Contribution.Total))

	fmt.Fprintf(&b, "=== %s ===\n", p.Legend)
	b.WriteString(strings.Join(p.Withholding.Trace, "\n"))

	fmt.Fprintf(&b, "\n\nSalário líquido (Bruto − %s − IRRF): %s", label, generic.FormatMoney(p.Net))
	return b.String()
}
