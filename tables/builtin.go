package tables

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Default is the registry of statutory tables shipped with the engine.
var Default = MustNew(Builtin())

// Builtin returns the statutory INSS and IRRF tables for 2020-2025.
func Builtin() Definition {
	return Definition{
		Contribution:       builtinContribution(),
		Withholding:        builtinWithholding(),
		Transitions:        builtinTransitions(),
		StandardDeductions: builtinStandardDeductions(),
	}
}

// =============================================================================
// INSS (RGPS) - Progressive contribution, slice by slice
// =============================================================================

func builtinContribution() map[int][]generic.Band {
	b := generic.NewBand
	return map[int][]generic.Band{
		2020: {b("1045.00", "0.075"), b("2089.60", "0.09"), b("3134.40", "0.12"), b("6101.06", "0.14")},
		2021: {b("1100.00", "0.075"), b("2203.48", "0.09"), b("3305.22", "0.12"), b("6433.57", "0.14")},
		2022: {b("1212.00", "0.075"), b("2427.35", "0.09"), b("3641.03", "0.12"), b("7087.22", "0.14")},
		2023: {b("1302.00", "0.075"), b("2571.29", "0.09"), b("3856.94", "0.12"), b("7507.49", "0.14")},
		2024: {b("1412.00", "0.075"), b("2666.68", "0.09"), b("4000.03", "0.12"), b("7786.02", "0.14")},
		2025: {b("1518.00", "0.075"), b("2793.88", "0.09"), b("4190.83", "0.12"), b("8157.41", "0.14")},
	}
}

// =============================================================================
// IRRF - Monthly withholding
// =============================================================================

func builtinWithholding() map[generic.PeriodKey][]generic.Tier {
	t, top := generic.NewTier, generic.NewTopTier

	base2015 := []generic.Tier{
		t("1903.98", "0", "0"),
		t("2826.65", "0.075", "142.80"),
		t("3751.05", "0.15", "354.80"),
		t("4664.68", "0.225", "636.13"),
		top("0.275", "869.36"),
	}
	may2023 := []generic.Tier{
		t("2112.00", "0", "0"),
		t("2826.65", "0.075", "158.40"),
		t("3751.05", "0.15", "370.40"),
		t("4664.68", "0.225", "651.73"),
		top("0.275", "884.96"),
	}

	return map[generic.PeriodKey][]generic.Tier{
		generic.YearKey(2020): base2015,
		generic.YearKey(2021): base2015,
		generic.YearKey(2022): base2015,

		{Year: 2023, Phase: generic.PhaseEarly}: base2015,
		{Year: 2023, Phase: generic.PhaseLate}:  may2023,

		{Year: 2024, Phase: generic.PhaseEarly}: may2023,
		{Year: 2024, Phase: generic.PhaseLate}: {
			t("2259.20", "0", "0"),
			t("2826.65", "0.075", "142.80"),
			t("3751.05", "0.15", "354.80"),
			t("4664.68", "0.225", "636.13"),
			top("0.275", "869.36"),
		},

		{Year: 2025, Phase: generic.PhaseEarly}: {
			t("2259.20", "0", "0"),
			t("2826.65", "0.075", "169.44"),
			t("3751.05", "0.15", "381.44"),
			t("4664.68", "0.225", "662.77"),
			top("0.275", "896.00"),
		},
		{Year: 2025, Phase: generic.PhaseLate}: {
			t("2428.80", "0", "0"),
			t("2826.65", "0.075", "182.16"),
			t("3751.05", "0.15", "394.16"),
			t("4664.68", "0.225", "675.49"),
			top("0.275", "908.73"),
		},
	}
}

// Last month covered by the early table in years with a mid-year change.
func builtinTransitions() map[int]time.Month {
	return map[int]time.Month{
		2023: time.April,
		2024: time.January,
		2025: time.April,
	}
}

func builtinStandardDeductions() map[generic.PeriodKey]decimal.Decimal {
	return map[generic.PeriodKey]decimal.Decimal{
		generic.YearKey(2024):                   decimal.RequireFromString("564.80"),
		{Year: 2025, Phase: generic.PhaseEarly}: decimal.RequireFromString("564.80"),
		{Year: 2025, Phase: generic.PhaseLate}:  decimal.RequireFromString("607.20"),
	}
}
