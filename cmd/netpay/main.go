// Command netpay prints the net-pay calculation memo for one payslip.
//
//	netpay -year 2022 -month 6 -gross 3000
//	netpay -year 2025 -month 5 -gross 5000 -simplified
//	netpay -year 2024 -month 3 -gross 4200 -regime RPPS -rate 14 -dependents 1
//
// Invalid input prints the validation message and exits with status 1.
// With -db the calculation is also saved to the history database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/contribution"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payslip"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tables"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	now := time.Now()
	fs := flag.NewFlagSet("netpay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	year := fs.Int("year", now.Year(), "competence year")
	month := fs.Int("month", int(now.Month()), "competence month (1-12)")
	gross := fs.String("gross", "", "gross monthly pay")
	dependents := fs.Int("dependents", 0, "number of dependents")
	simplified := fs.Bool("simplified", false, "use the simplified (standard) deduction")
	regime := fs.String("regime", string(contribution.RegimeRGPS), "RGPS or RPPS")
	rate := fs.String("rate", "", "RPPS contribution rate in percent")
	tablesPath := fs.String("tables", "", "extra rate tables file (JSON or YAML)")
	dbPath := fs.String("db", "", "save the calculation to this SQLite history database")
	logLevel := fs.String("log.level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logrus.SetOutput(stderr)
	config.ApplyLogLevel(*logLevel)

	registry := tables.Default
	if *tablesPath != "" {
		def, err := factory.LoadFile(*tablesPath)
		if err == nil {
			registry, err = registry.Merge(def)
		}
		if err != nil {
			fmt.Fprintf(stderr, "tables: %v\n", err)
			return 2
		}
	}

	in := payslip.Input{
		Year:              *year,
		Month:             *month,
		Dependents:        *dependents,
		StandardDeduction: *simplified,
		Regime:            contribution.Regime(*regime),
	}
	if r, err := contribution.ParseRegime(*regime); err == nil {
		in.Regime = r
	}
	// Unparseable numbers become zero/nil and fail validation with the
	// same message as missing ones.
	if g, err := decimal.NewFromString(*gross); err == nil {
		in.Gross = g
	}
	if *rate != "" {
		if r, err := decimal.NewFromString(*rate); err == nil {
			in.Rate = &r
		}
	}

	slip, err := payslip.Calculate(registry, in)
	if err != nil {
		if msg, ok := payslip.ValidationMessage(err); ok {
			fmt.Fprintln(stdout, msg)
			return 1
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, slip.Report())

	if *dbPath != "" {
		store, err := sqlite.New(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "history: %v\n", err)
			return 1
		}
		defer store.Close()
		rec := slip.Record(now)
		if err := store.Save(context.Background(), rec); err != nil {
			fmt.Fprintf(stderr, "history: %v\n", err)
			return 1
		}
		logrus.WithField("calculation", rec.ID).Info("Saved to history")
	}
	return 0
}
