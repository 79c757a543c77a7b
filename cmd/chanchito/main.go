// Command chanchito runs the finance calculations from the terminal: billing
// cycles, installment schedules, quotes and a summary of a local database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/rocjay1/chanchito/internal/logger"
	"github.com/shopspring/decimal"
)

var logLevel = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&cycleCmd{}, "calculators")
	commander.Register(&installmentsCmd{}, "calculators")
	commander.Register(&quoteCmd{}, "market")
	commander.Register(&summaryCmd{}, "reports")

	flag.Parse()
	logger.Init(*logLevel)
	decimal.MarshalJSONWithoutQuotes = true

	os.Exit(int(commander.Execute(context.Background())))
}
