package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
)

type cycleCmd struct {
	closing int
	payment int
}

func (*cycleCmd) Name() string     { return "cycle" }
func (*cycleCmd) Synopsis() string { return "show the billing cycle and due date of a card purchase" }
func (*cycleCmd) Usage() string {
	return `chanchito cycle -closing <day> -payment <day> [yyyy-mm-dd ...]

  Prints the closing and due dates of the statement a purchase made on each
  date lands in. Without dates, today is used.
`
}

func (c *cycleCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.closing, "closing", 0, "closing day of the card (1-31)")
	f.IntVar(&c.payment, "payment", 0, "payment day of the card (1-31)")
}

func (c *cycleCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.closing < 1 || c.closing > 31 || c.payment < 1 || c.payment > 31 {
		fmt.Fprintln(os.Stderr, "Error: -closing and -payment must be between 1 and 31")
		return subcommands.ExitUsageError
	}

	dates := []calendar.Date{calendar.Today(nil)}
	if f.NArg() > 0 {
		dates = dates[:0]
		for _, arg := range f.Args() {
			d, err := calendar.Parse(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
			dates = append(dates, d)
		}
	}

	rows := make([]cycleRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, cycleRow{Purchase: d, Cycle: finance.CycleFor(d, c.closing, c.payment)})
	}
	printMarkdown(cyclesMarkdown(c.closing, c.payment, rows))
	return subcommands.ExitSuccess
}
