package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/handler"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
)

type summaryCmd struct {
	db     string
	user   string
	today  string
	fx     bool
	output string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the dashboard of a local database" }
func (*summaryCmd) Usage() string {
	return `chanchito summary -db <file> -user <id> [-today <yyyy-mm-dd>] [-fx]

  Prints the dashboard of a user stored in a SQLite database: month balance,
  installment debt, cards, portfolio and patrimony. With -fx the patrimony is
  converted at the dólar blue rate.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "chanchito.db", "SQLite database file")
	f.StringVar(&c.user, "user", "", "user id")
	f.StringVar(&c.today, "today", "", "report date (defaults to today)")
	f.BoolVar(&c.fx, "fx", false, "convert the patrimony at the dólar blue rate")
	f.StringVar(&c.output, "o", "markdown", "output format (markdown, raw)")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	today, err := dateOrToday(c.today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, err := services.NewSQLiteService(c.db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	in, err := handler.LoadDashboardInput(ctx, store, c.user, today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.fx {
		in.FXRate = pricing.NewFXProvider(pricing.NewHTTPClient(pricing.DefaultTimeout), 0).SellRate(ctx)
	}

	methods := make(map[string]string, len(in.PaymentMethods))
	for _, m := range in.PaymentMethods {
		methods[m.ID] = m.Name
	}
	md := summaryMarkdown(finance.BuildDashboard(in), methods)
	if c.output == "raw" {
		fmt.Print(md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}
