package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

type installmentsCmd struct {
	description string
	total       string
	count       int
	date        string
	today       string
	policy      string
	closing     int
	payment     int
}

func (*installmentsCmd) Name() string     { return "installments" }
func (*installmentsCmd) Synopsis() string { return "build an installment schedule and its status" }
func (*installmentsCmd) Usage() string {
	return `chanchito installments -total <amount> -count <n> -date <yyyy-mm-dd> [-policy ledger|calendar] [-today <yyyy-mm-dd>]

  Prints the installments of a purchase and how much of it is paid as of
  -today. With -closing and -payment the installments are charged to a card
  and count once their statement is due.
`
}

func (c *installmentsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "description", "Purchase", "description of the purchase")
	f.StringVar(&c.total, "total", "", "total amount")
	f.IntVar(&c.count, "count", 1, "number of installments")
	f.StringVar(&c.date, "date", "", "purchase date (defaults to today)")
	f.StringVar(&c.today, "today", "", "status date (defaults to today)")
	f.StringVar(&c.policy, "policy", "ledger", "amortization policy (ledger, calendar)")
	f.IntVar(&c.closing, "closing", 0, "closing day of the card, if any")
	f.IntVar(&c.payment, "payment", 0, "payment day of the card, if any")
}

func (c *installmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	total, err := decimal.NewFromString(c.total)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -total %q\n", c.total)
		return subcommands.ExitUsageError
	}
	purchase, err := dateOrToday(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	today, err := dateOrToday(c.today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	plan := models.InstallmentPlan{
		ID:                "cli",
		Description:       c.description,
		TotalAmount:       total,
		InstallmentsCount: c.count,
		PurchaseDate:      purchase,
	}
	if err := plan.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var method *models.PaymentMethod
	if c.closing > 0 || c.payment > 0 {
		method = &models.PaymentMethod{Name: "card", Type: models.PaymentCredit, DefaultClosingDay: &c.closing, DefaultPaymentDay: &c.payment}
		if err := method.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	policy, err := finance.PolicyByName(c.policy, method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	children := finance.BuildInstallmentTransactions(plan)
	status := policy.Status(plan, children, today)
	printMarkdown(installmentsMarkdown(plan, children, method, status, today))
	return subcommands.ExitSuccess
}

func dateOrToday(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Today(nil), nil
	}
	return calendar.Parse(s)
}
