package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
)

type quoteCmd struct {
	assetType string
	currency  string
	source    string
	timeout   time.Duration
	fx        bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch the latest price of tickers" }
func (*quoteCmd) Usage() string {
	return `chanchito quote -type <stock|cedear|bond|on|crypto|fci> [-currency <ARS|USD>] [-source <url>] <ticker> ...

  Fetches the latest price of each ticker, in the given currency, from the
  source used for its asset type. With -fx the dólar blue sell rate is printed too.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetType, "type", string(models.AssetStock), "asset type of the tickers")
	f.StringVar(&c.currency, "currency", string(models.CurrencyARS), "currency of the quotes")
	f.StringVar(&c.source, "source", "", "quote page, for broker priced assets")
	f.DurationVar(&c.timeout, "timeout", pricing.DefaultTimeout, "timeout of each lookup")
	f.BoolVar(&c.fx, "fx", false, "also print the dólar blue sell rate")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	assetType := models.AssetType(strings.ToLower(c.assetType))
	if !assetType.Valid() {
		fmt.Fprintf(os.Stderr, "Error: invalid asset type %q\n", c.assetType)
		return subcommands.ExitUsageError
	}
	currency := models.Currency(strings.ToUpper(c.currency))
	if !currency.Valid() {
		fmt.Fprintf(os.Stderr, "Error: invalid currency %q\n", c.currency)
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 && !c.fx {
		fmt.Fprintln(os.Stderr, "Error: at least one ticker is required")
		return subcommands.ExitUsageError
	}

	client := pricing.NewHTTPClient(c.timeout)
	dispatcher := pricing.NewDispatcher(client, c.timeout)

	status := subcommands.ExitSuccess
	for _, arg := range f.Args() {
		ticker := strings.ToUpper(strings.TrimSpace(arg))
		q := pricing.Quote{Ticker: ticker, Type: assetType, Currency: currency, SourceURL: c.source}
		if q.SourceURL == "" {
			q.SourceURL = pricing.SourceURL(ticker, assetType, currency)
		}
		price, err := dispatcher.Fetch(ctx, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ticker, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s\t%s %s\n", ticker, currency, price.String())
	}

	if c.fx {
		fx := pricing.NewFXProvider(client, 0)
		q, err := fx.Blue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dólar blue: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("USD/ARS blue\t%s\n", q.Sell.String())
	}
	return status
}
