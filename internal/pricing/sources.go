package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

const (
	yahooBaseURL   = "https://query1.finance.yahoo.com"
	binanceBaseURL = "https://api.binance.com"
	brokerBaseURL  = "https://iol.invertironline.com"
)

// YahooSource quotes stocks and CEDEARs from the Yahoo Finance chart API.
// ARS quotes use the BYMA listing (".BA"); USD quotes use the primary
// listing, which only exists for stocks.
type YahooSource struct {
	Client  *http.Client
	BaseURL string
}

const (
	yahooPricePath    = "$.chart.result[0].meta.regularMarketPrice"
	yahooCurrencyPath = "$.chart.result[0].meta.currency"
)

func (s *YahooSource) Fetch(ctx context.Context, q Quote) (decimal.Decimal, error) {
	base := s.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	symbol, ok := yahooSymbol(q)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s %s has no %s listing", ErrNoPrice, q.Type, q.Ticker, q.currency())
	}
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", base, url.PathEscape(symbol))

	var doc any
	if err := getJSON(ctx, s.Client, addr, &doc); err != nil {
		return decimal.Zero, err
	}
	// the listing decides the currency, so a mismatch means the symbol was wrong
	if cur, err := jsonpath.Get(yahooCurrencyPath, doc); err == nil {
		if listed, ok := first(cur).(string); ok && listed != "" && !strings.EqualFold(listed, string(q.currency())) {
			return decimal.Zero, fmt.Errorf("%w: %s is listed in %s, not %s", ErrNoPrice, symbol, listed, q.currency())
		}
	}
	return extract(doc, yahooPricePath)
}

func yahooSymbol(q Quote) (string, bool) {
	switch q.currency() {
	case models.CurrencyARS:
		if strings.Contains(q.Ticker, ".") {
			return q.Ticker, true
		}
		return q.Ticker + ".BA", true
	case models.CurrencyUSD:
		// a CEDEAR represents a fraction of the share, so the share price is not its price
		if q.Type != models.AssetStock || strings.HasSuffix(q.Ticker, ".BA") {
			return "", false
		}
		return q.Ticker, true
	}
	return "", false
}

// BinanceSource quotes crypto assets against USDT for USD holdings and
// against ARS for ARS holdings.
type BinanceSource struct {
	Client  *http.Client
	BaseURL string
}

func (s *BinanceSource) Fetch(ctx context.Context, q Quote) (decimal.Decimal, error) {
	base := s.BaseURL
	if base == "" {
		base = binanceBaseURL
	}
	var pair string
	switch q.currency() {
	case models.CurrencyUSD:
		pair = q.Ticker + "USDT"
	case models.CurrencyARS:
		pair = q.Ticker + "ARS"
	default:
		return decimal.Zero, fmt.Errorf("%w: no %s pair for %s", ErrNoPrice, q.Currency, q.Ticker)
	}
	addr := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", base, url.QueryEscape(pair))

	var doc any
	if err := getJSON(ctx, s.Client, addr, &doc); err != nil {
		return decimal.Zero, err
	}
	return extract(doc, "$.price")
}

// extract reads the value at path in doc and normalizes it.
func extract(doc any, path string) (decimal.Decimal, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading %q: %w", path, err)
	}
	val = first(val)
	price, ok := NormalizePrice(val)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q is %v", ErrNoPrice, path, val)
	}
	return price, nil
}

// first unwraps the single match jsonpath may return as a list.
func first(val any) any {
	if list, ok := val.([]any); ok && len(list) > 0 {
		return list[0]
	}
	return val
}

// BrokerSource scrapes the last traded price from a broker quote page. It
// serves bonds, ONs and mutual funds, which have no public JSON feed.
type BrokerSource struct {
	Client  *http.Client
	BaseURL string
}

// lastPriceField marks the element holding the last price on the quote page.
const lastPriceField = "UltimoPrecio"

func (s *BrokerSource) Fetch(ctx context.Context, q Quote) (decimal.Decimal, error) {
	addr := q.SourceURL
	if addr == "" {
		addr = sourceURL(s.BaseURL, q.Ticker, q.Type, q.currency())
	}
	if addr == "" {
		return decimal.Zero, fmt.Errorf("no quote page for %s of type %q", q.Ticker, q.Type)
	}

	body, err := get(ctx, s.Client, addr)
	if err != nil {
		return decimal.Zero, err
	}
	defer body.Close()

	doc, err := html.Parse(body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %q: %w", addr, err)
	}
	node := findByAttr(doc, "data-field", lastPriceField)
	if node == nil {
		return decimal.Zero, fmt.Errorf("%w: no %s field on %q", ErrNoPrice, lastPriceField, addr)
	}
	text := textContent(node)
	price, ok := NormalizePrice(text)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unreadable price %q on %q", ErrNoPrice, text, addr)
	}
	return price, nil
}

// SourceURL returns the broker quote page of a scraped asset type in the
// given currency, or "" for types quoted through an API. Bonds and ONs trade
// in USD under the species ticker with a "D" suffix; a fund page quotes in
// the fund's own currency.
func SourceURL(ticker string, t models.AssetType, c models.Currency) string {
	return sourceURL(brokerBaseURL, ticker, t, c)
}

func sourceURL(base, ticker string, t models.AssetType, c models.Currency) string {
	if base == "" {
		base = brokerBaseURL
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	switch t {
	case models.AssetON, models.AssetBond:
		if c == models.CurrencyUSD {
			ticker += "D"
		}
		return fmt.Sprintf("%s/titulo/cotizacion/BCBA/%s", base, url.PathEscape(ticker))
	case models.AssetFCI:
		return fmt.Sprintf("%s/titulo/cotizacion/FCI/%s", base, url.PathEscape(ticker))
	default:
		return ""
	}
}

func findByAttr(n *html.Node, key, val string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == key && a.Val == val {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByAttr(c, key, val); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
