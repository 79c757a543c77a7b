package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to render markdown: %v\n", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func ars(d decimal.Decimal) string { return finance.FormatMoney(d, models.CurrencyARS) }

type cycleRow struct {
	Purchase calendar.Date
	Cycle    finance.Cycle
}

func cyclesMarkdown(closing, payment int, rows []cycleRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Billing cycle (closing %d, payment %d)\n\n", closing, payment)
	b.WriteString("| Purchase | Closing | Due |\n|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.Purchase, r.Cycle.Closing, r.Cycle.Due)
	}
	return b.String()
}

func installmentsMarkdown(plan models.InstallmentPlan, children []models.Transaction, method *models.PaymentMethod, status finance.InstallmentStatus, today calendar.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", plan.Description)
	fmt.Fprintf(&b, "%d installments of %s, purchased on %s.\n\n", plan.InstallmentsCount, ars(status.InstallmentValue), plan.PurchaseDate)

	b.WriteString("| # | Date | Due | Amount |\n|---|---|---|---|\n")
	for i, tx := range children {
		fmt.Fprintf(&b, "| %d/%d | %s | %s | %s |\n", i+1, len(children), tx.Date, finance.EffectiveDate(tx, method), ars(tx.Amount))
	}

	fmt.Fprintf(&b, "\n## Status on %s (%s policy)\n\n", today, status.Policy)
	fmt.Fprintf(&b, "- Paid: %s (%d installments)\n", ars(status.Paid), status.InstallmentsPaid)
	fmt.Fprintf(&b, "- Remaining: %s (%d installments)\n", ars(status.Remaining), status.InstallmentsRemaining)
	fmt.Fprintf(&b, "- Progress: %.1f%%\n", status.Progress)
	if status.Finished {
		b.WriteString("- Finished\n")
	} else {
		fmt.Fprintf(&b, "- Current installment: %d\n", status.CurrentInstallment)
	}
	return b.String()
}

// summaryMarkdown renders a dashboard. methods maps payment method ids to
// display names.
func summaryMarkdown(d finance.Dashboard, methods map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Summary %s\n\n", d.Today)
	fmt.Fprintf(&b, "- Month balance: %s\n", ars(d.MonthBalance))
	fmt.Fprintf(&b, "- Installment debt: %s (%d active plans)\n", ars(d.InstallmentDebt), d.ActivePlans)
	fmt.Fprintf(&b, "- Fixed monthly cost: %s\n", ars(d.FixedMonthlyCost))
	fmt.Fprintf(&b, "- Personal balance: %s\n", ars(d.PersonalBalance))

	if len(d.PaymentMethods) > 0 {
		b.WriteString("\n## Payment methods\n\n| Method | Due | Consumption | Fixed | Projected |\n|---|---|---|---|---|\n")
		for _, s := range d.PaymentMethods {
			due := "-"
			if s.Cycle != nil {
				due = s.Cycle.Due.String()
			}
			name := methods[s.PaymentMethodID]
			if name == "" {
				name = s.PaymentMethodID
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", name, due, ars(s.CurrentConsumption), ars(s.FixedCosts), ars(s.ProjectedTotal))
		}
	}

	if len(d.Portfolio.Holdings) > 0 {
		b.WriteString("\n## Portfolio\n\n| Ticker | Quantity | Price | Value | Profit |\n|---|---|---|---|---|\n")
		for _, h := range d.Portfolio.Holdings {
			cur := h.Investment.Currency
			price, value, profit := "-", "-", "-"
			if h.HasPrice {
				price = finance.FormatMoney(h.LastPrice, cur)
				value = finance.FormatMoney(h.CurrentValue, cur)
			}
			if h.HasPrice && h.HasCost {
				profit = fmt.Sprintf("%s (%.2f%%)", finance.FormatMoney(h.Profit, cur), h.ProfitPercent)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", h.Investment.Ticker, h.Investment.Quantity, price, value, profit)
		}
	}

	b.WriteString("\n## Patrimony\n\n")
	currencies := make([]string, 0, len(d.Savings))
	for cur := range d.Savings {
		currencies = append(currencies, string(cur))
	}
	sort.Strings(currencies)
	for _, cur := range currencies {
		c := models.Currency(cur)
		fmt.Fprintf(&b, "- Savings %s: %s\n", cur, finance.FormatMoney(d.Savings[c], c))
	}
	fmt.Fprintf(&b, "- Total ARS: %s\n", ars(d.Patrimony.ARS))
	fmt.Fprintf(&b, "- Total USD: %s\n", finance.FormatMoney(d.Patrimony.USD, models.CurrencyUSD))
	if d.Patrimony.Converted {
		fmt.Fprintf(&b, "- Dólar blue: %s\n", ars(d.Patrimony.Rate.Decimal))
	} else {
		b.WriteString("- Currencies not converted (no exchange rate)\n")
	}
	return b.String()
}
