package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Reminder is the content of a statement due reminder.
type Reminder struct {
	MethodName         string
	DueDate            calendar.Date
	ClosingDate        calendar.Date
	CurrentConsumption decimal.Decimal
	FixedCosts         decimal.Decimal
	ProjectedTotal     decimal.Decimal
}

// ReminderMarkdown renders a reminder as Markdown.
func ReminderMarkdown(r Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.MethodName)
	fmt.Fprintf(&b, "El resumen que cerró el **%s** vence el **%s**.\n\n", r.ClosingDate, r.DueDate)
	b.WriteString("| Concepto | Monto |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Consumos | %s |\n", finance.FormatMoney(r.CurrentConsumption, models.CurrencyARS))
	fmt.Fprintf(&b, "| Gastos fijos | %s |\n", finance.FormatMoney(r.FixedCosts, models.CurrencyARS))
	fmt.Fprintf(&b, "| **Total estimado** | **%s** |\n", finance.FormatMoney(r.ProjectedTotal, models.CurrencyARS))
	return b.String()
}

// ImportErrorMarkdown renders the rows skipped by an import as Markdown.
func ImportErrorMarkdown(fileName string, errs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Importación de %s\n\n", fileName)
	b.WriteString("Algunas filas no se pudieron importar:\n\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	return b.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts Markdown to an HTML email body.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`<html><body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6;">`)
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	buf.WriteString("</body></html>")
	return buf.String(), nil
}
