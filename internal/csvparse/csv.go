package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// Holdings CSV columns. Header names are matched case-insensitively and
// avg_buy_price may be omitted or left blank.
const (
	colTicker      = "ticker"
	colName        = "name"
	colType        = "type"
	colQuantity    = "quantity"
	colAvgBuyPrice = "avg_buy_price"
	colCurrency    = "currency"
)

var requiredColumns = []string{colTicker, colType, colQuantity, colCurrency}

// ParseHoldings parses broker positions from a CSV string. It returns the
// valid rows as investments (without user or id) and one message per
// rejected row.
func ParseHoldings(content string) ([]models.Investment, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Investment{}, nil
	}

	headers := parseHeaders(records[0])
	for _, col := range requiredColumns {
		if !contains(headers, col) {
			return nil, []string{fmt.Sprintf("Missing column %q", col)}
		}
	}

	var holdings []models.Investment
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlank(record) {
			continue
		}
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		row := make(map[string]string, len(headers))
		for j, header := range headers {
			row[header] = strings.TrimSpace(record[j])
		}

		inv, err := mapToInvestment(row)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		holdings = append(holdings, *inv)
	}

	return holdings, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func mapToInvestment(row map[string]string) (*models.Investment, error) {
	quantity, err := decimal.NewFromString(row[colQuantity])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %q", row[colQuantity])
	}

	var avg decimal.NullDecimal
	if s := row[colAvgBuyPrice]; s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid avg_buy_price: %q", s)
		}
		avg = decimal.NewNullDecimal(d)
	}

	inv := &models.Investment{
		Ticker:      row[colTicker],
		Name:        row[colName],
		Type:        models.AssetType(strings.ToLower(row[colType])),
		Quantity:    quantity,
		AvgBuyPrice: avg,
		Currency:    models.Currency(strings.ToUpper(row[colCurrency])),
	}
	inv.Normalize()
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}
