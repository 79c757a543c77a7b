package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a row does not exist for the user.
var ErrNotFound = errors.New("not found")

func newID() string { return uuid.New().String() }

// entity is a decoded table row. Getters tolerate missing keys and the
// different JSON types a property can come back as.
type entity map[string]any

func (e entity) str(key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

func (e entity) dec(key string) decimal.Decimal {
	switch v := e[key].(type) {
	case string:
		d, _ := decimal.NewFromString(v)
		return d
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func (e entity) nullDec(key string) decimal.NullDecimal {
	switch v := e[key].(type) {
	case string:
		if v == "" {
			return decimal.NullDecimal{}
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(v))
	}
	return decimal.NullDecimal{}
}

func (e entity) intPtr(key string) *int {
	var i int
	switch v := e[key].(type) {
	case float64:
		i = int(v)
	case int32:
		i = int(v)
	case string:
		if _, err := fmt.Sscanf(v, "%d", &i); err != nil {
			return nil
		}
	default:
		return nil
	}
	return &i
}

func (e entity) integer(key string) int {
	if p := e.intPtr(key); p != nil {
		return *p
	}
	return 0
}

func (e entity) boolean(key string) bool {
	v, _ := e[key].(bool)
	return v
}

func (e entity) date(key string) calendar.Date {
	d, err := calendar.Parse(e.str(key))
	if err != nil {
		return calendar.Date{}
	}
	return d
}

func (e entity) timestamp(key string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.str(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

// setInt stores p when it is set. Tables has no null, a missing property
// reads back as nil.
func (e entity) setInt(key string, p *int) {
	if p != nil {
		e[key] = *p
	}
}

func dateString(d calendar.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func nullDecString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// odataQuote escapes v for use inside a quoted OData filter literal.
func odataQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
