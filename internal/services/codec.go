package services

import (
	"time"

	"github.com/rocjay1/chanchito/internal/models"
)

// Table rows are partitioned by user id and keyed by entity id. Decimals are
// stored as strings and dates as yyyy-MM-dd.

func transactionEntity(t models.Transaction) entity {
	return entity{
		"PartitionKey":      t.UserID,
		"RowKey":            t.ID,
		"Description":       t.Description,
		"Amount":            t.Amount.String(),
		"Type":              string(t.Type),
		"Date":              dateString(t.Date),
		"CategoryId":        t.CategoryID,
		"PaymentMethodId":   t.PaymentMethodID,
		"InstallmentPlanId": t.InstallmentPlanID,
		"RecurringPlanId":   t.RecurringPlanID,
	}
}

func transactionFrom(e entity) models.Transaction {
	return models.Transaction{
		ID:                e.str("RowKey"),
		UserID:            e.str("PartitionKey"),
		Description:       e.str("Description"),
		Amount:            e.dec("Amount"),
		Type:              models.TransactionType(e.str("Type")),
		Date:              e.date("Date"),
		CategoryID:        e.str("CategoryId"),
		PaymentMethodID:   e.str("PaymentMethodId"),
		InstallmentPlanID: e.str("InstallmentPlanId"),
		RecurringPlanID:   e.str("RecurringPlanId"),
	}
}

func installmentEntity(p models.InstallmentPlan) entity {
	return entity{
		"PartitionKey":      p.UserID,
		"RowKey":            p.ID,
		"Description":       p.Description,
		"TotalAmount":       p.TotalAmount.String(),
		"InstallmentsCount": p.InstallmentsCount,
		"PurchaseDate":      dateString(p.PurchaseDate),
		"CategoryId":        p.CategoryID,
		"PaymentMethodId":   p.PaymentMethodID,
	}
}

func installmentFrom(e entity) models.InstallmentPlan {
	return models.InstallmentPlan{
		ID:                e.str("RowKey"),
		UserID:            e.str("PartitionKey"),
		Description:       e.str("Description"),
		TotalAmount:       e.dec("TotalAmount"),
		InstallmentsCount: e.integer("InstallmentsCount"),
		PurchaseDate:      e.date("PurchaseDate"),
		CategoryID:        e.str("CategoryId"),
		PaymentMethodID:   e.str("PaymentMethodId"),
	}
}

func recurringEntity(p models.RecurringPlan) entity {
	return entity{
		"PartitionKey":    p.UserID,
		"RowKey":          p.ID,
		"Description":     p.Description,
		"Amount":          p.Amount.String(),
		"IsActive":        p.IsActive,
		"CategoryId":      p.CategoryID,
		"PaymentMethodId": p.PaymentMethodID,
	}
}

func recurringFrom(e entity) models.RecurringPlan {
	return models.RecurringPlan{
		ID:              e.str("RowKey"),
		UserID:          e.str("PartitionKey"),
		Description:     e.str("Description"),
		Amount:          e.dec("Amount"),
		IsActive:        e.boolean("IsActive"),
		CategoryID:      e.str("CategoryId"),
		PaymentMethodID: e.str("PaymentMethodId"),
	}
}

func paymentMethodEntity(m models.PaymentMethod) entity {
	e := entity{
		"PartitionKey": m.UserID,
		"RowKey":       m.ID,
		"Name":         m.Name,
		"Type":         string(m.Type),
		"IsPersonal":   m.IsPersonal,
	}
	e.setInt("DefaultClosingDay", m.DefaultClosingDay)
	e.setInt("DefaultPaymentDay", m.DefaultPaymentDay)
	return e
}

func paymentMethodFrom(e entity) models.PaymentMethod {
	return models.PaymentMethod{
		ID:                e.str("RowKey"),
		UserID:            e.str("PartitionKey"),
		Name:              e.str("Name"),
		Type:              models.PaymentMethodType(e.str("Type")),
		DefaultClosingDay: e.intPtr("DefaultClosingDay"),
		DefaultPaymentDay: e.intPtr("DefaultPaymentDay"),
		IsPersonal:        e.boolean("IsPersonal"),
	}
}

func investmentEntity(i models.Investment) entity {
	return entity{
		"PartitionKey": i.UserID,
		"RowKey":       i.ID,
		"Ticker":       i.Ticker,
		"Name":         i.Name,
		"Type":         string(i.Type),
		"Quantity":     i.Quantity.String(),
		"AvgBuyPrice":  nullDecString(i.AvgBuyPrice),
		"Currency":     string(i.Currency),
		"SourceUrl":    i.SourceURL,
	}
}

func investmentFrom(e entity) models.Investment {
	return models.Investment{
		ID:          e.str("RowKey"),
		UserID:      e.str("PartitionKey"),
		Ticker:      e.str("Ticker"),
		Name:        e.str("Name"),
		Type:        models.AssetType(e.str("Type")),
		Quantity:    e.dec("Quantity"),
		AvgBuyPrice: e.nullDec("AvgBuyPrice"),
		Currency:    models.Currency(e.str("Currency")),
		SourceURL:   e.str("SourceUrl"),
	}
}

// marketPricePartition holds every market price; prices are shared by users.
const marketPricePartition = "MARKET_PRICES"

func marketPriceEntity(p models.MarketPrice) entity {
	if p.Currency == "" {
		p.Currency = models.CurrencyARS
	}
	return entity{
		"PartitionKey": marketPricePartition,
		"RowKey":       p.Key(),
		"Ticker":       p.Ticker,
		"Currency":     string(p.Currency),
		"LastPrice":    p.LastPrice.String(),
		"LastUpdate":   p.LastUpdate.UTC().Format(time.RFC3339Nano),
	}
}

func marketPriceFrom(e entity) models.MarketPrice {
	return models.MarketPrice{
		Ticker:     e.str("Ticker"),
		Currency:   models.Currency(e.str("Currency")),
		LastPrice:  e.dec("LastPrice"),
		LastUpdate: e.timestamp("LastUpdate"),
	}
}

func savingEntity(s models.Saving) entity {
	return entity{
		"PartitionKey": s.UserID,
		"RowKey":       s.ID,
		"Description":  s.Description,
		"Amount":       s.Amount.String(),
		"Currency":     string(s.Currency),
		"Date":         dateString(s.Date),
	}
}

func savingFrom(e entity) models.Saving {
	return models.Saving{
		ID:          e.str("RowKey"),
		UserID:      e.str("PartitionKey"),
		Description: e.str("Description"),
		Amount:      e.dec("Amount"),
		Currency:    models.Currency(e.str("Currency")),
		Date:        e.date("Date"),
	}
}
