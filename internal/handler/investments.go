package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/shopspring/decimal"
)

func (d *Dependencies) refresher() *pricing.Refresher {
	return &pricing.Refresher{
		Resolver:  d.Prices,
		Store:     d.Store,
		BatchSize: d.Settings.PriceBatchSize,
		Now:       d.now,
	}
}

func (d *Dependencies) fxRate(ctx context.Context) decimal.NullDecimal {
	if d.FX == nil {
		return decimal.NullDecimal{}
	}
	return d.FX.SellRate(ctx)
}

// HandleInvestments handles GET, POST and DELETE requests for holdings. A
// new holding gets its broker page resolved and, when a price resolver is
// configured, its first price fetched.
func (d *Dependencies) HandleInvestments(w http.ResponseWriter, r *http.Request) {
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		invs, err := d.Store.ListInvestments(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get investments")
			return
		}
		WriteJSON(w, http.StatusOK, invs)

	case http.MethodPost:
		var inv models.Investment
		if !decodeBody(w, r, &inv) {
			return
		}
		inv.Normalize()
		if err := inv.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		inv.ID, inv.UserID = "", userID
		if inv.SourceURL == "" {
			inv.SourceURL = pricing.SourceURL(inv.Ticker, inv.Type, inv.Currency)
		}

		if err := d.Store.SaveInvestment(ctx, &inv); err != nil {
			writeStoreError(w, err, "Failed to save investment")
			return
		}
		slog.Info("created investment", "id", inv.ID, "ticker", inv.Ticker, "type", inv.Type)

		if d.Prices != nil {
			d.refresher().Refresh(ctx, []models.Investment{inv})
		}
		WriteJSON(w, http.StatusCreated, inv)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := d.Store.DeleteInvestment(ctx, userID, id); err != nil {
			writeStoreError(w, err, "Failed to delete investment")
			return
		}
		writeDeleted(w)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type portfolioResponse struct {
	Portfolio finance.Portfolio                   `json:"portfolio"`
	Savings   map[models.Currency]decimal.Decimal `json:"savings"`
	Patrimony finance.Patrimony                   `json:"patrimony"`
}

// HandlePortfolio values the caller's holdings with the stored prices.
func (d *Dependencies) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	invs, err := d.Store.ListInvestments(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "Failed to get investments")
		return
	}
	prices, err := d.Store.ListMarketPrices(ctx)
	if err != nil {
		writeStoreError(w, err, "Failed to get market prices")
		return
	}
	savings, err := d.Store.ListSavings(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "Failed to get savings")
		return
	}

	portfolio := finance.ValuePortfolio(invs, finance.PriceIndex(prices))
	balance := finance.SavingsBalance(savings)
	WriteJSON(w, http.StatusOK, portfolioResponse{
		Portfolio: portfolio,
		Savings:   balance,
		Patrimony: finance.ComputePatrimony(portfolio, balance, d.fxRate(ctx)),
	})
}
