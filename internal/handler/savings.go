package handler

import (
	"net/http"

	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

type savingsResponse struct {
	Savings []models.Saving                     `json:"savings"`
	Balance map[models.Currency]decimal.Decimal `json:"balance"`
}

// HandleSavings handles GET, POST and DELETE requests for savings movements.
// Savings are append-only; balances are derived.
func (d *Dependencies) HandleSavings(w http.ResponseWriter, r *http.Request) {
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		savings, err := d.Store.ListSavings(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get savings")
			return
		}
		WriteJSON(w, http.StatusOK, savingsResponse{Savings: savings, Balance: finance.SavingsBalance(savings)})

	case http.MethodPost:
		var s models.Saving
		if !decodeBody(w, r, &s) {
			return
		}
		if s.Date.IsZero() {
			s.Date = d.today()
		}
		if err := s.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.ID, s.UserID = "", userID
		if err := d.Store.SaveSaving(ctx, &s); err != nil {
			writeStoreError(w, err, "Failed to save saving")
			return
		}
		WriteJSON(w, http.StatusCreated, s)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := d.Store.DeleteSaving(ctx, userID, id); err != nil {
			writeStoreError(w, err, "Failed to delete saving")
			return
		}
		writeDeleted(w)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
