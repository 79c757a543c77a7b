package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
)

// transactionView is a transaction with its cycle-adjusted date.
type transactionView struct {
	models.Transaction
	EffectiveDate calendar.Date `json:"effective_date"`
}

// HandleTransactions handles GET, POST, PUT and DELETE requests for transactions.
func (d *Dependencies) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		txs, err := d.Store.ListTransactions(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get transactions")
			return
		}
		methods, err := d.Store.ListPaymentMethods(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get payment methods")
			return
		}
		byID := make(map[string]*models.PaymentMethod, len(methods))
		for i := range methods {
			byID[methods[i].ID] = &methods[i]
		}

		views := make([]transactionView, 0, len(txs))
		for _, tx := range txs {
			views = append(views, transactionView{Transaction: tx, EffectiveDate: finance.EffectiveDate(tx, byID[tx.PaymentMethodID])})
		}
		sort.SliceStable(views, func(i, j int) bool { return views[i].Date.After(views[j].Date) })
		WriteJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var tx models.Transaction
		if !decodeBody(w, r, &tx) {
			return
		}
		if err := tx.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		// installment children are only created through their plan
		tx.ID, tx.UserID, tx.InstallmentPlanID = "", userID, ""

		if err := d.Store.SaveTransaction(ctx, &tx); err != nil {
			writeStoreError(w, err, "Failed to save transaction")
			return
		}
		slog.Info("created transaction", "id", tx.ID, "type", tx.Type, "amount", tx.Amount.String())
		WriteJSON(w, http.StatusCreated, tx)

	case http.MethodPut:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		var edit models.Transaction
		if !decodeBody(w, r, &edit) {
			return
		}
		tx, err := d.Store.GetTransaction(ctx, userID, id)
		if err != nil {
			writeStoreError(w, err, "Failed to get transaction")
			return
		}
		tx.ApplyEdit(edit)
		if err := d.Store.SaveTransaction(ctx, tx); err != nil {
			writeStoreError(w, err, "Failed to save transaction")
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := d.Store.DeleteTransaction(ctx, userID, id); err != nil {
			writeStoreError(w, err, "Failed to delete transaction")
			return
		}
		slog.Info("deleted transaction", "id", id)
		writeDeleted(w)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
