package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
)

type paymentMethodView struct {
	models.PaymentMethod
	Status finance.PaymentMethodStatus `json:"status"`
}

// HandlePaymentMethods handles GET, POST, PUT and DELETE requests for payment
// methods. GET includes the current statement status of each method.
func (d *Dependencies) HandlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		methods, err := d.Store.ListPaymentMethods(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get payment methods")
			return
		}
		txs, err := d.Store.ListTransactions(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get transactions")
			return
		}
		plans, err := d.Store.ListRecurringPlans(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get subscriptions")
			return
		}

		statuses := finance.PaymentMethodStatuses(methods, txs, plans, d.today())
		views := make([]paymentMethodView, len(methods))
		for i := range methods {
			views[i] = paymentMethodView{PaymentMethod: methods[i], Status: statuses[i]}
		}
		WriteJSON(w, http.StatusOK, views)

	case http.MethodPost, http.MethodPut:
		var m models.PaymentMethod
		if !decodeBody(w, r, &m) {
			return
		}
		if err := m.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		m.UserID = userID
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := d.Store.GetPaymentMethod(ctx, userID, id); err != nil {
				writeStoreError(w, err, "Failed to get payment method")
				return
			}
			m.ID, status = id, http.StatusOK
		} else {
			m.ID = ""
		}

		if err := d.Store.SavePaymentMethod(ctx, &m); err != nil {
			writeStoreError(w, err, "Failed to save payment method")
			return
		}
		slog.Info("saved payment method", "id", m.ID, "name", m.Name, "type", m.Type)
		WriteJSON(w, status, m)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := d.Store.DeletePaymentMethod(ctx, userID, id); err != nil {
			writeStoreError(w, err, "Failed to delete payment method")
			return
		}
		slog.Info("deleted payment method", "id", id)
		writeDeleted(w)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
