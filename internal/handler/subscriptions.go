package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

type subscriptionsResponse struct {
	Subscriptions    []models.RecurringPlan `json:"subscriptions"`
	TotalMonthlyCost decimal.Decimal        `json:"total_monthly_cost"`
}

// HandleSubscriptions handles GET, POST, PUT and DELETE requests for
// recurring plans.
func (d *Dependencies) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		plans, err := d.Store.ListRecurringPlans(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get subscriptions")
			return
		}
		WriteJSON(w, http.StatusOK, subscriptionsResponse{
			Subscriptions:    plans,
			TotalMonthlyCost: finance.TotalMonthlyCost(plans),
		})

	case http.MethodPost, http.MethodPut:
		var plan models.RecurringPlan
		if !decodeBody(w, r, &plan) {
			return
		}
		if err := plan.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		plan.UserID = userID
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := d.Store.GetRecurringPlan(ctx, userID, id); err != nil {
				writeStoreError(w, err, "Failed to get subscription")
				return
			}
			plan.ID, status = id, http.StatusOK
		} else {
			plan.ID = ""
		}

		if err := d.Store.SaveRecurringPlan(ctx, &plan); err != nil {
			writeStoreError(w, err, "Failed to save subscription")
			return
		}
		slog.Info("saved subscription", "id", plan.ID, "active", plan.IsActive)
		WriteJSON(w, status, plan)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := d.Store.DeleteRecurringPlan(ctx, userID, id); err != nil {
			writeStoreError(w, err, "Failed to delete subscription")
			return
		}
		writeDeleted(w)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
