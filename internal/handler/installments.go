package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
)

type installmentView struct {
	models.InstallmentPlan
	Status finance.InstallmentStatus `json:"status"`
}

// HandleInstallments handles GET, POST, PUT and DELETE requests for
// installment plans. GET amortizes each plan with the policy named by
// ?policy= (ledger by default).
func (d *Dependencies) HandleInstallments(w http.ResponseWriter, r *http.Request) {
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		policyName := r.URL.Query().Get("policy")
		if _, err := finance.PolicyByName(policyName, nil); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		plans, err := d.Store.ListInstallmentPlans(ctx, userID)
		if err != nil {
			writeStoreError(w, err, "Failed to get installment plans")
			return
		}
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

		today := d.today()
		views := make([]installmentView, 0, len(plans))
		for _, plan := range plans {
			policy, _ := finance.PolicyByName(policyName, byID[plan.PaymentMethodID])
			views = append(views, installmentView{
				InstallmentPlan: plan,
				Status:          policy.Status(plan, finance.PlanChildren(plan, txs), today),
			})
		}
		WriteJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var plan models.InstallmentPlan
		if !decodeBody(w, r, &plan) {
			return
		}
		if err := plan.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		plan.ID, plan.UserID = "", userID

		children := finance.BuildInstallmentTransactions(plan)
		if err := d.Store.CreateInstallmentPlan(ctx, &plan, children); err != nil {
			writeStoreError(w, err, "Failed to create installment plan")
			return
		}
		// stores assign the plan ID; link the schedule to it for the status below
		for i := range children {
			children[i].InstallmentPlanID = plan.ID
		}
		slog.Info("created installment plan", "id", plan.ID, "installments", plan.InstallmentsCount, "total", plan.TotalAmount.String())

		var method *models.PaymentMethod
		if plan.PaymentMethodID != "" {
			method, _ = d.Store.GetPaymentMethod(ctx, userID, plan.PaymentMethodID)
		}
		WriteJSON(w, http.StatusCreated, installmentView{
			InstallmentPlan: plan,
			Status:          finance.LedgerPolicy{Method: method}.Status(plan, children, d.today()),
		})

	case http.MethodPut:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		var edit models.InstallmentPlan
		if !decodeBody(w, r, &edit) {
			return
		}
		plan, err := d.Store.GetInstallmentPlan(ctx, userID, id)
		if err != nil {
			writeStoreError(w, err, "Failed to get installment plan")
			return
		}
		plan.ApplyEdit(edit)
		if err := d.Store.UpdateInstallmentPlan(ctx, plan); err != nil {
			writeStoreError(w, err, "Failed to update installment plan")
			return
		}
		WriteJSON(w, http.StatusOK, plan)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := d.Store.DeleteInstallmentPlan(ctx, userID, id); err != nil {
			writeStoreError(w, err, "Failed to delete installment plan")
			return
		}
		slog.Info("deleted installment plan", "id", id)
		writeDeleted(w)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
