package handler

import "net/http"

// RegisterRoutes mounts the API and the Functions host endpoints on mux.
func (d *Dependencies) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/transactions", d.HandleTransactions)
	mux.HandleFunc("/api/installments", d.HandleInstallments)
	mux.HandleFunc("/api/subscriptions", d.HandleSubscriptions)
	mux.HandleFunc("/api/payment-methods", d.HandlePaymentMethods)
	mux.HandleFunc("/api/investments", d.HandleInvestments)
	mux.HandleFunc("GET /api/portfolio", d.HandlePortfolio)
	mux.HandleFunc("/api/savings", d.HandleSavings)
	mux.HandleFunc("GET /api/dashboard", d.HandleDashboard)
	mux.HandleFunc("POST /api/prices/refresh", d.HandlePriceRefresh)
	mux.HandleFunc("POST /api/upload", d.HandleUpload)
	mux.HandleFunc("GET /api/health", d.HandleHealth)

	// Functions custom handler entry points
	mux.HandleFunc("/HttpTrigger", d.HandleHttpTrigger(mux))
	mux.HandleFunc("/ProcessQueue", d.ProcessQueue)
	mux.HandleFunc("/NightlyTrigger", d.HandleNightlyTrigger)
}
