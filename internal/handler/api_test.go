package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// fixedNow is 2024-03-10 in the afternoon, UTC.
func fixedNow() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }

func apiDeps(store Store) *Dependencies {
	return &Dependencies{Store: store, Now: fixedNow, Settings: Settings{DefaultUserID: "user-1"}}
}

func apiRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return httptest.NewRequest(method, target, &buf)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestUserID_HeaderAndDefault(t *testing.T) {
	var seen string
	store := &MockStore{ListSavingsFunc: func(ctx context.Context, userID string) ([]models.Saving, error) {
		seen = userID
		return nil, nil
	}}

	deps := apiDeps(store)
	req := apiRequest(t, http.MethodGet, "/api/savings", nil)
	req.Header.Set(principalHeader, "principal-7")
	deps.HandleSavings(httptest.NewRecorder(), req)
	assert.Equal(t, "principal-7", seen)

	deps.HandleSavings(httptest.NewRecorder(), apiRequest(t, http.MethodGet, "/api/savings", nil))
	assert.Equal(t, "user-1", seen)

	deps.Settings.DefaultUserID = ""
	w := httptest.NewRecorder()
	deps.HandleSavings(w, apiRequest(t, http.MethodGet, "/api/savings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleTransactions_ListUsesEffectiveDate(t *testing.T) {
	store := &MockStore{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			return []models.Transaction{
				{ID: "a", Description: "Old", Amount: decimal.NewFromInt(10), Type: models.TransactionExpense, Date: calendar.MustParse("2024-01-15")},
				{ID: "b", Description: "Card", Amount: decimal.NewFromInt(20), Type: models.TransactionExpense, Date: calendar.MustParse("2024-03-26"), PaymentMethodID: "visa"},
			}, nil
		},
		ListPaymentMethodsFunc: func(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
			return []models.PaymentMethod{{ID: "visa", Type: models.PaymentCredit, DefaultClosingDay: intPtr(25), DefaultPaymentDay: intPtr(5)}}, nil
		},
	}
	w := httptest.NewRecorder()
	apiDeps(store).HandleTransactions(w, apiRequest(t, http.MethodGet, "/api/transactions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]transactionView](t, w)
	require.Len(t, views, 2)
	assert.Equal(t, "b", views[0].ID, "newest first")
	assert.Equal(t, "2024-05-05", views[0].EffectiveDate.String())
	assert.Equal(t, "2024-01-15", views[1].EffectiveDate.String())
}

func TestHandleTransactions_Create(t *testing.T) {
	var saved models.Transaction
	store := &MockStore{SaveTransactionFunc: func(ctx context.Context, tx *models.Transaction) error {
		tx.ID = "tx-1"
		saved = *tx
		return nil
	}}
	body := map[string]any{
		"id": "forged", "user_id": "someone-else", "description": "Lunch", "amount": "12.5",
		"type": "expense", "date": "2024-03-09", "installment_plan_id": "plan-x",
	}
	w := httptest.NewRecorder()
	apiDeps(store).HandleTransactions(w, apiRequest(t, http.MethodPost, "/api/transactions", body))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Empty(t, saved.InstallmentPlanID)
	assert.Equal(t, "tx-1", decode[models.Transaction](t, w).ID)
}

func TestHandleTransactions_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"negative amount", map[string]any{"description": "x", "amount": "-1", "type": "expense", "date": "2024-03-01"}, "amount must not be negative"},
		{"bad type", map[string]any{"description": "x", "amount": "1", "type": "refund", "date": "2024-03-01"}, `invalid transaction type "refund"`},
		{"no date", map[string]any{"description": "x", "amount": "1", "type": "income"}, "date is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{SaveTransactionFunc: func(ctx context.Context, tx *models.Transaction) error {
				t.Error("invalid transaction reached the store")
				return nil
			}}
			w := httptest.NewRecorder()
			apiDeps(store).HandleTransactions(w, apiRequest(t, http.MethodPost, "/api/transactions", tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestHandleTransactions_EditOnlyTouchesEditableFields(t *testing.T) {
	existing := models.Transaction{
		ID: "tx-1", UserID: "user-1", Description: "Lunch", Amount: decimal.NewFromInt(10),
		Type: models.TransactionExpense, Date: calendar.MustParse("2024-03-01"), CategoryID: "food",
	}
	var saved models.Transaction
	store := &MockStore{
		GetTransactionFunc: func(ctx context.Context, userID, id string) (*models.Transaction, error) {
			assert.Equal(t, "tx-1", id)
			tx := existing
			return &tx, nil
		},
		SaveTransactionFunc: func(ctx context.Context, tx *models.Transaction) error {
			saved = *tx
			return nil
		},
	}
	body := map[string]any{"description": "Team lunch", "amount": "999", "type": "income", "category_id": "work"}
	w := httptest.NewRecorder()
	apiDeps(store).HandleTransactions(w, apiRequest(t, http.MethodPut, "/api/transactions?id=tx-1", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Team lunch", saved.Description)
	assert.Equal(t, "work", saved.CategoryID)
	assert.Equal(t, "2024-03-01", saved.Date.String())
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, models.TransactionExpense, saved.Type)
}

func TestHandleTransactions_EditKeepsOmittedCategory(t *testing.T) {
	var saved models.Transaction
	store := &MockStore{
		GetTransactionFunc: func(ctx context.Context, userID, id string) (*models.Transaction, error) {
			return &models.Transaction{ID: id, UserID: userID, Description: "Lunch", Amount: decimal.NewFromInt(10),
				Type: models.TransactionExpense, Date: calendar.MustParse("2024-03-01"), CategoryID: "food"}, nil
		},
		SaveTransactionFunc: func(ctx context.Context, tx *models.Transaction) error {
			saved = *tx
			return nil
		},
	}
	w := httptest.NewRecorder()
	apiDeps(store).HandleTransactions(w, apiRequest(t, http.MethodPut, "/api/transactions?id=tx-1", map[string]any{"date": "2024-03-02"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "food", saved.CategoryID)
	assert.Equal(t, "Lunch", saved.Description)
	assert.Equal(t, "2024-03-02", saved.Date.String())
}

func TestHandleTransactions_DeleteErrors(t *testing.T) {
	store := &MockStore{DeleteTransactionFunc: func(ctx context.Context, userID, id string) error {
		if id == "missing" {
			return services.ErrNotFound
		}
		return errors.New("table unavailable")
	}}
	deps := apiDeps(store)

	w := httptest.NewRecorder()
	deps.HandleTransactions(w, apiRequest(t, http.MethodDelete, "/api/transactions", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	deps.HandleTransactions(w, apiRequest(t, http.MethodDelete, "/api/transactions?id=missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	deps.HandleTransactions(w, apiRequest(t, http.MethodDelete, "/api/transactions?id=x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "table unavailable")
}

func tvPlan() models.InstallmentPlan {
	return models.InstallmentPlan{
		ID: "plan-1", UserID: "user-1", Description: "TV", TotalAmount: decimal.NewFromInt(1200),
		InstallmentsCount: 6, PurchaseDate: calendar.MustParse("2024-01-10"),
	}
}

func TestHandleInstallments_CreateBuildsSchedule(t *testing.T) {
	var children []models.Transaction
	store := &MockStore{CreateInstallmentPlanFunc: func(ctx context.Context, plan *models.InstallmentPlan, txs []models.Transaction) error {
		// the store sees the schedule before the plan has an ID
		for _, tx := range txs {
			assert.Empty(t, tx.InstallmentPlanID)
		}
		plan.ID = "plan-1"
		children = txs
		return nil
	}}
	body := map[string]any{"description": "TV", "total_amount": "1200", "installments_count": 6, "purchase_date": "2024-01-10"}
	w := httptest.NewRecorder()
	apiDeps(store).HandleInstallments(w, apiRequest(t, http.MethodPost, "/api/installments", body))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, children, 6)
	assert.Equal(t, "TV (1/6)", children[0].Description)
	assert.Equal(t, "2024-06-10", children[5].Date.String())
	assert.Equal(t, "plan-1", children[5].InstallmentPlanID)

	view := decode[installmentView](t, w)
	assert.Equal(t, "plan-1", view.ID)
	assert.Equal(t, 3, view.Status.InstallmentsPaid)
}

func TestHandleInstallments_CreateFailure(t *testing.T) {
	store := &MockStore{CreateInstallmentPlanFunc: func(ctx context.Context, plan *models.InstallmentPlan, txs []models.Transaction) error {
		return errors.New("batch rejected")
	}}
	body := map[string]any{"description": "TV", "total_amount": "1200", "installments_count": 6, "purchase_date": "2024-01-10"}
	w := httptest.NewRecorder()
	apiDeps(store).HandleInstallments(w, apiRequest(t, http.MethodPost, "/api/installments", body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleInstallments_ListPolicies(t *testing.T) {
	plan := tvPlan()
	store := &MockStore{
		ListInstallmentPlansFunc: func(ctx context.Context, userID string) ([]models.InstallmentPlan, error) {
			return []models.InstallmentPlan{plan}, nil
		},
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			// only the first installment was recorded
			return []models.Transaction{{InstallmentPlanID: "plan-1", Amount: decimal.NewFromInt(200), Type: models.TransactionExpense, Date: calendar.MustParse("2024-01-10")}}, nil
		},
	}
	deps := apiDeps(store)

	w := httptest.NewRecorder()
	deps.HandleInstallments(w, apiRequest(t, http.MethodGet, "/api/installments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode[[]installmentView](t, w)
	require.Len(t, ledger, 1)
	assert.Equal(t, "ledger", ledger[0].Status.Policy)
	assert.True(t, ledger[0].Status.Remaining.Equal(decimal.NewFromInt(1000)))

	w = httptest.NewRecorder()
	deps.HandleInstallments(w, apiRequest(t, http.MethodGet, "/api/installments?policy=calendar", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cal := decode[[]installmentView](t, w)
	assert.Equal(t, "calendar", cal[0].Status.Policy)
	assert.Equal(t, 3, cal[0].Status.CurrentInstallment)
	assert.True(t, cal[0].Status.Remaining.Equal(decimal.NewFromInt(800)))

	w = httptest.NewRecorder()
	deps.HandleInstallments(w, apiRequest(t, http.MethodGet, "/api/installments?policy=straight-line", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSubscriptions_ListTotal(t *testing.T) {
	store := &MockStore{ListRecurringPlansFunc: func(ctx context.Context, userID string) ([]models.RecurringPlan, error) {
		return []models.RecurringPlan{
			{Description: "Netflix", Amount: decimal.NewFromInt(20), IsActive: true},
			{Description: "Gym", Amount: decimal.NewFromInt(35), IsActive: true},
			{Description: "Old", Amount: decimal.NewFromInt(100), IsActive: false},
		}, nil
	}}
	w := httptest.NewRecorder()
	apiDeps(store).HandleSubscriptions(w, apiRequest(t, http.MethodGet, "/api/subscriptions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[subscriptionsResponse](t, w)
	assert.Len(t, resp.Subscriptions, 3)
	assert.True(t, resp.TotalMonthlyCost.Equal(decimal.NewFromInt(55)))
}

func TestHandleSubscriptions_UpdateMissing(t *testing.T) {
	body := map[string]any{"description": "Netflix", "amount": "20", "is_active": true}
	w := httptest.NewRecorder()
	apiDeps(&MockStore{}).HandleSubscriptions(w, apiRequest(t, http.MethodPut, "/api/subscriptions?id=nope", body))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlePaymentMethods_ListWithStatus(t *testing.T) {
	store := &MockStore{
		ListPaymentMethodsFunc: func(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
			return []models.PaymentMethod{{ID: "visa", Name: "Visa", Type: models.PaymentCredit, DefaultClosingDay: intPtr(25), DefaultPaymentDay: intPtr(5)}}, nil
		},
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			return []models.Transaction{{Amount: decimal.NewFromInt(70), Type: models.TransactionExpense, Date: calendar.MustParse("2024-03-02"), PaymentMethodID: "visa"}}, nil
		},
		ListRecurringPlansFunc: func(ctx context.Context, userID string) ([]models.RecurringPlan, error) {
			return []models.RecurringPlan{{Amount: decimal.NewFromInt(20), IsActive: true, PaymentMethodID: "visa"}}, nil
		},
	}
	w := httptest.NewRecorder()
	apiDeps(store).HandlePaymentMethods(w, apiRequest(t, http.MethodGet, "/api/payment-methods", nil))

	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]paymentMethodView](t, w)
	require.Len(t, views, 1)
	assert.True(t, views[0].Status.Windowed)
	assert.Equal(t, "2024-04-05", views[0].Status.Cycle.Due.String())
	assert.True(t, views[0].Status.ProjectedTotal.Equal(decimal.NewFromInt(70)))
	assert.True(t, views[0].Status.CurrentConsumption.Equal(decimal.NewFromInt(50)))
}

func TestHandlePaymentMethods_RejectsDaysOnDebit(t *testing.T) {
	body := map[string]any{"name": "Debit", "type": "debit", "default_closing_day": 10}
	w := httptest.NewRecorder()
	apiDeps(&MockStore{}).HandlePaymentMethods(w, apiRequest(t, http.MethodPost, "/api/payment-methods", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleInvestments_Create(t *testing.T) {
	var saved models.Investment
	var prices []models.MarketPrice
	store := &MockStore{
		SaveInvestmentFunc: func(ctx context.Context, inv *models.Investment) error {
			inv.ID = "inv-1"
			saved = *inv
			return nil
		},
		UpsertMarketPriceFunc: func(ctx context.Context, p models.MarketPrice) error {
			prices = append(prices, p)
			return nil
		},
	}
	deps := apiDeps(store)
	deps.Prices = &MockResolver{ResolveFunc: func(ctx context.Context, q pricing.Quote) (decimal.Decimal, bool) {
		assert.Equal(t, "https://iol.invertironline.com/titulo/cotizacion/BCBA/AL30", q.SourceURL)
		return decimal.NewFromInt(71250), true
	}}

	body := map[string]any{"ticker": " al30 ", "type": "bond", "quantity": "100", "currency": "ARS"}
	w := httptest.NewRecorder()
	deps.HandleInvestments(w, apiRequest(t, http.MethodPost, "/api/investments", body))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "AL30", saved.Ticker)
	assert.Equal(t, "AL30", saved.Name)
	assert.Equal(t, "user-1", saved.UserID)
	require.Len(t, prices, 1)
	assert.Equal(t, "AL30", prices[0].Ticker)
	assert.Equal(t, models.CurrencyARS, prices[0].Currency)
	assert.True(t, prices[0].LastUpdate.Equal(fixedNow()))
}

func TestHandlePortfolio(t *testing.T) {
	store := &MockStore{
		ListInvestmentsFunc: func(ctx context.Context, userID string) ([]models.Investment, error) {
			return []models.Investment{
				{Ticker: "GGAL", Type: models.AssetStock, Quantity: decimal.NewFromInt(10), AvgBuyPrice: decimal.NewNullDecimal(decimal.NewFromInt(100)), Currency: models.CurrencyARS},
				{Ticker: "BTC", Type: models.AssetCrypto, Quantity: decimal.NewFromInt(1), Currency: models.CurrencyUSD},
			}, nil
		},
		ListMarketPricesFunc: func(ctx context.Context) ([]models.MarketPrice, error) {
			return []models.MarketPrice{{Ticker: "GGAL", LastPrice: decimal.NewFromInt(150)}}, nil
		},
		ListSavingsFunc: func(ctx context.Context, userID string) ([]models.Saving, error) {
			return []models.Saving{{Amount: decimal.NewFromInt(500), Currency: models.CurrencyARS}}, nil
		},
	}
	deps := apiDeps(store)
	deps.FX = &MockFX{Rate: decimal.NewNullDecimal(decimal.NewFromInt(1000))}

	w := httptest.NewRecorder()
	deps.HandlePortfolio(w, apiRequest(t, http.MethodGet, "/api/portfolio", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[portfolioResponse](t, w)
	require.Len(t, resp.Portfolio.Holdings, 2)
	assert.True(t, resp.Portfolio.Holdings[0].Profit.Equal(decimal.NewFromInt(500)))
	assert.False(t, resp.Portfolio.Holdings[1].HasPrice)
	assert.True(t, resp.Patrimony.ARS.Equal(decimal.NewFromInt(2000)), resp.Patrimony.ARS.String())
	assert.True(t, resp.Patrimony.USD.Equal(decimal.NewFromInt(2)), resp.Patrimony.USD.String())
}

func TestHandleSavings_CreateDefaultsDate(t *testing.T) {
	var saved models.Saving
	store := &MockStore{SaveSavingFunc: func(ctx context.Context, s *models.Saving) error {
		saved = *s
		return nil
	}}
	w := httptest.NewRecorder()
	apiDeps(store).HandleSavings(w, apiRequest(t, http.MethodPost, "/api/savings", map[string]any{"amount": "100", "currency": "USD"}))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-03-10", saved.Date.String())

	w = httptest.NewRecorder()
	apiDeps(store).HandleSavings(w, apiRequest(t, http.MethodPost, "/api/savings", map[string]any{"amount": "100", "currency": "EUR"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDashboard(t *testing.T) {
	plan := tvPlan()
	store := &MockStore{
		ListTransactionsFunc: func(ctx context.Context, userID string) ([]models.Transaction, error) {
			return []models.Transaction{
				{Amount: decimal.NewFromInt(5000), Type: models.TransactionIncome, Date: calendar.MustParse("2024-03-01")},
				{Amount: decimal.NewFromInt(300), Type: models.TransactionExpense, Date: calendar.MustParse("2024-03-05")},
			}, nil
		},
		ListInstallmentPlansFunc: func(ctx context.Context, userID string) ([]models.InstallmentPlan, error) {
			return []models.InstallmentPlan{plan}, nil
		},
		ListRecurringPlansFunc: func(ctx context.Context, userID string) ([]models.RecurringPlan, error) {
			return []models.RecurringPlan{{Amount: decimal.NewFromInt(20), IsActive: true}}, nil
		},
	}
	w := httptest.NewRecorder()
	apiDeps(store).HandleDashboard(w, apiRequest(t, http.MethodGet, "/api/dashboard", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03-10", resp["today"])
	assert.EqualValues(t, 4700, resp["month_balance"])
	assert.EqualValues(t, 1200, resp["installment_debt"])
	assert.EqualValues(t, 20, resp["fixed_monthly_cost"])
}

func TestHandleDashboard_StoreError(t *testing.T) {
	store := &MockStore{ListSavingsFunc: func(ctx context.Context, userID string) ([]models.Saving, error) {
		return nil, errors.New("boom")
	}}
	w := httptest.NewRecorder()
	apiDeps(store).HandleDashboard(w, apiRequest(t, http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	_, err := LoadDashboardInput(context.Background(), store, "user-1", calendar.MustParse("2024-03-10"))
	assert.ErrorContains(t, err, "failed to get savings")
}

func TestHandlePriceRefresh(t *testing.T) {
	store := &MockStore{ListInvestmentsFunc: func(ctx context.Context, userID string) ([]models.Investment, error) {
		return []models.Investment{{Ticker: "GGAL", Type: models.AssetStock}, {Ticker: "BTC", Type: models.AssetCrypto}}, nil
	}}

	t.Run("not configured", func(t *testing.T) {
		w := httptest.NewRecorder()
		apiDeps(store).HandlePriceRefresh(w, apiRequest(t, http.MethodPost, "/api/prices/refresh", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("sync", func(t *testing.T) {
		deps := apiDeps(store)
		deps.Prices = &MockResolver{ResolveFunc: func(ctx context.Context, q pricing.Quote) (decimal.Decimal, bool) {
			return decimal.NewFromInt(10), q.Ticker == "BTC"
		}}
		w := httptest.NewRecorder()
		deps.HandlePriceRefresh(w, apiRequest(t, http.MethodPost, "/api/prices/refresh", nil))

		require.Equal(t, http.StatusOK, w.Code)
		report := decode[pricing.RefreshReport](t, w)
		assert.Equal(t, 2, report.Attempted)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, []string{"GGAL"}, report.Missing)
	})

	t.Run("async", func(t *testing.T) {
		var job Job
		deps := apiDeps(store)
		deps.Queue = &MockQueueClient{EnqueueMessageFunc: func(ctx context.Context, queueName string, message any) error {
			job = message.(Job)
			return nil
		}}
		w := httptest.NewRecorder()
		deps.HandlePriceRefresh(w, apiRequest(t, http.MethodPost, "/api/prices/refresh?async=true", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, Job{Kind: JobRefreshPrices, UserID: "user-1"}, job)
	})
}

func TestHandleHttpTrigger(t *testing.T) {
	deps := apiDeps(&MockStore{ListSavingsFunc: func(ctx context.Context, userID string) ([]models.Saving, error) {
		assert.Equal(t, "principal-9", userID)
		return []models.Saving{{Amount: decimal.NewFromInt(5), Currency: models.CurrencyUSD}}, nil
	}})
	mux := http.NewServeMux()
	deps.RegisterRoutes(mux)

	var envelope HTTPTriggerRequest
	envelope.Data.Req.Method = http.MethodGet
	envelope.Data.Req.URL = "http://localhost:7071/api/savings"
	envelope.Data.Req.Headers = map[string][]string{principalHeader: {"principal-9"}}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewReader(raw)))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HTTPTriggerResponse](t, w)
	assert.Equal(t, http.StatusOK, resp.Outputs.Res.StatusCode)
	assert.Equal(t, "application/json", resp.Outputs.Res.Headers["Content-Type"])
	assert.Contains(t, resp.Outputs.Res.Body, `"USD":5`)
}

func TestDecodeTriggerBody(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(decodeTriggerBody(`{"a":1}`, false)))
	assert.Equal(t, `{"a":1}`, string(decodeTriggerBody("eyJhIjoxfQ==", false)))
	assert.Equal(t, `{"a":1}`, string(decodeTriggerBody("eyJhIjoxfQ==", true)))
	assert.Equal(t, "plain text!", string(decodeTriggerBody("plain text!", false)))
}

func TestRoutes(t *testing.T) {
	mux := http.NewServeMux()
	apiDeps(&MockStore{}).RegisterRoutes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/transactions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
