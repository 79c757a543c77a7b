package handler

import (
	"context"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
	"github.com/shopspring/decimal"
)

// MockStore is a Store whose methods delegate to the matching Func field.
// Unset list methods return nothing and unset getters return ErrNotFound.
type MockStore struct {
	ListTransactionsFunc      func(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransactionFunc        func(ctx context.Context, userID, id string) (*models.Transaction, error)
	SaveTransactionFunc       func(ctx context.Context, tx *models.Transaction) error
	DeleteTransactionFunc     func(ctx context.Context, userID, id string) error
	ListInstallmentPlansFunc  func(ctx context.Context, userID string) ([]models.InstallmentPlan, error)
	GetInstallmentPlanFunc    func(ctx context.Context, userID, id string) (*models.InstallmentPlan, error)
	CreateInstallmentPlanFunc func(ctx context.Context, plan *models.InstallmentPlan, children []models.Transaction) error
	UpdateInstallmentPlanFunc func(ctx context.Context, plan *models.InstallmentPlan) error
	DeleteInstallmentPlanFunc func(ctx context.Context, userID, id string) error
	ListRecurringPlansFunc    func(ctx context.Context, userID string) ([]models.RecurringPlan, error)
	GetRecurringPlanFunc      func(ctx context.Context, userID, id string) (*models.RecurringPlan, error)
	SaveRecurringPlanFunc     func(ctx context.Context, plan *models.RecurringPlan) error
	DeleteRecurringPlanFunc   func(ctx context.Context, userID, id string) error
	ListPaymentMethodsFunc    func(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	GetPaymentMethodFunc      func(ctx context.Context, userID, id string) (*models.PaymentMethod, error)
	SavePaymentMethodFunc     func(ctx context.Context, m *models.PaymentMethod) error
	DeletePaymentMethodFunc   func(ctx context.Context, userID, id string) error
	ListInvestmentsFunc       func(ctx context.Context, userID string) ([]models.Investment, error)
	ListAllInvestmentsFunc    func(ctx context.Context) ([]models.Investment, error)
	SaveInvestmentFunc        func(ctx context.Context, inv *models.Investment) error
	DeleteInvestmentFunc      func(ctx context.Context, userID, id string) error
	ListMarketPricesFunc      func(ctx context.Context) ([]models.MarketPrice, error)
	UpsertMarketPriceFunc     func(ctx context.Context, price models.MarketPrice) error
	ListSavingsFunc           func(ctx context.Context, userID string) ([]models.Saving, error)
	SaveSavingFunc            func(ctx context.Context, s *models.Saving) error
	DeleteSavingFunc          func(ctx context.Context, userID, id string) error
}

func (m *MockStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, userID, id)
	}
	return nil, services.ErrNotFound
}

func (m *MockStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if m.SaveTransactionFunc != nil {
		return m.SaveTransactionFunc(ctx, tx)
	}
	return nil
}

func (m *MockStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	if m.DeleteTransactionFunc != nil {
		return m.DeleteTransactionFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockStore) ListInstallmentPlans(ctx context.Context, userID string) ([]models.InstallmentPlan, error) {
	if m.ListInstallmentPlansFunc != nil {
		return m.ListInstallmentPlansFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) GetInstallmentPlan(ctx context.Context, userID, id string) (*models.InstallmentPlan, error) {
	if m.GetInstallmentPlanFunc != nil {
		return m.GetInstallmentPlanFunc(ctx, userID, id)
	}
	return nil, services.ErrNotFound
}

func (m *MockStore) CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan, children []models.Transaction) error {
	if m.CreateInstallmentPlanFunc != nil {
		return m.CreateInstallmentPlanFunc(ctx, plan, children)
	}
	return nil
}

func (m *MockStore) UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	if m.UpdateInstallmentPlanFunc != nil {
		return m.UpdateInstallmentPlanFunc(ctx, plan)
	}
	return nil
}

func (m *MockStore) DeleteInstallmentPlan(ctx context.Context, userID, id string) error {
	if m.DeleteInstallmentPlanFunc != nil {
		return m.DeleteInstallmentPlanFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockStore) ListRecurringPlans(ctx context.Context, userID string) ([]models.RecurringPlan, error) {
	if m.ListRecurringPlansFunc != nil {
		return m.ListRecurringPlansFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) GetRecurringPlan(ctx context.Context, userID, id string) (*models.RecurringPlan, error) {
	if m.GetRecurringPlanFunc != nil {
		return m.GetRecurringPlanFunc(ctx, userID, id)
	}
	return nil, services.ErrNotFound
}

func (m *MockStore) SaveRecurringPlan(ctx context.Context, plan *models.RecurringPlan) error {
	if m.SaveRecurringPlanFunc != nil {
		return m.SaveRecurringPlanFunc(ctx, plan)
	}
	return nil
}

func (m *MockStore) DeleteRecurringPlan(ctx context.Context, userID, id string) error {
	if m.DeleteRecurringPlanFunc != nil {
		return m.DeleteRecurringPlanFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockStore) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	if m.ListPaymentMethodsFunc != nil {
		return m.ListPaymentMethodsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) GetPaymentMethod(ctx context.Context, userID, id string) (*models.PaymentMethod, error) {
	if m.GetPaymentMethodFunc != nil {
		return m.GetPaymentMethodFunc(ctx, userID, id)
	}
	return nil, services.ErrNotFound
}

func (m *MockStore) SavePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	if m.SavePaymentMethodFunc != nil {
		return m.SavePaymentMethodFunc(ctx, pm)
	}
	return nil
}

func (m *MockStore) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	if m.DeletePaymentMethodFunc != nil {
		return m.DeletePaymentMethodFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockStore) ListInvestments(ctx context.Context, userID string) ([]models.Investment, error) {
	if m.ListInvestmentsFunc != nil {
		return m.ListInvestmentsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) ListAllInvestments(ctx context.Context) ([]models.Investment, error) {
	if m.ListAllInvestmentsFunc != nil {
		return m.ListAllInvestmentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	if m.SaveInvestmentFunc != nil {
		return m.SaveInvestmentFunc(ctx, inv)
	}
	return nil
}

func (m *MockStore) DeleteInvestment(ctx context.Context, userID, id string) error {
	if m.DeleteInvestmentFunc != nil {
		return m.DeleteInvestmentFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockStore) ListMarketPrices(ctx context.Context) ([]models.MarketPrice, error) {
	if m.ListMarketPricesFunc != nil {
		return m.ListMarketPricesFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) UpsertMarketPrice(ctx context.Context, price models.MarketPrice) error {
	if m.UpsertMarketPriceFunc != nil {
		return m.UpsertMarketPriceFunc(ctx, price)
	}
	return nil
}

func (m *MockStore) ListSavings(ctx context.Context, userID string) ([]models.Saving, error) {
	if m.ListSavingsFunc != nil {
		return m.ListSavingsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) SaveSaving(ctx context.Context, s *models.Saving) error {
	if m.SaveSavingFunc != nil {
		return m.SaveSavingFunc(ctx, s)
	}
	return nil
}

func (m *MockStore) DeleteSaving(ctx context.Context, userID, id string) error {
	if m.DeleteSavingFunc != nil {
		return m.DeleteSavingFunc(ctx, userID, id)
	}
	return nil
}

type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, containerName, blobName, content string) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
	DeleteBlobFunc   func(ctx context.Context, containerName, blobName string) error
}

func (m *MockBlobClient) UploadText(ctx context.Context, containerName, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, containerName, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

func (m *MockBlobClient) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	if m.DeleteBlobFunc != nil {
		return m.DeleteBlobFunc(ctx, containerName, blobName)
	}
	return nil
}

type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

type MockEmailClient struct {
	SendReminderEmailFunc    func(ctx context.Context, to []string, r services.Reminder) error
	SendImportErrorEmailFunc func(ctx context.Context, to []string, fileName string, errs []string) error
}

func (m *MockEmailClient) SendReminderEmail(ctx context.Context, to []string, r services.Reminder) error {
	if m.SendReminderEmailFunc != nil {
		return m.SendReminderEmailFunc(ctx, to, r)
	}
	return nil
}

func (m *MockEmailClient) SendImportErrorEmail(ctx context.Context, to []string, fileName string, errs []string) error {
	if m.SendImportErrorEmailFunc != nil {
		return m.SendImportErrorEmailFunc(ctx, to, fileName, errs)
	}
	return nil
}

type MockResolver struct {
	ResolveFunc func(ctx context.Context, q pricing.Quote) (decimal.Decimal, bool)
}

func (m *MockResolver) Resolve(ctx context.Context, q pricing.Quote) (decimal.Decimal, bool) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, q)
	}
	return decimal.Zero, false
}

type MockFX struct {
	Rate decimal.NullDecimal
}

func (m *MockFX) SellRate(context.Context) decimal.NullDecimal { return m.Rate }
