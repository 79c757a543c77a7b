package handler

import (
	"context"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
	"github.com/shopspring/decimal"
)

// Store is the persistence layer used by handlers. Both services.DatabaseService
// and services.SQLiteService implement it. Missing rows return
// services.ErrNotFound.
//
// CreateInstallmentPlan assigns plan.ID when it is empty and links every
// child to it; callers must not rely on the children slice being updated.
type Store interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	ListInstallmentPlans(ctx context.Context, userID string) ([]models.InstallmentPlan, error)
	GetInstallmentPlan(ctx context.Context, userID, id string) (*models.InstallmentPlan, error)
	CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan, children []models.Transaction) error
	UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error
	DeleteInstallmentPlan(ctx context.Context, userID, id string) error

	ListRecurringPlans(ctx context.Context, userID string) ([]models.RecurringPlan, error)
	GetRecurringPlan(ctx context.Context, userID, id string) (*models.RecurringPlan, error)
	SaveRecurringPlan(ctx context.Context, plan *models.RecurringPlan) error
	DeleteRecurringPlan(ctx context.Context, userID, id string) error

	ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, userID, id string) (*models.PaymentMethod, error)
	SavePaymentMethod(ctx context.Context, m *models.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, userID, id string) error

	ListInvestments(ctx context.Context, userID string) ([]models.Investment, error)
	ListAllInvestments(ctx context.Context) ([]models.Investment, error)
	SaveInvestment(ctx context.Context, inv *models.Investment) error
	DeleteInvestment(ctx context.Context, userID, id string) error
	ListMarketPrices(ctx context.Context) ([]models.MarketPrice, error)
	UpsertMarketPrice(ctx context.Context, price models.MarketPrice) error

	ListSavings(ctx context.Context, userID string) ([]models.Saving, error)
	SaveSaving(ctx context.Context, s *models.Saving) error
	DeleteSaving(ctx context.Context, userID, id string) error
}

// BlobClient stores uploaded files.
type BlobClient interface {
	UploadText(ctx context.Context, containerName, blobName, content string) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
	DeleteBlob(ctx context.Context, containerName, blobName string) error
}

// QueueClient enqueues background jobs.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient sends notifications.
type EmailClient interface {
	SendReminderEmail(ctx context.Context, to []string, r services.Reminder) error
	SendImportErrorEmail(ctx context.Context, to []string, fileName string, errs []string) error
}

// FXClient returns the ARS per USD rate used to convert patrimony.
type FXClient interface {
	SellRate(ctx context.Context) decimal.NullDecimal
}

var (
	_ Store            = (*services.DatabaseService)(nil)
	_ Store            = (*services.SQLiteService)(nil)
	_ BlobClient       = (*services.BlobService)(nil)
	_ QueueClient      = (*services.QueueService)(nil)
	_ EmailClient      = (*services.EmailService)(nil)
	_ FXClient         = (*pricing.FXProvider)(nil)
	_ pricing.Resolver = (*pricing.Dispatcher)(nil)
)
