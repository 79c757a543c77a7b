package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/chanchito/internal/models"
)

// TableNames are the Azure Tables used by DatabaseService. Empty names take
// the defaults.
type TableNames struct {
	Transactions   string
	Installments   string
	Subscriptions  string
	PaymentMethods string
	Investments    string
	MarketPrices   string
	Savings        string
}

func (n TableNames) withDefaults() TableNames {
	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return TableNames{
		Transactions:   def(n.Transactions, "transactions"),
		Installments:   def(n.Installments, "installments"),
		Subscriptions:  def(n.Subscriptions, "subscriptions"),
		PaymentMethods: def(n.PaymentMethods, "paymentmethods"),
		Investments:    def(n.Investments, "investments"),
		MarketPrices:   def(n.MarketPrices, "marketprices"),
		Savings:        def(n.Savings, "savings"),
	}
}

func (n TableNames) all() []string {
	return []string{n.Transactions, n.Installments, n.Subscriptions, n.PaymentMethods, n.Investments, n.MarketPrices, n.Savings}
}

// DatabaseService handles interactions with Azure Table Storage.
type DatabaseService struct {
	tableAPI
	tables TableNames
}

// tableAPI is the row level access DatabaseService needs. azureTables
// implements it on the Azure SDK.
type tableAPI interface {
	createTable(ctx context.Context, table string) error
	query(ctx context.Context, table, filter string) ([]entity, error)
	get(ctx context.Context, table, pk, rk string) (entity, error)
	upsert(ctx context.Context, table string, e entity) error
	delete(ctx context.Context, table, pk, rk string) error
	// submitBatch runs one entity group transaction: all actions apply or
	// none do.
	submitBatch(ctx context.Context, table string, actions []aztables.TransactionAction) error
}

type azureTables struct {
	serviceClient *aztables.ServiceClient
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService(tableURL string, names TableNames) (*DatabaseService, error) {
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL is required")
	}
	names = names.withDefaults()

	var client *aztables.ServiceClient

	// Check if running locally with Azurite (http endpoint)
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for database service")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		slog.Info("using default Azure credentials for database service")
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{tableAPI: &azureTables{serviceClient: client}, tables: names}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully", "table_url", tableURL, "tables", names.all())
	return svc, nil
}

// CreateTables ensures all required tables exist in Azure Table Storage.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	for _, tableName := range s.tables.all() {
		if err := s.createTable(ctx, tableName); err != nil {
			return err
		}
	}
	return nil
}

func (a *azureTables) createTable(ctx context.Context, tableName string) error {
	_, err := a.serviceClient.CreateTable(ctx, tableName, nil)
	if err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return nil
}

func (a *azureTables) getClient(tableName string) *aztables.Client {
	return a.serviceClient.NewClient(tableName)
}

func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound
}

// query lists the rows of table matching filter. An empty filter lists the
// whole table.
func (a *azureTables) query(ctx context.Context, table, filter string) ([]entity, error) {
	opts := &aztables.ListEntitiesOptions{}
	if filter != "" {
		opts.Filter = &filter
	}
	pager := a.getClient(table).NewListEntitiesPager(opts)

	var rows []entity
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", table, err)
		}
		for _, raw := range resp.Entities {
			var e entity
			if err := json.Unmarshal(raw, &e); err != nil {
				slog.Warn("skipping unreadable entity", "table", table, "error", err)
				continue
			}
			rows = append(rows, e)
		}
	}
	return rows, nil
}

func (s *DatabaseService) partition(ctx context.Context, table, userID string) ([]entity, error) {
	return s.query(ctx, table, "PartitionKey eq "+odataQuote(userID))
}

func (a *azureTables) get(ctx context.Context, table, pk, rk string) (entity, error) {
	resp, err := a.getClient(table).GetEntity(ctx, pk, rk, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", table, rk, err)
	}
	var e entity
	if err := json.Unmarshal(resp.Value, &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", table, rk, err)
	}
	return e, nil
}

// upsert replaces the row, so properties cleared on the model are removed.
func (a *azureTables) upsert(ctx context.Context, table string, e entity) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	_, err = a.getClient(table).UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

func (a *azureTables) delete(ctx context.Context, table, pk, rk string) error {
	_, err := a.getClient(table).DeleteEntity(ctx, pk, rk, nil)
	if err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s/%s: %w", table, rk, err)
	}
	return nil
}

// submit runs actions as entity group transactions of at most 100 rows. All
// actions must share one partition.
func (s *DatabaseService) submit(ctx context.Context, table string, actions []aztables.TransactionAction) error {
	const batchSize = 100
	for i := 0; i < len(actions); i += batchSize {
		end := min(i+batchSize, len(actions))
		if err := s.submitBatch(ctx, table, actions[i:end]); err != nil {
			return fmt.Errorf("failed to submit transaction batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (a *azureTables) submitBatch(ctx context.Context, table string, actions []aztables.TransactionAction) error {
	_, err := a.getClient(table).SubmitTransaction(ctx, actions, nil)
	return err
}

func action(kind aztables.TransactionType, e entity) aztables.TransactionAction {
	data, _ := json.Marshal(e)
	return aztables.TransactionAction{ActionType: kind, Entity: data}
}

func deleteAction(pk, rk string) aztables.TransactionAction {
	return action(aztables.TransactionTypeDelete, entity{"PartitionKey": pk, "RowKey": rk})
}

// Transactions

func (s *DatabaseService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.partition(ctx, s.tables.Transactions, userID)
	if err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(rows))
	for _, e := range rows {
		txs = append(txs, transactionFrom(e))
	}
	return txs, nil
}

func (s *DatabaseService) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	e, err := s.get(ctx, s.tables.Transactions, userID, id)
	if err != nil {
		return nil, err
	}
	tx := transactionFrom(e)
	return &tx, nil
}

func (s *DatabaseService) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = newID()
	}
	return s.upsert(ctx, s.tables.Transactions, transactionEntity(*tx))
}

func (s *DatabaseService) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.delete(ctx, s.tables.Transactions, userID, id)
}

// Installment plans

func (s *DatabaseService) ListInstallmentPlans(ctx context.Context, userID string) ([]models.InstallmentPlan, error) {
	rows, err := s.partition(ctx, s.tables.Installments, userID)
	if err != nil {
		return nil, err
	}
	plans := make([]models.InstallmentPlan, 0, len(rows))
	for _, e := range rows {
		plans = append(plans, installmentFrom(e))
	}
	return plans, nil
}

func (s *DatabaseService) GetInstallmentPlan(ctx context.Context, userID, id string) (*models.InstallmentPlan, error) {
	e, err := s.get(ctx, s.tables.Installments, userID, id)
	if err != nil {
		return nil, err
	}
	plan := installmentFrom(e)
	return &plan, nil
}

// CreateInstallmentPlan stores the plan and then its child transactions. If
// the children cannot be written the plan and any children already written
// are deleted again.
func (s *DatabaseService) CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan, children []models.Transaction) error {
	if plan.ID == "" {
		plan.ID = newID()
	}
	if err := s.upsert(ctx, s.tables.Installments, installmentEntity(*plan)); err != nil {
		return err
	}

	actions := make([]aztables.TransactionAction, 0, len(children))
	for i := range children {
		if children[i].ID == "" {
			children[i].ID = newID()
		}
		children[i].UserID = plan.UserID
		children[i].InstallmentPlanID = plan.ID
		actions = append(actions, action(aztables.TransactionTypeInsertReplace, transactionEntity(children[i])))
	}

	if err := s.submit(ctx, s.tables.Transactions, actions); err != nil {
		slog.Error("failed to create installment transactions, rolling back plan", "plan_id", plan.ID, "error", err)
		if delErr := s.deletePlanChildren(ctx, plan.UserID, plan.ID); delErr != nil {
			slog.Error("failed to roll back installment transactions", "plan_id", plan.ID, "error", delErr)
		}
		if delErr := s.delete(ctx, s.tables.Installments, plan.UserID, plan.ID); delErr != nil {
			slog.Error("failed to roll back installment plan", "plan_id", plan.ID, "error", delErr)
		}
		return fmt.Errorf("failed to create installment transactions: %w", err)
	}
	return nil
}

func (s *DatabaseService) UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	return s.upsert(ctx, s.tables.Installments, installmentEntity(*plan))
}

// DeleteInstallmentPlan deletes the plan and its child transactions.
func (s *DatabaseService) DeleteInstallmentPlan(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, s.tables.Installments, userID, id); err != nil {
		return err
	}
	if err := s.deletePlanChildren(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete installment transactions: %w", err)
	}
	return s.delete(ctx, s.tables.Installments, userID, id)
}

func (s *DatabaseService) deletePlanChildren(ctx context.Context, userID, planID string) error {
	filter := fmt.Sprintf("PartitionKey eq %s and InstallmentPlanId eq %s", odataQuote(userID), odataQuote(planID))
	rows, err := s.query(ctx, s.tables.Transactions, filter)
	if err != nil {
		return err
	}
	actions := make([]aztables.TransactionAction, 0, len(rows))
	for _, e := range rows {
		actions = append(actions, deleteAction(userID, e.str("RowKey")))
	}
	return s.submit(ctx, s.tables.Transactions, actions)
}

// Recurring plans

func (s *DatabaseService) ListRecurringPlans(ctx context.Context, userID string) ([]models.RecurringPlan, error) {
	rows, err := s.partition(ctx, s.tables.Subscriptions, userID)
	if err != nil {
		return nil, err
	}
	plans := make([]models.RecurringPlan, 0, len(rows))
	for _, e := range rows {
		plans = append(plans, recurringFrom(e))
	}
	return plans, nil
}

func (s *DatabaseService) GetRecurringPlan(ctx context.Context, userID, id string) (*models.RecurringPlan, error) {
	e, err := s.get(ctx, s.tables.Subscriptions, userID, id)
	if err != nil {
		return nil, err
	}
	plan := recurringFrom(e)
	return &plan, nil
}

func (s *DatabaseService) SaveRecurringPlan(ctx context.Context, plan *models.RecurringPlan) error {
	if plan.ID == "" {
		plan.ID = newID()
	}
	return s.upsert(ctx, s.tables.Subscriptions, recurringEntity(*plan))
}

// DeleteRecurringPlan deletes the plan and clears it from the transactions
// it generated, which are kept.
func (s *DatabaseService) DeleteRecurringPlan(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, s.tables.Subscriptions, userID, id); err != nil {
		return err
	}
	if err := s.clearReference(ctx, s.tables.Transactions, userID, "RecurringPlanId", id); err != nil {
		return err
	}
	return s.delete(ctx, s.tables.Subscriptions, userID, id)
}

// Payment methods

func (s *DatabaseService) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	rows, err := s.partition(ctx, s.tables.PaymentMethods, userID)
	if err != nil {
		return nil, err
	}
	methods := make([]models.PaymentMethod, 0, len(rows))
	for _, e := range rows {
		methods = append(methods, paymentMethodFrom(e))
	}
	return methods, nil
}

func (s *DatabaseService) GetPaymentMethod(ctx context.Context, userID, id string) (*models.PaymentMethod, error) {
	e, err := s.get(ctx, s.tables.PaymentMethods, userID, id)
	if err != nil {
		return nil, err
	}
	m := paymentMethodFrom(e)
	return &m, nil
}

func (s *DatabaseService) SavePaymentMethod(ctx context.Context, m *models.PaymentMethod) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return s.upsert(ctx, s.tables.PaymentMethods, paymentMethodEntity(*m))
}

// DeletePaymentMethod clears the method from every transaction, installment
// plan and recurring plan referencing it, then deletes it.
func (s *DatabaseService) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, s.tables.PaymentMethods, userID, id); err != nil {
		return err
	}
	for _, table := range []string{s.tables.Transactions, s.tables.Installments, s.tables.Subscriptions} {
		if err := s.clearReference(ctx, table, userID, "PaymentMethodId", id); err != nil {
			return err
		}
	}
	return s.delete(ctx, s.tables.PaymentMethods, userID, id)
}

// clearReference blanks the property key on every row of the user in table
// pointing at id.
func (s *DatabaseService) clearReference(ctx context.Context, table, userID, key, id string) error {
	filter := fmt.Sprintf("PartitionKey eq %s and %s eq %s", odataQuote(userID), key, odataQuote(id))
	rows, err := s.query(ctx, table, filter)
	if err != nil {
		return err
	}
	actions := make([]aztables.TransactionAction, 0, len(rows))
	for _, e := range rows {
		e[key] = ""
		delete(e, "odata.etag")
		delete(e, "Timestamp")
		actions = append(actions, action(aztables.TransactionTypeInsertReplace, e))
	}
	if err := s.submit(ctx, table, actions); err != nil {
		return fmt.Errorf("failed to clear %s in %s: %w", key, table, err)
	}
	return nil
}

// Investments and prices

func (s *DatabaseService) ListInvestments(ctx context.Context, userID string) ([]models.Investment, error) {
	rows, err := s.partition(ctx, s.tables.Investments, userID)
	if err != nil {
		return nil, err
	}
	return investmentsFrom(rows), nil
}

// ListAllInvestments lists the investments of every user.
func (s *DatabaseService) ListAllInvestments(ctx context.Context) ([]models.Investment, error) {
	rows, err := s.query(ctx, s.tables.Investments, "")
	if err != nil {
		return nil, err
	}
	return investmentsFrom(rows), nil
}

func investmentsFrom(rows []entity) []models.Investment {
	invs := make([]models.Investment, 0, len(rows))
	for _, e := range rows {
		invs = append(invs, investmentFrom(e))
	}
	return invs
}

func (s *DatabaseService) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	if inv.ID == "" {
		inv.ID = newID()
	}
	return s.upsert(ctx, s.tables.Investments, investmentEntity(*inv))
}

func (s *DatabaseService) DeleteInvestment(ctx context.Context, userID, id string) error {
	return s.delete(ctx, s.tables.Investments, userID, id)
}

func (s *DatabaseService) ListMarketPrices(ctx context.Context) ([]models.MarketPrice, error) {
	rows, err := s.partition(ctx, s.tables.MarketPrices, marketPricePartition)
	if err != nil {
		return nil, err
	}
	prices := make([]models.MarketPrice, 0, len(rows))
	for _, e := range rows {
		prices = append(prices, marketPriceFrom(e))
	}
	return prices, nil
}

// UpsertMarketPrice stores the latest price of a ticker, replacing the
// previous one.
func (s *DatabaseService) UpsertMarketPrice(ctx context.Context, price models.MarketPrice) error {
	return s.upsert(ctx, s.tables.MarketPrices, marketPriceEntity(price))
}

// Savings

func (s *DatabaseService) ListSavings(ctx context.Context, userID string) ([]models.Saving, error) {
	rows, err := s.partition(ctx, s.tables.Savings, userID)
	if err != nil {
		return nil, err
	}
	savings := make([]models.Saving, 0, len(rows))
	for _, e := range rows {
		savings = append(savings, savingFrom(e))
	}
	return savings, nil
}

func (s *DatabaseService) SaveSaving(ctx context.Context, saving *models.Saving) error {
	if saving.ID == "" {
		saving.ID = newID()
	}
	return s.upsert(ctx, s.tables.Savings, savingEntity(*saving))
}

func (s *DatabaseService) DeleteSaving(ctx context.Context, userID, id string) error {
	return s.delete(ctx, s.tables.Savings, userID, id)
}
