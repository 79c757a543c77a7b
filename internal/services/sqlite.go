package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocjay1/chanchito/internal/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS payment_methods (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	default_closing_day INTEGER,
	default_payment_day INTEGER,
	is_personal INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS recurring_plans (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	amount TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	category_id TEXT,
	payment_method_id TEXT REFERENCES payment_methods(id) ON DELETE SET NULL
);
CREATE TABLE IF NOT EXISTS installment_plans (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	total_amount TEXT NOT NULL,
	installments_count INTEGER NOT NULL,
	purchase_date TEXT NOT NULL,
	category_id TEXT,
	payment_method_id TEXT REFERENCES payment_methods(id) ON DELETE SET NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	amount TEXT NOT NULL,
	type TEXT NOT NULL,
	date TEXT NOT NULL,
	category_id TEXT,
	payment_method_id TEXT REFERENCES payment_methods(id) ON DELETE SET NULL,
	installment_plan_id TEXT REFERENCES installment_plans(id) ON DELETE CASCADE,
	recurring_plan_id TEXT REFERENCES recurring_plans(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_plan ON transactions(installment_plan_id);
CREATE TABLE IF NOT EXISTS investments (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	quantity TEXT NOT NULL,
	avg_buy_price TEXT,
	currency TEXT NOT NULL,
	source_url TEXT
);
CREATE TABLE IF NOT EXISTS market_prices (
	ticker TEXT NOT NULL,
	currency TEXT NOT NULL,
	last_price TEXT NOT NULL,
	last_update TEXT NOT NULL,
	PRIMARY KEY (ticker, currency)
);
CREATE TABLE IF NOT EXISTS savings (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	description TEXT,
	amount TEXT NOT NULL,
	currency TEXT NOT NULL,
	date TEXT NOT NULL
);
`

// SQLiteService is a single-file store for local use. It enforces the same
// reference rules as the table store with foreign keys: deleting a payment
// method clears it from its rows and deleting an installment plan deletes its
// transactions.
type SQLiteService struct {
	db *sql.DB
}

// NewSQLiteService opens (creating if needed) the database at path and
// applies the schema.
func NewSQLiteService(path string) (*SQLiteService, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH is required")
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Info("sqlite service initialized successfully", "path", path)
	return &SQLiteService{db: db}, nil
}

// Close closes the database.
func (s *SQLiteService) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// nullable maps "" to NULL so optional references satisfy the foreign keys.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intFrom(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

// Transactions

const transactionColumns = `id, user_id, description, amount, type, date, category_id, payment_method_id, installment_plan_id, recurring_plan_id`

func scanTransaction(row scanner) (models.Transaction, error) {
	var t models.Transaction
	var category, method, plan, recurring sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Type, &t.Date, &category, &method, &plan, &recurring)
	t.CategoryID, t.PaymentMethodID = category.String, method.String
	t.InstallmentPlanID, t.RecurringPlanID = plan.String, recurring.String
	return t, err
}

func (s *SQLiteService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *SQLiteService) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *SQLiteService) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = newID()
	}
	return insertTransaction(ctx, s.db, *tx)
}

func insertTransaction(ctx context.Context, db execer, t models.Transaction) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount = excluded.amount,
			type = excluded.type,
			date = excluded.date,
			category_id = excluded.category_id,
			payment_method_id = excluded.payment_method_id,
			installment_plan_id = excluded.installment_plan_id,
			recurring_plan_id = excluded.recurring_plan_id`,
		t.ID, t.UserID, t.Description, t.Amount, string(t.Type), t.Date,
		nullable(t.CategoryID), nullable(t.PaymentMethodID), nullable(t.InstallmentPlanID), nullable(t.RecurringPlanID))
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLiteService) DeleteTransaction(ctx context.Context, userID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id))
}

// Installment plans

const installmentColumns = `id, user_id, description, total_amount, installments_count, purchase_date, category_id, payment_method_id`

func scanInstallment(row scanner) (models.InstallmentPlan, error) {
	var p models.InstallmentPlan
	var category, method sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Description, &p.TotalAmount, &p.InstallmentsCount, &p.PurchaseDate, &category, &method)
	p.CategoryID, p.PaymentMethodID = category.String, method.String
	return p, err
}

func (s *SQLiteService) ListInstallmentPlans(ctx context.Context, userID string) ([]models.InstallmentPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+installmentColumns+` FROM installment_plans WHERE user_id = ? ORDER BY purchase_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installment plans: %w", err)
	}
	defer rows.Close()

	plans := []models.InstallmentPlan{}
	for rows.Next() {
		p, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLiteService) GetInstallmentPlan(ctx context.Context, userID, id string) (*models.InstallmentPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+installmentColumns+` FROM installment_plans WHERE user_id = ? AND id = ?`, userID, id)
	p, err := scanInstallment(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func upsertInstallment(ctx context.Context, db execer, p models.InstallmentPlan) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO installment_plans (`+installmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			total_amount = excluded.total_amount,
			installments_count = excluded.installments_count,
			purchase_date = excluded.purchase_date,
			category_id = excluded.category_id,
			payment_method_id = excluded.payment_method_id`,
		p.ID, p.UserID, p.Description, p.TotalAmount, p.InstallmentsCount, p.PurchaseDate,
		nullable(p.CategoryID), nullable(p.PaymentMethodID))
	if err != nil {
		return fmt.Errorf("failed to save installment plan %s: %w", p.ID, err)
	}
	return nil
}

// CreateInstallmentPlan stores the plan and its child transactions in one
// database transaction.
func (s *SQLiteService) CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan, children []models.Transaction) (err error) {
	if plan.ID == "" {
		plan.ID = newID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("failed to roll back installment plan", "plan_id", plan.ID, "error", rbErr)
			}
		}
	}()

	if err = upsertInstallment(ctx, tx, *plan); err != nil {
		return err
	}
	for i := range children {
		if children[i].ID == "" {
			children[i].ID = newID()
		}
		children[i].UserID = plan.UserID
		children[i].InstallmentPlanID = plan.ID
		if _, err = tx.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			children[i].ID, children[i].UserID, children[i].Description, children[i].Amount, string(children[i].Type), children[i].Date,
			nullable(children[i].CategoryID), nullable(children[i].PaymentMethodID), plan.ID, nullable(children[i].RecurringPlanID)); err != nil {
			return fmt.Errorf("failed to create installment transaction %d: %w", i+1, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit installment plan: %w", err)
	}
	return nil
}

func (s *SQLiteService) UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	return upsertInstallment(ctx, s.db, *plan)
}

// DeleteInstallmentPlan deletes the plan. Its transactions go with it.
func (s *SQLiteService) DeleteInstallmentPlan(ctx context.Context, userID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM installment_plans WHERE user_id = ? AND id = ?`, userID, id))
}

// Recurring plans

const recurringColumns = `id, user_id, description, amount, is_active, category_id, payment_method_id`

func scanRecurring(row scanner) (models.RecurringPlan, error) {
	var p models.RecurringPlan
	var category, method sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Description, &p.Amount, &p.IsActive, &category, &method)
	p.CategoryID, p.PaymentMethodID = category.String, method.String
	return p, err
}

func (s *SQLiteService) ListRecurringPlans(ctx context.Context, userID string) ([]models.RecurringPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recurringColumns+` FROM recurring_plans WHERE user_id = ? ORDER BY description, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring plans: %w", err)
	}
	defer rows.Close()

	plans := []models.RecurringPlan{}
	for rows.Next() {
		p, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLiteService) GetRecurringPlan(ctx context.Context, userID, id string) (*models.RecurringPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_plans WHERE user_id = ? AND id = ?`, userID, id)
	p, err := scanRecurring(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *SQLiteService) SaveRecurringPlan(ctx context.Context, plan *models.RecurringPlan) error {
	if plan.ID == "" {
		plan.ID = newID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_plans (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount = excluded.amount,
			is_active = excluded.is_active,
			category_id = excluded.category_id,
			payment_method_id = excluded.payment_method_id`,
		plan.ID, plan.UserID, plan.Description, plan.Amount, plan.IsActive,
		nullable(plan.CategoryID), nullable(plan.PaymentMethodID))
	if err != nil {
		return fmt.Errorf("failed to save recurring plan %s: %w", plan.ID, err)
	}
	return nil
}

func (s *SQLiteService) DeleteRecurringPlan(ctx context.Context, userID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM recurring_plans WHERE user_id = ? AND id = ?`, userID, id))
}

// Payment methods

const paymentMethodColumns = `id, user_id, name, type, default_closing_day, default_payment_day, is_personal`

func scanPaymentMethod(row scanner) (models.PaymentMethod, error) {
	var m models.PaymentMethod
	var closing, payment sql.NullInt64
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Type, &closing, &payment, &m.IsPersonal)
	m.DefaultClosingDay, m.DefaultPaymentDay = intFrom(closing), intFrom(payment)
	return m, err
}

func (s *SQLiteService) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	methods := []models.PaymentMethod{}
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (s *SQLiteService) GetPaymentMethod(ctx context.Context, userID, id string) (*models.PaymentMethod, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE user_id = ? AND id = ?`, userID, id)
	m, err := scanPaymentMethod(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *SQLiteService) SavePaymentMethod(ctx context.Context, m *models.PaymentMethod) error {
	if m.ID == "" {
		m.ID = newID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_methods (`+paymentMethodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			default_closing_day = excluded.default_closing_day,
			default_payment_day = excluded.default_payment_day,
			is_personal = excluded.is_personal`,
		m.ID, m.UserID, m.Name, string(m.Type), nullableInt(m.DefaultClosingDay), nullableInt(m.DefaultPaymentDay), m.IsPersonal)
	if err != nil {
		return fmt.Errorf("failed to save payment method %s: %w", m.ID, err)
	}
	return nil
}

func (s *SQLiteService) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE user_id = ? AND id = ?`, userID, id))
}

// Investments and prices

const investmentColumns = `id, user_id, ticker, name, type, quantity, avg_buy_price, currency, source_url`

func scanInvestment(row scanner) (models.Investment, error) {
	var inv models.Investment
	var sourceURL sql.NullString
	err := row.Scan(&inv.ID, &inv.UserID, &inv.Ticker, &inv.Name, &inv.Type, &inv.Quantity, &inv.AvgBuyPrice, &inv.Currency, &sourceURL)
	inv.SourceURL = sourceURL.String
	return inv, err
}

func (s *SQLiteService) listInvestments(ctx context.Context, query string, args ...any) ([]models.Investment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	invs := []models.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (s *SQLiteService) ListInvestments(ctx context.Context, userID string) ([]models.Investment, error) {
	return s.listInvestments(ctx, `SELECT `+investmentColumns+` FROM investments WHERE user_id = ? ORDER BY ticker, id`, userID)
}

func (s *SQLiteService) ListAllInvestments(ctx context.Context) ([]models.Investment, error) {
	return s.listInvestments(ctx, `SELECT `+investmentColumns+` FROM investments ORDER BY ticker, id`)
}

func (s *SQLiteService) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	if inv.ID == "" {
		inv.ID = newID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investments (`+investmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ticker = excluded.ticker,
			name = excluded.name,
			type = excluded.type,
			quantity = excluded.quantity,
			avg_buy_price = excluded.avg_buy_price,
			currency = excluded.currency,
			source_url = excluded.source_url`,
		inv.ID, inv.UserID, inv.Ticker, inv.Name, string(inv.Type), inv.Quantity, inv.AvgBuyPrice, string(inv.Currency), nullable(inv.SourceURL))
	if err != nil {
		return fmt.Errorf("failed to save investment %s: %w", inv.ID, err)
	}
	return nil
}

func (s *SQLiteService) DeleteInvestment(ctx context.Context, userID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM investments WHERE user_id = ? AND id = ?`, userID, id))
}

func (s *SQLiteService) ListMarketPrices(ctx context.Context) ([]models.MarketPrice, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, currency, last_price, last_update FROM market_prices ORDER BY ticker, currency`)
	if err != nil {
		return nil, fmt.Errorf("failed to list market prices: %w", err)
	}
	defer rows.Close()

	prices := []models.MarketPrice{}
	for rows.Next() {
		var p models.MarketPrice
		var updated string
		if err := rows.Scan(&p.Ticker, &p.Currency, &p.LastPrice, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan market price: %w", err)
		}
		p.LastUpdate, _ = time.Parse(time.RFC3339Nano, updated)
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// UpsertMarketPrice stores the latest price of a ticker in its currency,
// replacing the previous one.
func (s *SQLiteService) UpsertMarketPrice(ctx context.Context, p models.MarketPrice) error {
	if p.Currency == "" {
		p.Currency = models.CurrencyARS
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_prices (ticker, currency, last_price, last_update) VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker, currency) DO UPDATE SET
			last_price = excluded.last_price,
			last_update = excluded.last_update`,
		p.Ticker, string(p.Currency), p.LastPrice, p.LastUpdate.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert market price %s: %w", p.Ticker, err)
	}
	return nil
}

// Savings

func (s *SQLiteService) ListSavings(ctx context.Context, userID string) ([]models.Saving, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, description, amount, currency, date FROM savings WHERE user_id = ? ORDER BY date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	defer rows.Close()

	savings := []models.Saving{}
	for rows.Next() {
		var sv models.Saving
		var description sql.NullString
		if err := rows.Scan(&sv.ID, &sv.UserID, &description, &sv.Amount, &sv.Currency, &sv.Date); err != nil {
			return nil, fmt.Errorf("failed to scan saving: %w", err)
		}
		sv.Description = description.String
		savings = append(savings, sv)
	}
	return savings, rows.Err()
}

func (s *SQLiteService) SaveSaving(ctx context.Context, sv *models.Saving) error {
	if sv.ID == "" {
		sv.ID = newID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings (id, user_id, description, amount, currency, date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount = excluded.amount,
			currency = excluded.currency,
			date = excluded.date`,
		sv.ID, sv.UserID, nullable(sv.Description), sv.Amount, string(sv.Currency), sv.Date)
	if err != nil {
		return fmt.Errorf("failed to save saving %s: %w", sv.ID, err)
	}
	return nil
}

func (s *SQLiteService) DeleteSaving(ctx context.Context, userID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM savings WHERE user_id = ? AND id = ?`, userID, id))
}
