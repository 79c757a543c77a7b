package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
)

const defaultReminderDaysAhead = 3

type nightlyResult struct {
	RemindersSent int                    `json:"reminders_sent"`
	Prices        *pricing.RefreshReport `json:"prices,omitempty"`
}

// HandleNightlyTrigger emails a reminder for every credit card statement of
// the default user due in ReminderDaysAhead days, then refreshes every
// stored holding's price.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("starting nightly trigger processing")

	var result nightlyResult
	if d.Settings.UserEmail == "" || d.Settings.DefaultUserID == "" || d.Email == nil {
		slog.Warn("reminders not configured; skipping email notifications")
	} else {
		sent, err := d.sendReminders(ctx, d.Settings.DefaultUserID, d.Settings.UserEmail)
		if err != nil {
			slog.Error("failed to prepare reminders", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to prepare reminders")
			return
		}
		result.RemindersSent = sent
	}

	if d.Prices != nil {
		report, err := d.refreshPrices(ctx, "")
		if err != nil {
			slog.Error("scheduled price refresh failed", "error", err)
		} else {
			result.Prices = &report
		}
	}

	slog.Info("nightly trigger processing complete", "reminders_sent", result.RemindersSent)
	WriteJSON(w, http.StatusOK, result)
}

// statementDueOn returns the cycle of method whose due date is target, if
// any. Statements are always due the month after they close.
func statementDueOn(method models.PaymentMethod, target calendar.Date) (finance.Cycle, bool) {
	if !method.HasCycle() {
		return finance.Cycle{}, false
	}
	closing := calendar.Clamped(target.Year(), target.Month()-1, *method.DefaultClosingDay)
	c, _ := finance.MethodCycle(&method, closing)
	return c, c.Due.Equal(target)
}

func (d *Dependencies) sendReminders(ctx context.Context, userID, email string) (int, error) {
	days := d.Settings.ReminderDaysAhead
	if days <= 0 {
		days = defaultReminderDaysAhead
	}
	target := d.today().AddDays(days)

	methods, err := d.Store.ListPaymentMethods(ctx, userID)
	if err != nil {
		return 0, err
	}

	var due []models.PaymentMethod
	cycles := make(map[string]finance.Cycle)
	for _, m := range methods {
		if c, ok := statementDueOn(m, target); ok {
			due = append(due, m)
			cycles[m.ID] = c
		}
	}
	slog.Info("checking statements for upcoming due date", "target_date", target.String(), "due_count", len(due))
	if len(due) == 0 {
		return 0, nil
	}

	txs, err := d.Store.ListTransactions(ctx, userID)
	if err != nil {
		return 0, err
	}
	plans, err := d.Store.ListRecurringPlans(ctx, userID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range due {
		c := cycles[m.ID]
		// as of the closing day the open statement is exactly the one due
		status := finance.PaymentMethodStatusFor(m, txs, plans, c.Closing)
		if !status.ProjectedTotal.IsPositive() {
			slog.Info("statement due with nothing to pay", "payment_method", m.Name)
			continue
		}

		reminder := services.Reminder{
			MethodName:         m.Name,
			ClosingDate:        c.Closing,
			DueDate:            c.Due,
			CurrentConsumption: status.CurrentConsumption,
			FixedCosts:         status.FixedCosts,
			ProjectedTotal:     status.ProjectedTotal,
		}
		if err := d.Email.SendReminderEmail(ctx, []string{email}, reminder); err != nil {
			slog.Error("failed to send payment reminder email", "payment_method", m.Name, "error", err)
			continue
		}
		slog.Info("payment reminder email sent", "payment_method", m.Name, "due_date", c.Due.String())
		sent++
	}
	return sent, nil
}
