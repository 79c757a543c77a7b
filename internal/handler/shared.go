package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/pricing"
	"github.com/rocjay1/chanchito/internal/services"
)

// principalHeader carries the authenticated user id set by the hosting
// platform.
const principalHeader = "X-MS-CLIENT-PRINCIPAL-ID"

// Settings are the handler options read from configuration.
type Settings struct {
	// DefaultUserID is used when a request has no principal header and by
	// the background jobs.
	DefaultUserID     string
	UserEmail         string
	Location          *time.Location
	ReminderDaysAhead int
	PriceBatchSize    int
	UploadContainer   string
	JobQueue          string
}

// Dependencies holds the services required by the handlers. Blob, Queue,
// Email, Prices and FX are optional; features needing a missing one are
// skipped or answer 503.
type Dependencies struct {
	Store    Store
	Blob     BlobClient
	Queue    QueueClient
	Email    EmailClient
	Prices   pricing.Resolver
	FX       FXClient
	Settings Settings
	Now      func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// today is the current calendar date in the configured location.
func (d *Dependencies) today() calendar.Date {
	loc := d.Settings.Location
	if loc == nil {
		loc = time.UTC
	}
	return calendar.FromTime(d.now().In(loc))
}

func (d *Dependencies) uploadContainer() string {
	if d.Settings.UploadContainer != "" {
		return d.Settings.UploadContainer
	}
	return "uploads"
}

func (d *Dependencies) jobQueue() string {
	if d.Settings.JobQueue != "" {
		return d.Settings.JobQueue
	}
	return "process-queue"
}

// userID returns the caller, or "" after writing a 401.
func (d *Dependencies) userID(w http.ResponseWriter, r *http.Request) string {
	if id := r.Header.Get(principalHeader); id != "" {
		return id
	}
	if d.Settings.DefaultUserID != "" {
		return d.Settings.DefaultUserID
	}
	WriteError(w, http.StatusUnauthorized, "Missing user")
	return ""
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// writeStoreError answers 404 for missing rows and 500 otherwise.
func writeStoreError(w http.ResponseWriter, err error, summary string) {
	if errors.Is(err, services.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	slog.Error(summary, "error", err)
	WriteError(w, http.StatusInternalServerError, summary)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Warn("invalid request body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// requireID reads the id query parameter, or writes a 400.
func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing id")
		return "", false
	}
	return id, true
}

func writeDeleted(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
