package handler

import (
	"log/slog"
	"net/http"
)

// Background jobs carried on the job queue.
const (
	JobImportHoldings = "import-holdings"
	JobRefreshPrices  = "refresh-prices"
)

// Job is a queue message. UserID is empty for jobs that span every user.
type Job struct {
	Kind     string `json:"job"`
	UserID   string `json:"user_id,omitempty"`
	BlobName string `json:"blob_name,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// HandlePriceRefresh refreshes the prices of the caller's holdings. With
// ?async=true it enqueues a refresh job and answers 202.
func (d *Dependencies) HandlePriceRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	if r.URL.Query().Get("async") == "true" {
		if d.Queue == nil {
			WriteError(w, http.StatusServiceUnavailable, "Job queue not configured")
			return
		}
		job := Job{Kind: JobRefreshPrices, UserID: userID}
		if err := d.Queue.EnqueueMessage(ctx, d.jobQueue(), job); err != nil {
			slog.Error("failed to enqueue price refresh", "queue", d.jobQueue(), "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to enqueue price refresh")
			return
		}
		WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	if d.Prices == nil {
		WriteError(w, http.StatusServiceUnavailable, "Price sources not configured")
		return
	}
	invs, err := d.Store.ListInvestments(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "Failed to get investments")
		return
	}
	WriteJSON(w, http.StatusOK, d.refresher().Refresh(ctx, invs))
}

// HandleHealth answers liveness probes.
func (d *Dependencies) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
