package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/chanchito/internal/csvparse"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/rocjay1/chanchito/internal/pricing"
)

// invokeRequest is the payload sent by the Azure Functions custom handler host.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue runs one job from the job queue. Jobs that can never succeed
// are acknowledged with 200 so the host does not retry them.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var invokeReq invokeRequest
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	item, ok := invokeReq.Data["queueItem"]
	if !ok {
		item, ok = invokeReq.Data["queueitem"]
	}
	if !ok {
		WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
		return
	}

	var job Job
	switch v := item.(type) {
	case string:
		err = json.Unmarshal([]byte(v), &job)
	case map[string]any:
		// the host hands over already-decoded JSON for object payloads
		raw, _ := json.Marshal(v)
		err = json.Unmarshal(raw, &job)
	default:
		err = fmt.Errorf("unexpected queueItem type %T", item)
	}
	if err != nil {
		slog.Error("failed to unmarshal queueItem", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid queueItem: %v", err))
		return
	}

	ctx := r.Context()
	slog.Info("processing job", "job", job.Kind, "user_id", job.UserID)

	switch job.Kind {
	case JobImportHoldings:
		if err := d.importHoldings(ctx, job); err != nil {
			slog.Error("holdings import failed", "blob_name", job.BlobName, "error", err)
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case JobRefreshPrices:
		report, err := d.refreshPrices(ctx, job.UserID)
		if err != nil {
			slog.Error("price refresh job failed", "error", err)
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, report)
		return
	default:
		slog.Warn("dropping unknown job", "job", job.Kind)
	}
	w.WriteHeader(http.StatusOK)
}

// refreshPrices refreshes the holdings of userID, or of every user when
// userID is empty.
func (d *Dependencies) refreshPrices(ctx context.Context, userID string) (pricing.RefreshReport, error) {
	if d.Prices == nil {
		return pricing.RefreshReport{}, fmt.Errorf("price sources not configured")
	}
	var invs []models.Investment
	var err error
	if userID == "" {
		invs, err = d.Store.ListAllInvestments(ctx)
	} else {
		invs, err = d.Store.ListInvestments(ctx, userID)
	}
	if err != nil {
		return pricing.RefreshReport{}, fmt.Errorf("failed to list investments: %w", err)
	}
	return d.refresher().Refresh(ctx, invs), nil
}

// importHoldings upserts the positions of an uploaded CSV. A row whose
// ticker the user already holds replaces that holding; others are created.
func (d *Dependencies) importHoldings(ctx context.Context, job Job) error {
	if job.BlobName == "" || job.UserID == "" {
		slog.Warn("import job missing blob or user", "blob_name", job.BlobName, "user_id", job.UserID)
		return nil
	}
	if d.Blob == nil {
		return fmt.Errorf("blob storage not configured")
	}

	content, err := d.Blob.DownloadText(ctx, d.uploadContainer(), job.BlobName)
	if err != nil {
		return fmt.Errorf("failed to download upload: %w", err)
	}

	holdings, rowErrors := csvparse.ParseHoldings(content)
	slog.Info("parsed holdings", "blob_name", job.BlobName, "holdings_count", len(holdings), "errors_count", len(rowErrors))

	existing, err := d.Store.ListInvestments(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to list investments: %w", err)
	}
	byTicker := make(map[string]models.Investment, len(existing))
	for _, inv := range existing {
		byTicker[inv.Ticker] = inv
	}

	var saved []models.Investment
	for _, h := range holdings {
		h.UserID = job.UserID
		if prev, ok := byTicker[h.Ticker]; ok {
			h.ID = prev.ID
			if h.SourceURL == "" {
				h.SourceURL = prev.SourceURL
			}
		}
		if h.SourceURL == "" {
			h.SourceURL = pricing.SourceURL(h.Ticker, h.Type, h.Currency)
		}
		if err := d.Store.SaveInvestment(ctx, &h); err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("%s: %v", h.Ticker, err))
			continue
		}
		saved = append(saved, h)
	}
	slog.Info("imported holdings", "blob_name", job.BlobName, "saved", len(saved))

	if len(rowErrors) > 0 && d.Email != nil && d.Settings.UserEmail != "" {
		if err := d.Email.SendImportErrorEmail(ctx, []string{d.Settings.UserEmail}, job.FileName, rowErrors); err != nil {
			slog.Error("failed to send import error email", "error", err)
		}
	}

	if d.Prices != nil && len(saved) > 0 {
		d.refresher().Refresh(ctx, saved)
	}

	if err := d.Blob.DeleteBlob(ctx, d.uploadContainer(), job.BlobName); err != nil {
		slog.Warn("failed to delete processed upload", "blob_name", job.BlobName, "error", err)
	}
	return nil
}
