package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
)

const maxUploadBytes = 10 << 20

// HandleUpload stores a holdings CSV and enqueues its import.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	if d.Blob == nil || d.Queue == nil {
		WriteError(w, http.StatusServiceUnavailable, "Uploads not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", maxUploadBytes>>20)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("%s/%s-%s", userID, d.now().UTC().Format("20060102-150405"), filename)

	ctx := r.Context()
	if err := d.Blob.UploadText(ctx, d.uploadContainer(), blobName, string(content)); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	job := Job{Kind: JobImportHoldings, UserID: userID, BlobName: blobName, FileName: filename}
	if err := d.Queue.EnqueueMessage(ctx, d.jobQueue(), job); err != nil {
		slog.Error("failed to enqueue import", "queue", d.jobQueue(), "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue import")
		return
	}
	slog.Info("queued holdings import", "blob_name", blobName, "size_bytes", len(content))

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":    "queued",
		"blob_name": blobName,
	})
}
