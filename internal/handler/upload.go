package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
)

// maxUploadBytes caps the multipart form size.
const maxUploadBytes = 10 << 20

// QueueMessage is the hand-off from an upload to ProcessQueue.
type QueueMessage struct {
	BlobName string `json:"blob_name"`
	Filename string `json:"filename"`
}

// HandleUpload stores an uploaded CSV statement and queues it for processing.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		slog.Warn("upload attempt with invalid method", "method", r.Method, "path", r.URL.Path)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", maxUploadBytes>>20)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	slog.Info("received file upload", "filename", header.Filename, "size_bytes", len(data))

	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("uploads/%s-%s", uuid.New().String(), filename)

	if err := d.Blob.UploadText(r.Context(), blobName, string(data)); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}

	msg := QueueMessage{BlobName: blobName, Filename: filename}
	if err := d.Queue.EnqueueMessage(r.Context(), msg); err != nil {
		slog.Error("failed to enqueue message", "filename", filename, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	slog.Info("queued upload for processing", "filename", filename, "blob_name", blobName)

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"blobName": blobName,
	})
}
