package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/spend-sentinel/internal/csvparse"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue handles the queue trigger for processing uploaded CSVs.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var invokeReq invokeRequest
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}

	queueItemStr, ok := queueItemVal.(string)
	if !ok {
		WriteError(w, http.StatusBadRequest, "queueItem is not a string")
		return
	}

	var msg QueueMessage
	if err := json.Unmarshal([]byte(queueItemStr), &msg); err != nil {
		slog.Error("failed to unmarshal queueItem", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid queueItem JSON: %v", err))
		return
	}
	if msg.BlobName == "" {
		slog.Warn("queue message missing blob_name", "queue_item", queueItemStr)
		WriteError(w, http.StatusBadRequest, "Missing blob_name")
		return
	}

	slog.Info("processing queue item", "blob_name", msg.BlobName)

	csvContent, err := d.Blob.DownloadText(ctx, msg.BlobName)
	if err != nil {
		slog.Error("failed to download CSV from blob", "blob_name", msg.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download CSV: %v", err))
		return
	}

	transactions, rowErrors := csvparse.ParseCSV(csvContent)
	slog.Info("parsed CSV content", "blob_name", msg.BlobName, "transactions_count", len(transactions), "errors_count", len(rowErrors))

	if len(rowErrors) > 0 && d.notify() {
		if err := d.Email.SendErrorEmail(ctx, []string{d.UserEmail}, rowErrors); err != nil {
			slog.Error("failed to send upload error email", "blob_name", msg.BlobName, "error", err)
		}
	}

	if len(transactions) == 0 {
		slog.Warn("no valid transactions in upload", "blob_name", msg.BlobName, "errors_count", len(rowErrors))
		// Consume the message so it doesn't retry forever.
		w.WriteHeader(http.StatusOK)
		return
	}

	newTransactions, err := d.Database.SaveTransactions(ctx, transactions)
	if err != nil {
		slog.Error("failed to save transactions", "total_count", len(transactions), "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save transactions: %v", err))
		return
	}

	slog.Info("queue processing complete",
		"blob_name", msg.BlobName,
		"new_transactions_count", len(newTransactions),
		"duplicate_rows_count", len(transactions)-len(newTransactions),
	)
	w.WriteHeader(http.StatusOK)
}
