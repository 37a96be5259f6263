package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/spend-sentinel/internal/models"
)

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Database DatabaseClient
	Blob     BlobClient
	Queue    QueueClient
	// Email is nil when notifications are not configured.
	Email EmailClient
	// UserEmail receives upload problems and the nightly duplicate report.
	UserEmail string
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

// parseMonth validates a YYYY-MM query value. Empty means every month.
func parseMonth(month string) (string, error) {
	if month == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return "", fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	return month, nil
}

// notify reports whether email notifications can be sent.
func (d *Dependencies) notify() bool {
	return d.Email != nil && d.UserEmail != ""
}

// ownership loads the account ownership map.
func (d *Dependencies) ownership(ctx context.Context) (models.Ownership, error) {
	accounts, err := d.Database.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return models.OwnershipFromAccounts(accounts), nil
}
