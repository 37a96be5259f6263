package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rocjay1/spend-sentinel/internal/models"
)

// HandleAccounts handles GET, POST, and DELETE requests for account ownership.
func (d *Dependencies) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := d.Database.GetAccounts(r.Context())
		if err != nil {
			slog.Error("failed to get accounts", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to get accounts: "+err.Error())
			return
		}
		slog.Info("retrieved accounts", "count", len(accounts))
		WriteJSON(w, http.StatusOK, accounts)

	case http.MethodPost:
		var account models.AccountOwnership
		if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
			slog.Warn("invalid account request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		account.Key = account.ResolvedKey()
		if account.Key == "" {
			WriteError(w, http.StatusBadRequest, "Missing account name or key")
			return
		}
		account.Mode = models.ParseOwnershipMode(string(account.Mode))
		if account.ID == "" {
			account.ID = uuid.New().String()
		}

		if err := d.Database.SaveAccount(r.Context(), account); err != nil {
			slog.Error("failed to save account", "key", account.Key, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to save account: "+err.Error())
			return
		}

		slog.Info("saved account", "id", account.ID, "key", account.Key, "mode", account.Mode)
		WriteJSON(w, http.StatusOK, account)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing account ID")
			return
		}

		if err := d.Database.DeleteAccount(r.Context(), id); err != nil {
			slog.Error("failed to delete account", "id", id, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to delete account: "+err.Error())
			return
		}

		slog.Info("deleted account", "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
