package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/rocjay1/spend-sentinel/internal/categories"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/services"
)

// recategorizeRequest moves one stored transaction to another category.
type recategorizeRequest struct {
	ID       string          `json:"id"`
	Month    string          `json:"month"`
	Category models.Category `json:"category"`
}

// HandleTransactions lists stored transactions (GET) and recategorizes one (PATCH).
func (d *Dependencies) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		month, err := parseMonth(r.URL.Query().Get("month"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		transactions, err := d.Database.GetTransactions(r.Context(), month)
		if err != nil {
			slog.Error("failed to get transactions", "month", month, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to get transactions: "+err.Error())
			return
		}
		sort.SliceStable(transactions, func(i, j int) bool {
			if transactions[i].Date != transactions[j].Date {
				return transactions[i].Date.Before(transactions[j].Date)
			}
			return transactions[i].ID < transactions[j].ID
		})

		slog.Info("retrieved transactions", "month", month, "count", len(transactions))
		WriteJSON(w, http.StatusOK, transactions)

	case http.MethodPatch:
		var req recategorizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("invalid recategorize request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.ID == "" || req.Month == "" {
			WriteError(w, http.StatusBadRequest, "Missing transaction id or month")
			return
		}
		if _, err := parseMonth(req.Month); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, ok := categories.Lookup(req.Category); !ok {
			WriteError(w, http.StatusBadRequest, "Unknown category: "+string(req.Category))
			return
		}

		tx, err := d.Database.GetTransaction(r.Context(), req.Month, req.ID)
		if errors.Is(err, services.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		if err != nil {
			slog.Error("failed to get transaction", "id", req.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to get transaction: "+err.Error())
			return
		}

		previous := tx.Category
		tx = categories.Recategorize(tx, req.Category)
		if err := d.Database.UpdateTransaction(r.Context(), req.Month, tx); err != nil {
			slog.Error("failed to update transaction", "id", tx.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to update transaction: "+err.Error())
			return
		}

		slog.Info("recategorized transaction", "id", tx.ID, "from", previous, "to", tx.Category)
		WriteJSON(w, http.StatusOK, tx)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
