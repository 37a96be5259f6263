package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/spend-sentinel/internal/aggregate"
)

// HandleSummary returns the aggregate spending summary for a month.
func (d *Dependencies) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := d.Database.GetTransactions(r.Context(), month)
	if err != nil {
		slog.Error("failed to get transactions for summary", "month", month, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to get transactions: "+err.Error())
		return
	}

	own, err := d.ownership(r.Context())
	if err != nil {
		slog.Error("failed to load ownership for summary", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := aggregate.Summarize(transactions, own)
	slog.Info("computed summary", "month", month, "transactions_count", len(transactions), "net_income", summary.NetIncome.String())
	WriteJSON(w, http.StatusOK, summary)
}
