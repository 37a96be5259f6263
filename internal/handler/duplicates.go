package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rocjay1/spend-sentinel/internal/duplicates"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
)

// DuplicateReport is the response of the duplicates endpoint.
type DuplicateReport struct {
	Clusters        []models.DuplicateCluster   `json:"clusters"`
	Flagged         []models.FlaggedTransaction `json:"flagged"`
	UnresolvedTotal decimal.Decimal             `json:"unresolvedTotal"`
}

type decisionRequest struct {
	TransactionID string          `json:"transactionId"`
	Decision      models.Decision `json:"decision"`
}

// detect runs the detector over every stored transaction with the stored decisions.
func (d *Dependencies) detect(ctx context.Context) (DuplicateReport, error) {
	transactions, err := d.Database.GetTransactions(ctx, "")
	if err != nil {
		return DuplicateReport{}, fmt.Errorf("failed to get transactions: %w", err)
	}
	decisions, err := d.Database.GetDecisions(ctx)
	if err != nil {
		return DuplicateReport{}, fmt.Errorf("failed to get decisions: %w", err)
	}

	clusters := duplicates.DetectDefault(transactions, decisions)
	flagged := duplicates.Flagged(clusters)
	if flagged == nil {
		flagged = []models.FlaggedTransaction{}
	}
	return DuplicateReport{
		Clusters:        clusters,
		Flagged:         flagged,
		UnresolvedTotal: duplicates.UnresolvedTotal(clusters),
	}, nil
}

// HandleDuplicates returns the recurring-charge clusters and their unresolved flags.
func (d *Dependencies) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := d.detect(r.Context())
	if err != nil {
		slog.Error("failed to detect duplicates", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("detected duplicates", "clusters_count", len(report.Clusters), "flagged_count", len(report.Flagged))
	WriteJSON(w, http.StatusOK, report)
}

// HandleDuplicateDecision confirms, dismisses or clears a flagged transaction.
func (d *Dependencies) HandleDuplicateDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("invalid decision request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TransactionID == "" {
		WriteError(w, http.StatusBadRequest, "Missing transactionId")
		return
	}
	if req.Decision != "" && !req.Decision.Valid() {
		WriteError(w, http.StatusBadRequest, "Invalid decision: "+string(req.Decision))
		return
	}

	if err := d.Database.SaveDecision(r.Context(), req.TransactionID, req.Decision); err != nil {
		slog.Error("failed to save decision", "transaction_id", req.TransactionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to save decision: "+err.Error())
		return
	}

	slog.Info("saved duplicate decision", "transaction_id", req.TransactionID, "decision", req.Decision)
	WriteJSON(w, http.StatusOK, req)
}
