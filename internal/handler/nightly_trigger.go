package handler

import (
	"log/slog"
	"net/http"
)

// HandleNightlyTrigger runs the duplicate detector and mails any unresolved flags.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("starting nightly trigger processing")

	if !d.notify() {
		slog.Warn("email notifications are not configured; skipping nightly report")
		w.WriteHeader(http.StatusOK)
		return
	}

	report, err := d.detect(ctx)
	if err != nil {
		slog.Error("failed to detect duplicates", "error", err)
		http.Error(w, "Failed to detect duplicates", http.StatusInternalServerError)
		return
	}

	if len(report.Flagged) == 0 {
		slog.Info("no unresolved flags; nothing to report", "clusters_count", len(report.Clusters))
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := d.Email.SendDuplicateReport(ctx, []string{d.UserEmail}, report.Clusters); err != nil {
		slog.Error("failed to send duplicate report", "email", d.UserEmail, "error", err)
		http.Error(w, "Failed to send duplicate report", http.StatusInternalServerError)
		return
	}

	slog.Info("nightly trigger processing complete",
		"flagged_count", len(report.Flagged),
		"unresolved_total", report.UnresolvedTotal.StringFixed(2),
	)
	w.WriteHeader(http.StatusOK)
}
