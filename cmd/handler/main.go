package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rocjay1/spend-sentinel/internal/config"
	"github.com/rocjay1/spend-sentinel/internal/handler"
	"github.com/rocjay1/spend-sentinel/internal/services"
	"github.com/shopspring/decimal"
)

// bodyPreviewLimit caps how much of a request body is logged.
const bodyPreviewLimit = 512

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dbService, err := services.NewDatabaseService(cfg)
	if err != nil {
		slog.Error("failed to init database service", "error", err)
		os.Exit(1)
	}

	blobService, err := services.NewBlobService(cfg)
	if err != nil {
		slog.Error("failed to init blob service", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService(cfg)
	if err != nil {
		slog.Error("failed to init queue service", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Database:  dbService,
		Blob:      blobService,
		Queue:     queueService,
		UserEmail: cfg.UserEmail,
	}

	// A nil *EmailService stored in the interface would not compare equal to nil.
	if cfg.EmailEnabled() {
		emailService, err := services.NewEmailService(cfg, nil)
		if err != nil {
			slog.Warn("failed to init email service (continuing without notifications)", "error", err)
		} else {
			deps.Email = emailService
		}
	} else {
		slog.Info("email notifications disabled")
	}

	mux := http.NewServeMux()

	// API Routes
	mux.HandleFunc("POST /api/upload", deps.HandleUpload)

	mux.HandleFunc("GET /api/transactions", deps.HandleTransactions)
	mux.HandleFunc("PATCH /api/transactions", deps.HandleTransactions)

	mux.HandleFunc("GET /api/accounts", deps.HandleAccounts)
	mux.HandleFunc("POST /api/accounts", deps.HandleAccounts)
	mux.HandleFunc("DELETE /api/accounts", deps.HandleAccounts)

	mux.HandleFunc("GET /api/summary", deps.HandleSummary)

	mux.HandleFunc("GET /api/duplicates", deps.HandleDuplicates)
	mux.HandleFunc("POST /api/duplicates/decision", deps.HandleDuplicateDecision)

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", deps.HandleHttpTrigger(mux))

	// Use simpler path matching for the queue and timer triggers to avoid method mismatch issues
	mux.HandleFunc("/ProcessQueue", deps.ProcessQueue)
	mux.HandleFunc("/NightlyTrigger", deps.HandleNightlyTrigger)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Catch-all handler for unmatched requests to debug what the Host is sending
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		http.NotFound(w, r)
	})

	slog.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, loggingMiddleware(mux)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Read body for logging (and restore it)
		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		preview := bodyBytes
		if len(preview) > bodyPreviewLimit {
			preview = preview[:bodyPreviewLimit]
		}

		slog.Info("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
			"body_preview", string(preview),
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}
