package handler

import (
	"context"

	"github.com/rocjay1/spend-sentinel/internal/models"
)

// DatabaseClient defines the interface for database operations used by handlers.
type DatabaseClient interface {
	SaveTransactions(ctx context.Context, transactions []models.Transaction) ([]models.Transaction, error)
	GetTransactions(ctx context.Context, month string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, month, id string) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, month string, t models.Transaction) error

	GetAccounts(ctx context.Context) ([]models.AccountOwnership, error)
	SaveAccount(ctx context.Context, account models.AccountOwnership) error
	DeleteAccount(ctx context.Context, id string) error

	GetDecisions(ctx context.Context) (models.Decisions, error)
	SaveDecision(ctx context.Context, transactionID string, decision models.Decision) error
}

// BlobClient defines the interface for blob storage operations used by handlers.
type BlobClient interface {
	UploadText(ctx context.Context, blobName, content string) error
	DownloadText(ctx context.Context, blobName string) (string, error)
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, message any) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
	SendErrorEmail(ctx context.Context, recipients []string, errors []string) error
	SendDuplicateReport(ctx context.Context, recipients []string, clusters []models.DuplicateCluster) error
}
