package handler

import (
	"context"

	"github.com/rocjay1/spend-sentinel/internal/models"
)

// MockDatabaseClient is a mock implementation of DatabaseClient
type MockDatabaseClient struct {
	SaveTransactionsFunc  func(ctx context.Context, transactions []models.Transaction) ([]models.Transaction, error)
	GetTransactionsFunc   func(ctx context.Context, month string) ([]models.Transaction, error)
	GetTransactionFunc    func(ctx context.Context, month, id string) (models.Transaction, error)
	UpdateTransactionFunc func(ctx context.Context, month string, t models.Transaction) error
	GetAccountsFunc       func(ctx context.Context) ([]models.AccountOwnership, error)
	SaveAccountFunc       func(ctx context.Context, account models.AccountOwnership) error
	DeleteAccountFunc     func(ctx context.Context, id string) error
	GetDecisionsFunc      func(ctx context.Context) (models.Decisions, error)
	SaveDecisionFunc      func(ctx context.Context, transactionID string, decision models.Decision) error
}

func (m *MockDatabaseClient) SaveTransactions(ctx context.Context, transactions []models.Transaction) ([]models.Transaction, error) {
	if m.SaveTransactionsFunc != nil {
		return m.SaveTransactionsFunc(ctx, transactions)
	}
	return transactions, nil
}

func (m *MockDatabaseClient) GetTransactions(ctx context.Context, month string) ([]models.Transaction, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, month)
	}
	return nil, nil
}

func (m *MockDatabaseClient) GetTransaction(ctx context.Context, month, id string) (models.Transaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, month, id)
	}
	return models.Transaction{}, nil
}

func (m *MockDatabaseClient) UpdateTransaction(ctx context.Context, month string, t models.Transaction) error {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, month, t)
	}
	return nil
}

func (m *MockDatabaseClient) GetAccounts(ctx context.Context) ([]models.AccountOwnership, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveAccount(ctx context.Context, account models.AccountOwnership) error {
	if m.SaveAccountFunc != nil {
		return m.SaveAccountFunc(ctx, account)
	}
	return nil
}

func (m *MockDatabaseClient) DeleteAccount(ctx context.Context, id string) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, id)
	}
	return nil
}

func (m *MockDatabaseClient) GetDecisions(ctx context.Context) (models.Decisions, error) {
	if m.GetDecisionsFunc != nil {
		return m.GetDecisionsFunc(ctx)
	}
	return models.Decisions{}, nil
}

func (m *MockDatabaseClient) SaveDecision(ctx context.Context, transactionID string, decision models.Decision) error {
	if m.SaveDecisionFunc != nil {
		return m.SaveDecisionFunc(ctx, transactionID, decision)
	}
	return nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, blobName, content string) error
	DownloadTextFunc func(ctx context.Context, blobName string) (string, error)
}

func (m *MockBlobClient) UploadText(ctx context.Context, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, blobName)
	}
	return "", nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendEmailFunc           func(ctx context.Context, to []string, subject, body string) error
	SendErrorEmailFunc      func(ctx context.Context, recipients []string, errors []string) error
	SendDuplicateReportFunc func(ctx context.Context, recipients []string, clusters []models.DuplicateCluster) error
}

func (m *MockEmailClient) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *MockEmailClient) SendErrorEmail(ctx context.Context, recipients []string, errors []string) error {
	if m.SendErrorEmailFunc != nil {
		return m.SendErrorEmailFunc(ctx, recipients, errors)
	}
	return nil
}

func (m *MockEmailClient) SendDuplicateReport(ctx context.Context, recipients []string, clusters []models.DuplicateCluster) error {
	if m.SendDuplicateReportFunc != nil {
		return m.SendDuplicateReportFunc(ctx, recipients, clusters)
	}
	return nil
}
