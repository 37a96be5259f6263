package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/spend-sentinel/internal/config"
	"github.com/rocjay1/spend-sentinel/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

const batchSize = 100

// DatabaseService handles interactions with Azure Table Storage.
type DatabaseService struct {
	serviceClient     *aztables.ServiceClient
	transactionsTable string
	accountsTable     string
	decisionsTable    string
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService(cfg *config.Config) (*DatabaseService, error) {
	if cfg.TableServiceURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}

	var client *aztables.ServiceClient
	auth := authFor(cfg.TableServiceURL)
	if auth.local {
		slog.Info("using azurite credentials for database service")
		cred, err := aztables.NewSharedKeyCredential(auth.account, auth.key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(auth.serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(auth.serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient:     client,
		transactionsTable: cfg.TransactionsTable,
		accountsTable:     cfg.AccountsTable,
		decisionsTable:    cfg.DecisionsTable,
	}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully",
		"table_url", cfg.TableServiceURL,
		"transactions_table", svc.transactionsTable,
		"accounts_table", svc.accountsTable,
		"decisions_table", svc.decisionsTable,
	)
	return svc, nil
}

// CreateTables ensures all required tables exist in Azure Table Storage.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	for _, tableName := range []string{s.transactionsTable, s.accountsTable, s.decisionsTable} {
		_, err := s.serviceClient.CreateTable(ctx, tableName, nil)
		if err != nil {
			var azErr *azcore.ResponseError
			if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

func (s *DatabaseService) getClient(tableName string) *aztables.Client {
	return s.serviceClient.NewClient(tableName)
}

// listEntities pages through every entity matching filter.
func (s *DatabaseService) listEntities(ctx context.Context, client *aztables.Client, filter, fields string) ([][]byte, error) {
	opts := &aztables.ListEntitiesOptions{}
	if filter != "" {
		opts.Filter = &filter
	}
	if fields != "" {
		opts.Select = &fields
	}

	var out [][]byte
	pager := client.NewListEntitiesPager(opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities: %w", err)
		}
		out = append(out, resp.Entities...)
	}
	return out, nil
}

// submit sends actions in chunks of batchSize, retrying throttled chunks.
func (s *DatabaseService) submit(ctx context.Context, client *aztables.Client, actions []aztables.TransactionAction) error {
	for i := 0; i < len(actions); i += batchSize {
		end := min(i+batchSize, len(actions))
		chunk := actions[i:end]
		err := withRetry(ctx, "submit_transaction", func() error {
			_, err := client.SubmitTransaction(ctx, chunk, nil)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to submit transaction batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// SaveTransactions stores transactions keyed by their ID, skipping IDs
// that already exist. It returns the transactions that were actually new.
func (s *DatabaseService) SaveTransactions(ctx context.Context, transactions []models.Transaction) ([]models.Transaction, error) {
	if len(transactions) == 0 {
		return []models.Transaction{}, nil
	}

	client := s.getClient(s.transactionsTable)

	partitions := make(map[string][]models.Transaction)
	var order []string
	for _, t := range transactions {
		pk := transactionPartition(t)
		if _, ok := partitions[pk]; !ok {
			order = append(order, pk)
		}
		partitions[pk] = append(partitions[pk], t)
	}

	newTransactions := []models.Transaction{}
	timestamp := time.Now().UTC().Format(time.RFC3339)

	for _, pk := range order {
		entities, err := s.listEntities(ctx, client, fmt.Sprintf("PartitionKey eq '%s'", escapeFilter(pk)), "RowKey")
		if err != nil {
			return nil, fmt.Errorf("failed to list existing transactions: %w", err)
		}
		existing := make(map[string]bool, len(entities))
		for _, raw := range entities {
			var parsed entityFields
			if err := json.Unmarshal(raw, &parsed); err == nil {
				existing[parsed.str("RowKey")] = true
			}
		}

		var batch []aztables.TransactionAction
		for _, t := range partitions[pk] {
			if existing[t.ID] {
				continue
			}
			existing[t.ID] = true
			newTransactions = append(newTransactions, t)

			entity, err := transactionEntity(pk, t, timestamp)
			if err != nil {
				return nil, fmt.Errorf("failed to build entity for transaction %s: %w", t.ID, err)
			}
			entityJSON, err := json.Marshal(entity)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal transaction %s: %w", t.ID, err)
			}
			batch = append(batch, aztables.TransactionAction{
				ActionType: aztables.TransactionTypeInsertReplace,
				Entity:     entityJSON,
			})
		}

		if err := s.submit(ctx, client, batch); err != nil {
			return nil, err
		}
	}

	return newTransactions, nil
}

// GetTransactions lists stored transactions for a YYYY-MM month, or all of
// them when month is empty.
func (s *DatabaseService) GetTransactions(ctx context.Context, month string) ([]models.Transaction, error) {
	client := s.getClient(s.transactionsTable)

	filter := ""
	if month != "" {
		filter = fmt.Sprintf("PartitionKey eq '%s'", escapeFilter(monthPartition(month)))
	}
	entities, err := s.listEntities(ctx, client, filter, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(entities))
	for _, raw := range entities {
		t, err := parseTransactionEntity(raw)
		if err != nil {
			slog.Warn("skipping unreadable transaction entity", "error", err)
			continue
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// GetTransaction fetches one transaction by month and ID.
func (s *DatabaseService) GetTransaction(ctx context.Context, month, id string) (models.Transaction, error) {
	client := s.getClient(s.transactionsTable)

	resp, err := client.GetEntity(ctx, monthPartition(month), id, nil)
	if err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "ResourceNotFound" {
			return models.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return models.Transaction{}, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return parseTransactionEntity(resp.Value)
}

// UpdateTransaction merges t into the row it was read from in month's
// partition, which may differ from t's own date for legacy rows.
func (s *DatabaseService) UpdateTransaction(ctx context.Context, month string, t models.Transaction) error {
	if month == "" {
		return fmt.Errorf("month is required to update transaction %s", t.ID)
	}
	client := s.getClient(s.transactionsTable)

	entity, err := transactionEntity(monthPartition(month), t, "")
	if err != nil {
		return fmt.Errorf("failed to build entity for transaction %s: %w", t.ID, err)
	}
	entityJSON, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction %s: %w", t.ID, err)
	}
	if _, err := client.UpsertEntity(ctx, entityJSON, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeMerge}); err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", t.ID, err)
	}
	return nil
}

// GetAccounts retrieves all account ownership entries.
func (s *DatabaseService) GetAccounts(ctx context.Context) ([]models.AccountOwnership, error) {
	client := s.getClient(s.accountsTable)

	entities, err := s.listEntities(ctx, client, fmt.Sprintf("PartitionKey eq '%s'", accountsPartition), "")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]models.AccountOwnership, 0, len(entities))
	for _, raw := range entities {
		a, err := parseAccountEntity(raw)
		if err != nil {
			slog.Warn("skipping unreadable account entity", "error", err)
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// SaveAccount upserts an account ownership entry.
func (s *DatabaseService) SaveAccount(ctx context.Context, account models.AccountOwnership) error {
	client := s.getClient(s.accountsTable)

	entityJSON, err := json.Marshal(accountEntity(account))
	if err != nil {
		return fmt.Errorf("failed to marshal account %s: %w", account.ID, err)
	}
	if _, err := client.UpsertEntity(ctx, entityJSON, nil); err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.ID, err)
	}
	return nil
}

// DeleteAccount deletes an account ownership entry by its ID (RowKey).
func (s *DatabaseService) DeleteAccount(ctx context.Context, id string) error {
	client := s.getClient(s.accountsTable)

	if _, err := client.DeleteEntity(ctx, accountsPartition, id, nil); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return nil
}

// GetDecisions retrieves every stored duplicate decision.
func (s *DatabaseService) GetDecisions(ctx context.Context) (models.Decisions, error) {
	client := s.getClient(s.decisionsTable)

	entities, err := s.listEntities(ctx, client, fmt.Sprintf("PartitionKey eq '%s'", decisionsPartition), "RowKey,Decision")
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}

	decisions := make(models.Decisions, len(entities))
	for _, raw := range entities {
		var parsed entityFields
		if err := json.Unmarshal(raw, &parsed); err != nil {
			continue
		}
		d := models.Decision(parsed.str("Decision"))
		if d.Valid() {
			decisions[parsed.str("RowKey")] = d
		}
	}
	return decisions, nil
}

// SaveDecision records a decision for a flagged transaction. An empty
// decision clears it.
func (s *DatabaseService) SaveDecision(ctx context.Context, transactionID string, decision models.Decision) error {
	client := s.getClient(s.decisionsTable)

	if decision == "" {
		_, err := client.DeleteEntity(ctx, decisionsPartition, transactionID, nil)
		var azErr *azcore.ResponseError
		if err != nil && !(errors.As(err, &azErr) && azErr.ErrorCode == "ResourceNotFound") {
			return fmt.Errorf("failed to clear decision for %s: %w", transactionID, err)
		}
		return nil
	}

	entityJSON, err := json.Marshal(decisionEntity(transactionID, decision))
	if err != nil {
		return fmt.Errorf("failed to marshal decision for %s: %w", transactionID, err)
	}
	if _, err := client.UpsertEntity(ctx, entityJSON, nil); err != nil {
		return fmt.Errorf("failed to save decision for %s: %w", transactionID, err)
	}
	return nil
}
