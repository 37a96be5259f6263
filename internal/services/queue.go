package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/rocjay1/spend-sentinel/internal/config"
)

// QueueService hands uploads to the processing function over Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient
	queue         string
}

// NewQueueService creates a new QueueService instance.
func NewQueueService(cfg *config.Config) (*QueueService, error) {
	if cfg.QueueServiceURL == "" {
		return nil, fmt.Errorf("QUEUE_SERVICE_URL environment variable is required")
	}

	slog.Info("initializing queue service", "queue_url", cfg.QueueServiceURL)
	var client *azqueue.ServiceClient

	auth := authFor(cfg.QueueServiceURL)
	if auth.local {
		slog.Info("using azurite shared key credentials for queue service")
		cred, err := azqueue.NewSharedKeyCredential(auth.account, auth.key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(auth.serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azqueue.NewServiceClient(auth.serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	slog.Info("queue service initialized successfully", "queue", cfg.ProcessQueue)
	return &QueueService{serviceClient: client, queue: cfg.ProcessQueue}, nil
}

// encodeMessage serializes message as base64 JSON, the encoding the
// Functions host expects on queue triggers.
func encodeMessage(message any) (string, error) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(msgBytes), nil
}

// EnqueueMessage adds a message to the processing queue.
func (s *QueueService) EnqueueMessage(ctx context.Context, message any) error {
	queueClient := s.serviceClient.NewQueueClient(s.queue)

	_, err := queueClient.Create(ctx, nil)
	var azErr *azcore.ResponseError
	if err != nil && !(errors.As(err, &azErr) && azErr.ErrorCode == "QueueAlreadyExists") {
		slog.Warn("failed to create queue", "queue", s.queue, "error", err)
	}

	encoded, err := encodeMessage(message)
	if err != nil {
		return err
	}

	err = withRetry(ctx, "enqueue_message", func() error {
		_, err := queueClient.EnqueueMessage(ctx, encoded, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue message to %s: %w", s.queue, err)
	}

	slog.Info("enqueued message", "queue", s.queue)
	return nil
}
