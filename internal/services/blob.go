package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/rocjay1/spend-sentinel/internal/config"
)

// BlobService stores uploaded statements in Azure Blob Storage.
type BlobService struct {
	client    *azblob.Client
	container string
}

// NewBlobService creates a new BlobService instance.
func NewBlobService(cfg *config.Config) (*BlobService, error) {
	if cfg.BlobServiceURL == "" {
		return nil, fmt.Errorf("BLOB_SERVICE_URL environment variable is required")
	}

	slog.Info("initializing blob service", "blob_url", cfg.BlobServiceURL)
	var client *azblob.Client

	auth := authFor(cfg.BlobServiceURL)
	if auth.local {
		slog.Info("using azurite shared key credentials for blob service")
		cred, err := azblob.NewSharedKeyCredential(auth.account, auth.key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(auth.serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(auth.serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	slog.Info("blob service initialized successfully", "container", cfg.UploadsContainer)
	return &BlobService{client: client, container: cfg.UploadsContainer}, nil
}

// UploadText uploads a statement to the uploads container.
func (s *BlobService) UploadText(ctx context.Context, blobName, text string) error {
	slog.Info("uploading blob", "container", s.container, "blob_name", blobName, "size_bytes", len(text))

	_, err := s.client.CreateContainer(ctx, s.container, nil)
	var azErr *azcore.ResponseError
	if err != nil && !(errors.As(err, &azErr) && azErr.ErrorCode == "ContainerAlreadyExists") {
		slog.Warn("failed to create container", "container", s.container, "error", err)
	}

	err = withRetry(ctx, "upload_blob", func() error {
		_, err := s.client.UploadBuffer(ctx, s.container, blobName, []byte(text), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s/%s: %w", s.container, blobName, err)
	}
	slog.Info("uploaded blob", "container", s.container, "blob_name", blobName)
	return nil
}

// DownloadText downloads a statement and returns its content.
func (s *BlobService) DownloadText(ctx context.Context, blobName string) (string, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download blob %s/%s: %w", s.container, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read blob content: %w", err)
	}

	slog.Info("downloaded blob", "container", s.container, "blob_name", blobName, "size_bytes", len(data))
	return string(data), nil
}
