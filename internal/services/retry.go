package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/cenkalti/backoff/v4"
)

const maxRetries = 5

// retryStatuses are the responses worth another attempt.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// retryable reports whether err is a throttling or transient gateway error.
func retryable(err error) bool {
	return retryStatuses[statusOf(err)]
}

// statusOf returns the HTTP status of an Azure response error, or zero.
func statusOf(err error) int {
	var azErr *azcore.ResponseError
	if errors.As(err, &azErr) {
		return azErr.StatusCode
	}
	return 0
}

// withRetry retries transient failures of op with exponential backoff.
func withRetry(ctx context.Context, name string, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		slog.Warn("retrying storage operation", "operation", name, "attempt", attempt, "status", statusOf(err))
		return err
	}, b)
}
