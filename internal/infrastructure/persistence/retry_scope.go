package persistence

import (
	"context"
	"time"

	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/infrastructure/config"
)

// RetryingTransactionScope decorates a TransactionScope with automatic retry
// of transactions that fail with a retryable contention error. Attempts are
// spaced by an exponentially growing delay starting at BaseDelay.
type RetryingTransactionScope struct {
	inner       appinventory.TransactionScope
	maxAttempts int
	baseDelay   time.Duration
}

var _ appinventory.TransactionScope = (*RetryingTransactionScope)(nil)

// NewRetryingTransactionScope wraps the given scope with the retry policy
// from cfg
func NewRetryingTransactionScope(inner appinventory.TransactionScope, cfg config.RetryConfig) *RetryingTransactionScope {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 20 * time.Millisecond
	}
	return &RetryingTransactionScope{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// Execute runs fn in a transaction, retrying on contention. The function
// must be safe to re-run: it is invoked with fresh transactional
// repositories on every attempt.
func (s *RetryingTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	delay := s.baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = s.inner.Execute(ctx, fn)
		if err == nil || !shared.IsRetryable(err) || attempt >= s.maxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
