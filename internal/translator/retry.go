package translator

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds each call to a wrapped service. Zero values mean one
// attempt and no per-attempt timeout.
type RetryConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// RetryService retries a failing service with linear backoff. Each attempt
// gets its own timeout when one is configured.
type RetryService struct {
	inner  TranslationService
	config RetryConfig
}

func NewRetryService(inner TranslationService, config RetryConfig) *RetryService {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &RetryService{inner: inner, config: config}
}

func (s *RetryService) Name() string {
	return s.inner.Name()
}

func (s *RetryService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	var (
		res *ServiceResult
		err error
	)
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return res, fmt.Errorf("%s: %w (after %d attempts: %v)", s.inner.Name(), ctx.Err(), attempt-1, err)
			case <-time.After(time.Duration(attempt-1) * s.config.RetryDelay):
			}
		}

		res, err = s.attempt(ctx, req)
		if err == nil {
			return res, nil
		}
	}
	if s.config.MaxAttempts > 1 {
		err = fmt.Errorf("%s: giving up after %d attempts: %w", s.inner.Name(), s.config.MaxAttempts, err)
	}
	return res, err
}

func (s *RetryService) attempt(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	return s.inner.Translate(ctx, req)
}

func (s *RetryService) IsAvailable(ctx context.Context) error {
	return s.inner.IsAvailable(ctx)
}
