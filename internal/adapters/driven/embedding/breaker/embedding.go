// Package breaker wraps an embedding service with a circuit breaker and an
// optional request rate limit. Remote providers are wrapped so that a dead
// endpoint fails fast instead of stalling every ingestion batch.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config holds the breaker and limiter settings.
type Config struct {
	// Name labels the breaker and its BackendErrors, usually the provider.
	Name string

	// MaxFailures is the number of consecutive failures that open the circuit.
	// Default: 3
	MaxFailures uint32

	// Timeout is how long the circuit stays open before a trial call.
	// Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxRequests is the number of trial calls allowed while half-open.
	// Default: 1
	HalfOpenMaxRequests uint32

	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the limiter burst size. Default: 1
	Burst int
}

// EmbeddingService guards another EmbeddingService.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// New wraps inner with a circuit breaker configured by cfg.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.Name == "" {
		cfg.Name = inner.ModelName()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests == 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	maxFailures := cfg.MaxFailures
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding breaker %s: %s -> %s", name, from, to)
		},
	}

	s := &EmbeddingService{
		inner:   inner,
		name:    cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return s
}

// Embed generates a vector embedding through the breaker.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := s.execute(ctx, "embed", func() (interface{}, error) {
		return s.inner.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// EmbedBatch generates embeddings for multiple texts through the breaker.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := s.execute(ctx, "embed batch", func() (interface{}, error) {
		return s.inner.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service directly. It bypasses the breaker so that
// a health check can observe a recovered provider while the circuit is open.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}

// State returns the breaker state: "closed", "open" or "half-open".
func (s *EmbeddingService) State() string {
	return s.breaker.State().String()
}

func (s *EmbeddingService) execute(ctx context.Context, op string, fn func() (interface{}, error)) (interface{}, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn()
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, domain.NewBackendError(s.name, op, fmt.Errorf("%w: %w", ErrCircuitOpen, err))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return nil, domain.NewBackendError(s.name, op, err)
}
