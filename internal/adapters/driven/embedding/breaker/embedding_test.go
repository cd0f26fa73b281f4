package breaker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// flakyEmbedder fails while fail is set and counts calls.
type flakyEmbedder struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (f *flakyEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return []float32{1, 0}, nil
}

func (f *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *flakyEmbedder) Dimensions() int              { return 2 }
func (f *flakyEmbedder) ModelName() string            { return "flaky" }
func (f *flakyEmbedder) Ping(_ context.Context) error { return nil }
func (f *flakyEmbedder) Close() error                 { return nil }

func TestEmbed_PassesThrough(t *testing.T) {
	inner := &flakyEmbedder{}
	svc := New(inner, Config{Name: "test"})

	vec, err := svc.Embed(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "flaky", svc.ModelName())
	assert.Equal(t, "closed", svc.State())
}

func TestEmbed_FailuresAreBackendErrors(t *testing.T) {
	inner := &flakyEmbedder{}
	inner.fail.Store(true)
	svc := New(inner, Config{Name: "test", MaxFailures: 5})

	_, err := svc.EmbedBatch(context.Background(), []string{"x"})

	require.Error(t, err)
	assert.True(t, domain.IsBackendError(err))
	assert.Contains(t, err.Error(), "test: embed batch: connection refused")
}

func TestEmbed_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyEmbedder{}
	inner.fail.Store(true)
	svc := New(inner, Config{Name: "test", MaxFailures: 2, Timeout: time.Hour})

	for range 2 {
		_, err := svc.Embed(context.Background(), "x")
		require.Error(t, err)
	}
	assert.Equal(t, "open", svc.State())

	_, err := svc.Embed(context.Background(), "x")

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, domain.IsBackendError(err))
	assert.Equal(t, int32(2), inner.calls.Load(), "open circuit must not reach the provider")
}

func TestEmbed_RecoversAfterTimeout(t *testing.T) {
	inner := &flakyEmbedder{}
	inner.fail.Store(true)
	svc := New(inner, Config{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "open", svc.State())

	inner.fail.Store(false)
	assert.Eventually(t, func() bool {
		_, err := svc.Embed(context.Background(), "x")
		return err == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "closed", svc.State())
}

func TestEmbed_CancelledContextDoesNotTrip(t *testing.T) {
	inner := &flakyEmbedder{}
	svc := New(inner, Config{Name: "test", MaxFailures: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "x")

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsBackendError(err))
	assert.Equal(t, "closed", svc.State())
}

func TestEmbed_RateLimited(t *testing.T) {
	inner := &flakyEmbedder{}
	svc := New(inner, Config{Name: "test", RequestsPerSecond: 0.001})

	_, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Embed(ctx, "x")

	assert.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}
