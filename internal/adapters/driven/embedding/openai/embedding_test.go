package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

func newTestService(t *testing.T, cfg Config, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL + "/v1"
	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test"
	}
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantDims int
		wantSend bool
	}{
		{"default model", Config{APIKey: "k"}, 1536, false},
		{"large model", Config{APIKey: "k", Model: "text-embedding-3-large"}, 3072, false},
		{"override v3", Config{APIKey: "k", Model: "text-embedding-3-small", Dimensions: 512}, 512, true},
		{"override ignored for ada", Config{APIKey: "k", Model: "text-embedding-ada-002", Dimensions: 512}, 1536, false},
		{"unknown model with dims", Config{APIKey: "k", Model: "custom", Dimensions: 64}, 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmbeddingService(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDims, svc.Dimensions())
			assert.Equal(t, tt.wantSend, svc.sendDimensions)
		})
	}
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		],"model":"text-embedding-3-small"}`))
	})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestEmbed_APIError(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := svc.Embed(context.Background(), "a")

	require.Error(t, err)
	assert.True(t, domain.IsBackendError(err))
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})

	assert.True(t, domain.IsBackendError(err))
}

func TestPing(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
