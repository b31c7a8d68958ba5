package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/briefd/internal/config"
)

func TestNewService_RequiresBaseURL(t *testing.T) {
	_, err := NewService(config.EmbeddingsConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEmbedQuery(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req teiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "quarterly revenue", req.Inputs)

		_ = json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	svc, err := NewService(config.EmbeddingsConfig{
		BaseURL: srv.URL,
		Model:   "BAAI/bge-small-en-v1.5",
		APIKey:  config.Secret("token-123"),
	})
	require.NoError(t, err)

	vec, err := svc.EmbedQuery(context.Background(), "quarterly revenue")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer token-123", gotAuth)
}

func TestEmbedQuery_EmptyText(t *testing.T) {
	svc, err := NewService(config.EmbeddingsConfig{BaseURL: "http://localhost:8080"})
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedQuery_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc, err := NewService(config.EmbeddingsConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "503")
}

func TestEmbedQuery_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{})
	}))
	defer srv.Close()

	svc, err := NewService(config.EmbeddingsConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}
