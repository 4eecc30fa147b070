package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbedServer answers both the single and batch embedding shapes,
// returning one vector per request in the body.
func newEmbedServer(t *testing.T, returned int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Requests []json.RawMessage `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		n := len(req.Requests)
		if n == 0 {
			n = 1
		}
		if returned >= 0 {
			n = returned
		}
		embeddings := make([]map[string]any, n)
		for i := range embeddings {
			embeddings[i] = map[string]any{"values": []float32{float32(i), 1, 0}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding":  map[string]any{"values": []float32{0, 1, 0}},
			"embeddings": embeddings,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	require.Error(t, err)

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())

	svc, err = NewEmbeddingService(context.Background(), Config{APIKey: "k", Model: "gemini-embedding-001"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())
}

func TestEmbedBatch_OneVectorPerText(t *testing.T) {
	server := newEmbedServer(t, -1)

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", BaseURL: server.URL, Dimensions: 3})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{2, 1, 0}, vecs[2])
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	server := newEmbedServer(t, 1)

	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 embeddings for 2 texts")
}
