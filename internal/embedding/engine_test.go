package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1.0,
		},
		{
			name: "zero magnitude",
			a:    []float32{0, 0},
			b:    []float32{1, 1},
			want: 0.0,
		},
		{
			name:    "dimension mismatch",
			a:       []float32{1, 2},
			b:       []float32{1, 2, 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineDistance(t *testing.T) {
	// Identical vectors have distance 0; orthogonal have distance 1.
	d, err := CosineDistance([]float32{1, 2, 3}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("CosineDistance: %v", err)
	}
	if math.Abs(d) > 1e-6 {
		t.Errorf("distance of identical vectors = %v, want 0", d)
	}

	d, err = CosineDistance([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("CosineDistance: %v", err)
	}
	if math.Abs(d-1.0) > 1e-6 {
		t.Errorf("distance of orthogonal vectors = %v, want 1", d)
	}
}

func TestNewEngineUnsupportedProvider(t *testing.T) {
	_, err := NewEngine(Config{Provider: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestOllamaEngineEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt != "healthcare spending" {
			t.Errorf("Prompt = %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	vec, err := engine.Embed(context.Background(), "healthcare spending")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestOllamaEngineEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	engine, _ := NewOllamaEngine(srv.URL, "embeddinggemma")
	if _, err := engine.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestOllamaEngineEmbedBatch(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(calls)}})
	}))
	defer srv.Close()

	engine, _ := NewOllamaEngine(srv.URL, "embeddinggemma")
	vecs, err := engine.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(vecs))
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
}
