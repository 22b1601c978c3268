package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/store"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// DocumentRetriever gathers supporting background text for the focal
// question. It shares the search-then-classify shape of the semantic
// resolver but differs structurally: it searches the document corpus
// without congress scoping, never escalates to the refinement loop,
// and returns concatenated chunk text rather than a single identity.
type DocumentRetriever struct {
	store    DocumentStore
	embedder Embedder
	client   types.LLMClient
	cfg      Config
}

// DocumentStore is the slice of the knowledge store the document
// retriever consumes. *store.KnowledgeStore satisfies it.
type DocumentStore interface {
	SearchChunks(ctx context.Context, queryEmbedding []float32, opts store.SearchOptions) ([]store.ChunkMatch, error)
}

// NewDocumentRetriever creates a document retriever.
func NewDocumentRetriever(docStore DocumentStore, embedder Embedder, client types.LLMClient, cfg Config) *DocumentRetriever {
	return &DocumentRetriever{store: docStore, embedder: embedder, client: client, cfg: cfg}
}

// Retrieve returns the concatenated text of all document chunks judged
// relevant to the focal question. An empty string means no supporting
// text was found; that is a normal outcome, not an error.
func (r *DocumentRetriever) Retrieve(ctx context.Context, focalQuestion string) (string, error) {
	timer := logging.StartTimer(logging.CategoryDocuments, "DocumentRetriever.Retrieve")
	defer timer.Stop()

	if strings.TrimSpace(focalQuestion) == "" {
		return "", nil
	}

	vec, err := r.embedder.Embed(ctx, focalQuestion)
	if err != nil {
		return "", fmt.Errorf("question embedding failed: %w", err)
	}

	hits, err := r.store.SearchChunks(ctx, vec, store.SearchOptions{
		Source:      store.SourceDocument,
		MaxDistance: r.cfg.DistanceThreshold,
		Limit:       r.cfg.CandidateLimit,
	})
	if err != nil {
		return "", fmt.Errorf("document search failed: %w", err)
	}
	if len(hits) == 0 {
		logging.Documents("No document chunks within threshold")
		return "", nil
	}

	relevant, err := r.filterRelevant(ctx, focalQuestion, hits)
	if err != nil {
		return "", err
	}
	if len(relevant) == 0 {
		logging.Documents("Filter rejected all %d document chunks", len(hits))
		return "", nil
	}

	var b strings.Builder
	for i, chunk := range relevant {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chunk.Text)
	}

	logging.Documents("Assembled %d relevant document chunks", len(relevant))
	return b.String(), nil
}

// filterRelevant keeps only the chunks the LLM judges useful for the
// question. The positive set is used as-is; there is no further
// narrowing.
func (r *DocumentRetriever) filterRelevant(ctx context.Context, focalQuestion string, hits []store.ChunkMatch) ([]store.ChunkMatch, error) {
	var b strings.Builder
	b.WriteString("Document excerpts:\n")
	for _, chunk := range hits {
		fmt.Fprintf(&b, "- excerpt id: %s\n  text: %s\n", chunk.ChunkID, chunk.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(focalQuestion)

	raw, err := r.completeStructured(ctx, documentFilterSystemPrompt, b.String(), documentFilterSchema())
	if err != nil {
		return nil, fmt.Errorf("document relevance filter failed: %w", err)
	}

	keep := make(map[string]bool)
	for _, id := range parseIDList(raw, "chunkIds") {
		keep[id] = true
	}

	var relevant []store.ChunkMatch
	for _, chunk := range hits {
		if keep[chunk.ChunkID] {
			relevant = append(relevant, chunk)
		}
	}
	return relevant, nil
}

func (r *DocumentRetriever) completeStructured(ctx context.Context, system, user string, schema map[string]interface{}) (string, error) {
	if sc, ok := r.client.(types.StructuredCompleter); ok {
		return sc.CompleteStructured(ctx, system, user, schema)
	}
	return r.client.CompleteWithSystem(ctx, system, user)
}
