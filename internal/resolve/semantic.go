package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/store"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// SemanticResolver resolves candidate keywords through scoped vector
// search, LLM relevance classification, and a bounded agentic
// refinement loop when classification alone cannot disambiguate.
type SemanticResolver struct {
	store    BillStore
	embedder Embedder
	client   types.LLMClient
	cfg      Config
}

// NewSemanticResolver creates a semantic resolver.
func NewSemanticResolver(billStore BillStore, embedder Embedder, client types.LLMClient, cfg Config) *SemanticResolver {
	return &SemanticResolver{store: billStore, embedder: embedder, client: client, cfg: cfg}
}

// Resolve runs the full semantic pipeline over the candidate keywords.
func (r *SemanticResolver) Resolve(ctx context.Context, conversation []types.ConversationMessage, keywords []string) (*types.Bill, error) {
	timer := logging.StartTimer(logging.CategoryResolution, "SemanticResolver.Resolve")
	defer timer.Stop()

	if len(keywords) == 0 {
		return nil, NoMatch(ReasonUnrelatedBill)
	}

	pool, err := r.searchKeywords(ctx, keywords)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		logging.Resolution("Keyword search surfaced no candidates")
		return nil, NoMatch(ReasonUnrelatedBill)
	}

	billIDs, err := r.classify(ctx, conversation, pool)
	if err != nil {
		return nil, err
	}

	switch len(billIDs) {
	case 0:
		logging.Resolution("Classifier rejected all %d candidate chunks", len(pool))
		return nil, NoMatch(ReasonUnrelatedBill)
	case 1:
		bill, err := r.store.BillByID(ctx, billIDs[0])
		if errors.Is(err, store.ErrNotFound) {
			logging.Resolution("Classifier chose %s but it is not stored", billIDs[0])
			return nil, NoMatch(ReasonBillNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("bill fetch failed: %w", err)
		}
		return bill, nil
	}

	logging.Resolution("Classifier kept %d bills, entering refinement loop", len(billIDs))
	return r.refine(ctx, conversation, pool, billIDs)
}

// searchKeywords embeds each keyword and queries the vector store
// concurrently, then flattens the per-keyword hits into one pool.
// Duplicates across keywords are kept: repeated hits are a relevance
// signal the classifier gets to see.
func (r *SemanticResolver) searchKeywords(ctx context.Context, keywords []string) ([]store.ChunkMatch, error) {
	g, gctx := errgroup.WithContext(ctx)
	perKeyword := make([][]store.ChunkMatch, len(keywords))

	for i, keyword := range keywords {
		g.Go(func() error {
			vec, err := r.embedder.Embed(gctx, keyword)
			if err != nil {
				return fmt.Errorf("embedding %q failed: %w", keyword, err)
			}
			hits, err := r.store.SearchChunks(gctx, vec, store.SearchOptions{
				Source:      store.SourceBill,
				Congress:    r.cfg.ActiveCongress,
				MaxDistance: r.cfg.DistanceThreshold,
				Limit:       r.cfg.CandidateLimit,
			})
			if err != nil {
				return fmt.Errorf("chunk search for %q failed: %w", keyword, err)
			}
			perKeyword[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pool []store.ChunkMatch
	for _, hits := range perKeyword {
		pool = append(pool, hits...)
	}
	logging.ResolutionDebug("Keyword search pooled %d chunks from %d keywords", len(pool), len(keywords))
	return pool, nil
}

// classify asks the LLM which candidate bills the conversation is
// actually about and returns their ids.
func (r *SemanticResolver) classify(ctx context.Context, conversation []types.ConversationMessage, pool []store.ChunkMatch) ([]string, error) {
	titles, err := r.parentTitles(ctx, pool)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Candidate bill excerpts:\n")
	for _, chunk := range pool {
		fmt.Fprintf(&b, "- bill id: %s | title: %s\n  excerpt: %s\n", chunk.ParentID, titles[chunk.ParentID], chunk.Text)
	}
	b.WriteString("\nConversation:\n")
	b.WriteString(renderConversation(conversation))

	raw, err := r.completeStructured(ctx, classifierSystemPrompt, b.String(), classifierSchema())
	if err != nil {
		return nil, fmt.Errorf("relevance classification failed: %w", err)
	}

	return parseIDList(raw, "billIds"), nil
}

// parentTitles fetches titles for the distinct parents in the pool.
func (r *SemanticResolver) parentTitles(ctx context.Context, pool []store.ChunkMatch) (map[string]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, chunk := range pool {
		if !seen[chunk.ParentID] {
			seen[chunk.ParentID] = true
			ids = append(ids, chunk.ParentID)
		}
	}

	bills, err := r.store.BillsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("parent fetch failed: %w", err)
	}

	titles := make(map[string]string, len(bills))
	for _, bill := range bills {
		titles[bill.ID] = bill.Title
	}
	return titles, nil
}

// completeStructured prefers native schema-constrained output.
func (r *SemanticResolver) completeStructured(ctx context.Context, system, user string, schema map[string]interface{}) (string, error) {
	if sc, ok := r.client.(types.StructuredCompleter); ok {
		return sc.CompleteStructured(ctx, system, user, schema)
	}
	return r.client.CompleteWithSystem(ctx, system, user)
}

// parseIDList extracts a string list from classifier output, accepting
// either the schema-shaped object or a bare JSON array.
func parseIDList(raw, field string) []string {
	raw = stripCodeFence(raw)

	var wrapped map[string][]string
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		return wrapped[field]
	}

	var bare []string
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return bare
	}

	logging.Get(logging.CategoryResolution).Warn("Unparseable id list output: %q", raw)
	return nil
}
