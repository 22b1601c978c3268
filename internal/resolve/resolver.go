// Package resolve implements the tiered bill resolution chain and the
// supporting document retriever behind the response generator. A
// conversation goes in; at most one canonical bill and a blob of
// supporting document text come out.
//
// The chain runs three tiers in strict precedence with short-circuit:
// an explicit bill number resolves numerically and nothing else runs;
// otherwise exact title matching is tried; only on a title miss does
// semantic keyword search run. Tiers are never merged or consulted for
// a second opinion.
package resolve

import (
	"context"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/store"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// BillStore is the read-only slice of the knowledge store the resolver
// chain consumes. *store.KnowledgeStore satisfies it.
type BillStore interface {
	BillsByNumber(ctx context.Context, number int) ([]types.Bill, error)
	BillsByTitle(ctx context.Context, title string, limit int) ([]types.Bill, error)
	BillByID(ctx context.Context, id string) (*types.Bill, error)
	BillsByIDs(ctx context.Context, ids []string) ([]types.Bill, error)
	SearchChunks(ctx context.Context, queryEmbedding []float32, opts store.SearchOptions) ([]store.ChunkMatch, error)
}

// Embedder converts text into a fixed-length vector.
// embedding.Engine satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config carries the tuning knobs shared by the resolvers. Values are
// passed in explicitly so each resolver is testable with its own
// configuration.
type Config struct {
	// DistanceThreshold is the maximum cosine distance accepted as a
	// candidate.
	DistanceThreshold float64

	// CandidateLimit caps results per vector or title query.
	CandidateLimit int

	// ActiveCongress scopes semantic search to the current legislative
	// session. Numeric and title lookups are deliberately unscoped.
	ActiveCongress string

	// AgentStepCap bounds the agentic refinement loop.
	AgentStepCap int
}

// DefaultConfig returns the observed production values.
func DefaultConfig() Config {
	return Config{
		DistanceThreshold: 0.6,
		CandidateLimit:    5,
		ActiveCongress:    "119",
		AgentStepCap:      10,
	}
}

// Chain evaluates the resolution tiers in fixed precedence order.
type Chain struct {
	extractor *Extractor
	numeric   *NumericResolver
	title     *TitleResolver
	semantic  *SemanticResolver
}

// NewChain wires the full resolution chain.
func NewChain(billStore BillStore, embedder Embedder, client types.LLMClient, cfg Config) *Chain {
	return &Chain{
		extractor: NewExtractor(client),
		numeric:   NewNumericResolver(billStore, client),
		title:     NewTitleResolver(billStore, cfg.CandidateLimit),
		semantic:  NewSemanticResolver(billStore, embedder, client, cfg),
	}
}

// Resolve runs extraction and then the tier that extraction selects.
//
// An explicit number gates everything: when present, only the numeric
// tier runs, even if titles and keywords were also extracted. A title
// miss falls through to semantic search; a semantic miss is terminal.
func (c *Chain) Resolve(ctx context.Context, conversation []types.ConversationMessage, rlog *logging.RequestLogger) (*types.Bill, error) {
	ids, err := c.extractor.Extract(ctx, conversation)
	if err != nil {
		return nil, err
	}

	if ids.HasNumber {
		rlog.Info("explicit bill number %d, numeric tier only", ids.BillNumber)
		return c.numeric.Resolve(ctx, conversation, ids.BillNumber)
	}

	if len(ids.Titles) > 0 {
		rlog.Info("trying %d candidate titles", len(ids.Titles))
		bill, err := c.title.Resolve(ctx, ids.Titles)
		if err != nil {
			return nil, err
		}
		if bill != nil {
			return bill, nil
		}
		rlog.Info("no exact title match, falling through to semantic search")
	}

	return c.semantic.Resolve(ctx, conversation, ids.Keywords)
}
