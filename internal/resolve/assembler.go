package resolve

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// Assembler runs the bill resolution chain and the document retriever
// concurrently and combines their results. It is the boundary where
// every taxonomy reason collapses to "absent" for the caller: the
// Assembler never returns an error, but the reason stays visible in
// the logs so operators can tell a relevance miss from a data problem.
type Assembler struct {
	chain *Chain
	docs  *DocumentRetriever
}

// NewAssembler creates a context assembler.
func NewAssembler(chain *Chain, docs *DocumentRetriever) *Assembler {
	return &Assembler{chain: chain, docs: docs}
}

// Assemble resolves bill and document context for the conversation.
// The two branches are fully independent: a failure in one never
// affects the other.
func (a *Assembler) Assemble(ctx context.Context, conversation []types.ConversationMessage, focalQuestion string) types.ContextBundle {
	requestID := uuid.NewString()[:8]
	rlog := logging.WithRequestID(logging.CategoryAssembler, requestID)

	timer := logging.StartTimer(logging.CategoryAssembler, "Assembler.Assemble")
	defer timer.Stop()

	var bundle types.ContextBundle
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		bill, err := a.chain.Resolve(ctx, conversation, rlog)
		if err != nil {
			if reason, ok := ReasonOf(err); ok {
				rlog.Info("bill branch concluded without a match: %s", reason)
			} else {
				rlog.Error("bill branch failed: %v", err)
			}
			return
		}
		rlog.Info("bill branch resolved %s", bill.ID)
		bundle.Bill = bill
	}()

	go func() {
		defer wg.Done()
		text, err := a.docs.Retrieve(ctx, focalQuestion)
		if err != nil {
			rlog.Error("document branch failed: %v", err)
			return
		}
		if text == "" {
			rlog.Info("document branch found nothing relevant")
			return
		}
		rlog.Info("document branch assembled %d bytes", len(text))
		bundle.Documents = text
	}()

	wg.Wait()
	return bundle
}
