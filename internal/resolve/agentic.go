package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/store"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// NoExactMatchSentinel is the token the refinement loop emits when it
// cannot settle on exactly one bill.
const NoExactMatchSentinel = "NO_EXACT_MATCH"

// searchBillsTool lets the loop run narrower similarity queries. The
// tool is hard-restricted to the already-classified candidate set and
// the active congress; the model cannot widen the search.
var searchBillsTool = types.ToolDefinition{
	Name:        "search_bills",
	Description: "Run a focused similarity search over the remaining candidate bills. Returns matching excerpts with their bill ids.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Short phrase describing what to look for",
			},
		},
		"required": []string{"query"},
	},
}

// refine narrows an ambiguous candidate set to one bill through a
// bounded loop of LLM-directed tool calls. The loop is an explicit
// state machine with a step counter and two exits: a single resolved
// id, or the step cap, which yields the no-match sentinel.
func (r *SemanticResolver) refine(ctx context.Context, conversation []types.ConversationMessage, pool []store.ChunkMatch, candidateIDs []string) (*types.Bill, error) {
	timer := logging.StartTimer(logging.CategoryResolution, "SemanticResolver.refine")
	defer timer.Stop()

	allowed := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		allowed[id] = true
	}

	var transcript strings.Builder
	transcript.WriteString("Conversation:\n")
	transcript.WriteString(renderConversation(conversation))
	transcript.WriteString("\nRemaining candidate bills: ")
	transcript.WriteString(strings.Join(candidateIDs, ", "))
	transcript.WriteString("\n\nStarting excerpts:\n")
	for _, chunk := range pool {
		if allowed[chunk.ParentID] {
			fmt.Fprintf(&transcript, "- bill id: %s | excerpt: %s\n", chunk.ParentID, chunk.Text)
		}
	}

	for step := 0; step < r.cfg.AgentStepCap; step++ {
		resp, err := r.client.CompleteWithTools(ctx, agentSystemPrompt, transcript.String(), []types.ToolDefinition{searchBillsTool})
		if err != nil {
			return nil, fmt.Errorf("refinement step %d failed: %w", step, err)
		}

		if len(resp.ToolCalls) > 0 {
			for _, call := range resp.ToolCalls {
				observation := r.runSearchTool(ctx, call, candidateIDs)
				fmt.Fprintf(&transcript, "\nsearch_bills(%v):\n%s\n", call.Input["query"], observation)
			}
			continue
		}

		return r.settle(ctx, resp.Text, allowed)
	}

	logging.Resolution("Refinement loop hit step cap (%d)", r.cfg.AgentStepCap)
	return nil, NoMatch(ReasonNoExactMatch)
}

// runSearchTool executes one search_bills call. Tool failures become
// observations rather than errors so a flaky query cannot abort the
// loop; the model just sees the miss.
func (r *SemanticResolver) runSearchTool(ctx context.Context, call types.ToolCall, candidateIDs []string) string {
	query, _ := call.Input["query"].(string)
	if query == "" {
		return "error: empty query"
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logging.Get(logging.CategoryResolution).Warn("Refinement embed failed: %v", err)
		return "error: search unavailable"
	}

	hits, err := r.store.SearchChunks(ctx, vec, store.SearchOptions{
		Source:      store.SourceBill,
		Congress:    r.cfg.ActiveCongress,
		ParentIDs:   candidateIDs,
		MaxDistance: r.cfg.DistanceThreshold,
		Limit:       r.cfg.CandidateLimit,
	})
	if err != nil {
		logging.Get(logging.CategoryResolution).Warn("Refinement search failed: %v", err)
		return "error: search unavailable"
	}
	if len(hits) == 0 {
		return "no matches"
	}

	var b strings.Builder
	for _, hit := range hits {
		fmt.Fprintf(&b, "- bill id: %s | distance: %.3f | excerpt: %s\n", hit.ParentID, hit.Distance, hit.Text)
	}
	return b.String()
}

// settle interprets the loop's final text output. Anything that is not
// a known candidate id is treated as the no-match sentinel.
func (r *SemanticResolver) settle(ctx context.Context, text string, allowed map[string]bool) (*types.Bill, error) {
	answer := cleanIDReply(text)

	if answer == "" || strings.EqualFold(answer, NoExactMatchSentinel) {
		logging.Resolution("Refinement loop concluded no exact match")
		return nil, NoMatch(ReasonNoExactMatch)
	}

	if !allowed[answer] {
		logging.Resolution("Refinement loop emitted unknown answer %q", answer)
		return nil, NoMatch(ReasonNoExactMatch)
	}

	bill, err := r.store.BillByID(ctx, answer)
	if errors.Is(err, store.ErrNotFound) {
		logging.Resolution("Refined id %s is not stored", answer)
		return nil, NoMatch(ReasonNoExactMatch)
	}
	if err != nil {
		return nil, fmt.Errorf("bill fetch failed: %w", err)
	}

	logging.Resolution("Refinement loop resolved %s", answer)
	return bill, nil
}
