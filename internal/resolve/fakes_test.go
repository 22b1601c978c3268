package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/saihaj/DOGE-AI-sub000/internal/store"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// fakeLLM is a scriptable LLM client. Each completion shape pops from
// its own queue, so a test can script extraction, disambiguation,
// classification, and tool steps independently. Call counts are the
// hooks for the cost-saving assertions.
type fakeLLM struct {
	mu sync.Mutex

	structuredReplies []string
	systemReplies     []string
	toolReplies       []*types.LLMToolResponse

	structuredCalls int
	systemCalls     int
	toolCalls       int

	lastSystemPrompt string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systemCalls++
	f.lastSystemPrompt = systemPrompt
	if len(f.systemReplies) == 0 {
		return "", fmt.Errorf("fakeLLM: no scripted system reply")
	}
	reply := f.systemReplies[0]
	f.systemReplies = f.systemReplies[1:]
	return reply, nil
}

func (f *fakeLLM) CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structuredCalls++
	if len(f.structuredReplies) == 0 {
		return "", fmt.Errorf("fakeLLM: no scripted structured reply")
	}
	reply := f.structuredReplies[0]
	f.structuredReplies = f.structuredReplies[1:]
	return reply, nil
}

func (f *fakeLLM) CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toolCalls++
	if len(f.toolReplies) == 0 {
		return nil, fmt.Errorf("fakeLLM: no scripted tool reply")
	}
	reply := f.toolReplies[0]
	f.toolReplies = f.toolReplies[1:]
	return reply, nil
}

// textReply builds a tool-loop response carrying only text.
func textReply(text string) *types.LLMToolResponse {
	return &types.LLMToolResponse{Text: text, StopReason: "stop"}
}

// searchReply builds a tool-loop response invoking search_bills.
func searchReply(query string) *types.LLMToolResponse {
	return &types.LLMToolResponse{
		StopReason: "tool_calls",
		ToolCalls: []types.ToolCall{{
			ID:    "call_1",
			Name:  "search_bills",
			Input: map[string]interface{}{"query": query},
		}},
	}
}

// fakeStore is an in-memory BillStore/DocumentStore that records every
// vector query it receives.
type fakeStore struct {
	mu    sync.Mutex
	bills []types.Bill

	// searchFn answers SearchChunks. Nil means no hits.
	searchFn func(opts store.SearchOptions) []store.ChunkMatch

	searchOpts   []store.SearchOptions
	titleQueries []string
	errOnAll     error
}

func (f *fakeStore) BillsByNumber(ctx context.Context, number int) ([]types.Bill, error) {
	if f.errOnAll != nil {
		return nil, f.errOnAll
	}
	var out []types.Bill
	for _, b := range f.bills {
		if b.Number == number {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) BillsByTitle(ctx context.Context, title string, limit int) ([]types.Bill, error) {
	f.mu.Lock()
	f.titleQueries = append(f.titleQueries, title)
	f.mu.Unlock()
	if f.errOnAll != nil {
		return nil, f.errOnAll
	}
	var out []types.Bill
	for _, b := range f.bills {
		if strings.EqualFold(b.Title, title) {
			out = append(out, b)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) BillByID(ctx context.Context, id string) (*types.Bill, error) {
	if f.errOnAll != nil {
		return nil, f.errOnAll
	}
	for i := range f.bills {
		if f.bills[i].ID == id {
			return &f.bills[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) BillsByIDs(ctx context.Context, ids []string) ([]types.Bill, error) {
	if f.errOnAll != nil {
		return nil, f.errOnAll
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []types.Bill
	for _, b := range f.bills {
		if want[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchChunks(ctx context.Context, queryEmbedding []float32, opts store.SearchOptions) ([]store.ChunkMatch, error) {
	f.mu.Lock()
	f.searchOpts = append(f.searchOpts, opts)
	f.mu.Unlock()
	if f.errOnAll != nil {
		return nil, f.errOnAll
	}
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(opts), nil
}

func (f *fakeStore) recordedSearches() []store.SearchOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.SearchOptions(nil), f.searchOpts...)
}

// fakeEmbedder returns a constant vector.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func userTurn(content string) []types.ConversationMessage {
	return []types.ConversationMessage{{Role: types.RoleUser, Content: content}}
}
