package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

func TestNormalizeBillNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"H.R. 1234", 1234, true},
		{"HR1234", 1234, true},
		{"h.r 1234", 1234, true},
		{"S. 1234", 1234, true},
		{"s1234", 1234, true},
		{"1234", 1234, true},
		{"H.J.Res. 7", 7, true},
		{"  HR 8127  ", 8127, true},
		{"Beavers Act", 0, false},
		{"", 0, false},
		{"HR", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeBillNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractParsesStructuredOutput(t *testing.T) {
	llm := &fakeLLM{structuredReplies: []string{
		`{"billNumber": "H.R. 8127", "titles": ["Example Appropriations Act"], "keywords": ["pilot program funding"]}`,
	}}

	ids, err := NewExtractor(llm).Extract(context.Background(), userTurn("Why does H.R. 8127 still fund the pilot program?"))
	require.NoError(t, err)

	assert.True(t, ids.HasNumber)
	assert.Equal(t, 8127, ids.BillNumber)
	assert.Equal(t, []string{"Example Appropriations Act"}, ids.Titles)
	assert.Equal(t, []string{"pilot program funding"}, ids.Keywords)
	assert.Equal(t, 1, llm.structuredCalls)
}

func TestExtractEmptyConversation(t *testing.T) {
	llm := &fakeLLM{}
	_, err := NewExtractor(llm).Extract(context.Background(), nil)

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNoExtraction, reason)
	assert.Zero(t, llm.structuredCalls, "no LLM call for an empty conversation")
}

func TestExtractNothingExtractable(t *testing.T) {
	llm := &fakeLLM{structuredReplies: []string{`{"billNumber": "", "titles": [], "keywords": []}`}}
	_, err := NewExtractor(llm).Extract(context.Background(), userTurn("hello there"))

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNoExtraction, reason)
}

func TestExtractMalformedOutput(t *testing.T) {
	llm := &fakeLLM{structuredReplies: []string{"I could not find anything."}}
	_, err := NewExtractor(llm).Extract(context.Background(), userTurn("what's new"))

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNoExtraction, reason)
}

func TestExtractCodeFencedJSON(t *testing.T) {
	llm := &fakeLLM{structuredReplies: []string{
		"```json\n{\"billNumber\": \"\", \"titles\": [], \"keywords\": [\"farm subsidies\"]}\n```",
	}}
	ids, err := NewExtractor(llm).Extract(context.Background(), userTurn("the farm subsidy bill"))
	require.NoError(t, err)

	assert.False(t, ids.HasNumber)
	assert.Equal(t, []string{"farm subsidies"}, ids.Keywords)
}

func TestExtractInvalidNumberIgnored(t *testing.T) {
	// A non-numeric billNumber value is dropped rather than failing.
	llm := &fakeLLM{structuredReplies: []string{
		`{"billNumber": "the big one", "titles": [], "keywords": ["energy"]}`,
	}}
	ids, err := NewExtractor(llm).Extract(context.Background(), userTurn("that energy bill"))
	require.NoError(t, err)

	assert.False(t, ids.HasNumber)
	assert.Equal(t, []string{"energy"}, ids.Keywords)
}

func TestExtractPropagatesTransportError(t *testing.T) {
	// Empty reply queue makes the fake return an error.
	llm := &fakeLLM{}
	_, err := NewExtractor(llm).Extract(context.Background(), []types.ConversationMessage{{Role: types.RoleUser, Content: "hi"}})
	require.Error(t, err)

	_, ok := ReasonOf(err)
	assert.False(t, ok, "transport errors must not carry a taxonomy reason")
}
