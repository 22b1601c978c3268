package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saihaj/DOGE-AI-sub000/internal/store"
)

func docChunk(id, text string) store.ChunkMatch {
	return store.ChunkMatch{
		ChunkID:  id,
		ParentID: "doc-" + id,
		Source:   store.SourceDocument,
		Text:     text,
		Distance: 0.3,
	}
}

func TestDocumentRetrieveConcatenatesRelevantChunks(t *testing.T) {
	st := &fakeStore{searchFn: func(opts store.SearchOptions) []store.ChunkMatch {
		return []store.ChunkMatch{docChunk("c1", "first finding"), docChunk("c2", "irrelevant aside"), docChunk("c3", "second finding")}
	}}
	llm := &fakeLLM{structuredReplies: []string{`{"chunkIds": ["c1", "c3"]}`}}
	r := NewDocumentRetriever(st, &fakeEmbedder{}, llm, testConfig())

	text, err := r.Retrieve(context.Background(), "what did the report find?")
	require.NoError(t, err)
	assert.Equal(t, "first finding\n\nsecond finding", text)
}

func TestDocumentRetrieveSearchNotSessionScoped(t *testing.T) {
	st := &fakeStore{}
	r := NewDocumentRetriever(st, &fakeEmbedder{}, &fakeLLM{}, testConfig())

	text, err := r.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, text)

	searches := st.recordedSearches()
	require.Len(t, searches, 1)
	assert.Equal(t, store.SourceDocument, searches[0].Source)
	assert.Empty(t, searches[0].Congress, "document search must not be congress-scoped")
	assert.Equal(t, 0.6, searches[0].MaxDistance)
}

func TestDocumentRetrieveNoHitsIsAbsent(t *testing.T) {
	llm := &fakeLLM{}
	r := NewDocumentRetriever(&fakeStore{}, &fakeEmbedder{}, llm, testConfig())

	text, err := r.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, llm.structuredCalls, "no filter call without hits")
}

func TestDocumentRetrieveFilterRejectsAll(t *testing.T) {
	st := &fakeStore{searchFn: func(opts store.SearchOptions) []store.ChunkMatch {
		return []store.ChunkMatch{docChunk("c1", "text")}
	}}
	llm := &fakeLLM{structuredReplies: []string{`{"chunkIds": []}`}}
	r := NewDocumentRetriever(st, &fakeEmbedder{}, llm, testConfig())

	text, err := r.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDocumentRetrieveEmptyQuestion(t *testing.T) {
	emb := &fakeEmbedder{}
	r := NewDocumentRetriever(&fakeStore{}, emb, &fakeLLM{}, testConfig())

	text, err := r.Retrieve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, emb.calls)
}

func TestDocumentRetrieveErrorPropagates(t *testing.T) {
	emb := &fakeEmbedder{err: assert.AnError}
	r := NewDocumentRetriever(&fakeStore{}, emb, &fakeLLM{}, testConfig())

	_, err := r.Retrieve(context.Background(), "q")
	require.Error(t, err)
}
