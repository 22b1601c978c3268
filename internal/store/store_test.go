package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

func newTestStore(t *testing.T) *KnowledgeStore {
	t.Helper()
	s, err := NewKnowledgeStore(filepath.Join(t.TempDir(), "knowledge.db"), nil)
	if err != nil {
		t.Fatalf("NewKnowledgeStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBill(id string, number int, congress, title string) types.Bill {
	return types.Bill{
		ID:           id,
		Number:       number,
		Congress:     congress,
		Title:        title,
		Content:      "text of " + title,
		Summary:      "summary of " + title,
		IntroducedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestBillByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testBill("bill-1", 1234, "119", "Border Security Act")
	if err := s.InsertBill(ctx, want); err != nil {
		t.Fatalf("InsertBill: %v", err)
	}

	got, err := s.BillByID(ctx, "bill-1")
	if err != nil {
		t.Fatalf("BillByID: %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("bill mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.BillByID(ctx, "no-such-bill"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing bill: got %v, want ErrNotFound", err)
	}
}

func TestBillsByNumberSpansCongresses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Same number in three congresses, plus an unrelated number.
	for _, b := range []types.Bill{
		testBill("bill-117", 1234, "117", "Old Act"),
		testBill("bill-118", 1234, "118", "Middle Act"),
		testBill("bill-119", 1234, "119", "New Act"),
		testBill("bill-other", 999, "119", "Unrelated Act"),
	} {
		if err := s.InsertBill(ctx, b); err != nil {
			t.Fatalf("InsertBill: %v", err)
		}
	}

	bills, err := s.BillsByNumber(ctx, 1234)
	if err != nil {
		t.Fatalf("BillsByNumber: %v", err)
	}
	if len(bills) != 3 {
		t.Fatalf("got %d bills, want 3 across congresses", len(bills))
	}
	for i, wantID := range []string{"bill-117", "bill-118", "bill-119"} {
		if bills[i].ID != wantID {
			t.Errorf("bills[%d].ID = %s, want %s", i, bills[i].ID, wantID)
		}
	}

	bills, err = s.BillsByNumber(ctx, 5555)
	if err != nil {
		t.Fatalf("BillsByNumber: %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("got %d bills for unknown number, want 0", len(bills))
	}
}

func TestBillsByTitleExactCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []types.Bill{
		testBill("bill-1", 10, "119", "Lower Energy Costs Act"),
		testBill("bill-2", 11, "118", "lower energy costs act"),
		testBill("bill-3", 12, "119", "Lower Energy Costs Act of 2025"),
	} {
		if err := s.InsertBill(ctx, b); err != nil {
			t.Fatalf("InsertBill: %v", err)
		}
	}

	bills, err := s.BillsByTitle(ctx, "LOWER ENERGY COSTS ACT", 5)
	if err != nil {
		t.Fatalf("BillsByTitle: %v", err)
	}
	// Exact equality only: the "of 2025" variant must not match.
	if len(bills) != 2 {
		t.Fatalf("got %d bills, want 2", len(bills))
	}
	if bills[0].ID != "bill-1" || bills[1].ID != "bill-2" {
		t.Errorf("unexpected order: %s, %s", bills[0].ID, bills[1].ID)
	}
}

func TestBillsByTitleRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		b := testBill(fmt.Sprintf("bill-%d", i), 100+i, fmt.Sprintf("%d", 112+i), "Recurring Act")
		if err := s.InsertBill(ctx, b); err != nil {
			t.Fatalf("InsertBill: %v", err)
		}
	}

	bills, err := s.BillsByTitle(ctx, "Recurring Act", 5)
	if err != nil {
		t.Fatalf("BillsByTitle: %v", err)
	}
	if len(bills) != 5 {
		t.Fatalf("got %d bills, want cap of 5", len(bills))
	}
	// First stored rows win.
	if bills[0].ID != "bill-0" {
		t.Errorf("bills[0].ID = %s, want bill-0", bills[0].ID)
	}
}

func TestBillsByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []types.Bill{
		testBill("a", 1, "119", "A"),
		testBill("b", 2, "119", "B"),
	} {
		if err := s.InsertBill(ctx, b); err != nil {
			t.Fatalf("InsertBill: %v", err)
		}
	}

	bills, err := s.BillsByIDs(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BillsByIDs: %v", err)
	}
	if len(bills) != 2 {
		t.Errorf("got %d bills, want 2 (missing IDs skipped)", len(bills))
	}

	bills, err = s.BillsByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("BillsByIDs(nil): %v", err)
	}
	if bills != nil {
		t.Errorf("got %v for empty id set, want nil", bills)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := types.Document{ID: "doc-1", Title: "GAO Report", URL: "https://example.gov/r1", Content: "findings", Source: "gao"}
	if err := s.InsertDocument(ctx, want); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	got, err := s.DocumentByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("DocumentByID: %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.DocumentByID(ctx, "doc-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing document: got %v, want ErrNotFound", err)
	}
}

func seedChunk(t *testing.T, s *KnowledgeStore, id, parent, source, congress string, vec []float32) {
	t.Helper()
	err := s.InsertChunk(context.Background(), types.Chunk{
		ID:        id,
		ParentID:  parent,
		Source:    source,
		Congress:  congress,
		Text:      "chunk " + id,
		Embedding: vec,
	})
	if err != nil {
		t.Fatalf("InsertChunk(%s): %v", id, err)
	}
}

func TestSearchChunksScopedToCongress(t *testing.T) {
	s := newTestStore(t)

	// All chunks identical to the query; only congress differs.
	query := []float32{1, 0, 0}
	seedChunk(t, s, "c1", "bill-a", SourceBill, "119", query)
	seedChunk(t, s, "c2", "bill-b", SourceBill, "118", query)
	seedChunk(t, s, "c3", "doc-a", SourceDocument, "", query)

	matches, err := s.SearchChunks(context.Background(), query, SearchOptions{
		Source:      SourceBill,
		Congress:    "119",
		MaxDistance: 0.6,
		Limit:       5,
	})
	if err != nil {
		t.Fatalf("SearchChunks: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 scoped to congress 119", len(matches))
	}
	if matches[0].ParentID != "bill-a" {
		t.Errorf("ParentID = %s", matches[0].ParentID)
	}
}

func TestSearchChunksDistanceThreshold(t *testing.T) {
	s := newTestStore(t)

	query := []float32{1, 0}
	seedChunk(t, s, "near", "bill-a", SourceBill, "119", []float32{1, 0.1})
	seedChunk(t, s, "far", "bill-b", SourceBill, "119", []float32{0, 1})

	matches, err := s.SearchChunks(context.Background(), query, SearchOptions{
		Source:      SourceBill,
		Congress:    "119",
		MaxDistance: 0.6,
		Limit:       5,
	})
	if err != nil {
		t.Fatalf("SearchChunks: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 within threshold", len(matches))
	}
	if matches[0].ChunkID != "near" {
		t.Errorf("ChunkID = %s, want near", matches[0].ChunkID)
	}
}

func TestSearchChunksParentFilterAndLimit(t *testing.T) {
	s := newTestStore(t)

	query := []float32{1, 0}
	for i := 0; i < 4; i++ {
		seedChunk(t, s, fmt.Sprintf("a%d", i), "bill-a", SourceBill, "119", []float32{1, float32(i) * 0.01})
	}
	seedChunk(t, s, "b0", "bill-b", SourceBill, "119", query)

	matches, err := s.SearchChunks(context.Background(), query, SearchOptions{
		Source:      SourceBill,
		Congress:    "119",
		ParentIDs:   []string{"bill-a"},
		MaxDistance: 0.6,
		Limit:       3,
	})
	if err != nil {
		t.Fatalf("SearchChunks: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want limit of 3", len(matches))
	}
	for _, m := range matches {
		if m.ParentID != "bill-a" {
			t.Errorf("match %s has parent %s, want bill-a", m.ChunkID, m.ParentID)
		}
	}
	// Nearest first.
	if matches[0].ChunkID != "a0" {
		t.Errorf("matches[0] = %s, want a0", matches[0].ChunkID)
	}
}

func TestSearchChunksRequiresSource(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SearchChunks(context.Background(), []float32{1}, SearchOptions{}); err == nil {
		t.Fatal("expected error without source")
	}
}

func TestBlobRoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}
	got := decodeFloat32SliceFromBlob(encodeFloat32SliceToBlob(vec))
	if diff := cmp.Diff(vec, got); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}

	if decodeFloat32SliceFromBlob(nil) != nil {
		t.Error("empty blob should decode to nil")
	}
	if decodeFloat32SliceFromBlob([]byte{1, 2, 3}) != nil {
		t.Error("truncated blob should decode to nil")
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertBill(ctx, testBill("bill-1", 1, "119", "Act")); err != nil {
		t.Fatalf("InsertBill: %v", err)
	}
	seedChunk(t, s, "c1", "bill-1", SourceBill, "119", []float32{1})

	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats["bills"] != 1 {
		t.Errorf("bills = %v, want 1", stats["bills"])
	}
	if stats["chunks"] != 1 {
		t.Errorf("chunks = %v, want 1", stats["chunks"])
	}
}
