package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/saihaj/DOGE-AI-sub000/internal/embedding"
	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// Chunk sources.
const (
	SourceBill     = "bill"
	SourceDocument = "document"
)

// SearchOptions narrows a chunk vector search.
type SearchOptions struct {
	// Source selects bill or document chunks. Required.
	Source string

	// Congress restricts bill chunks to one congress. Empty means any.
	Congress string

	// ParentIDs restricts hits to chunks of the given parents.
	// Empty means any parent.
	ParentIDs []string

	// MaxDistance is the cosine distance cutoff. Hits farther than this
	// are discarded.
	MaxDistance float64

	// Limit caps the number of hits returned.
	Limit int
}

// InsertChunk adds a pre-embedded chunk. The vec_chunks shadow row is
// best-effort: when the vec extension is unavailable the chunk is still
// searchable through the brute-force path.
func (s *KnowledgeStore) InsertChunk(ctx context.Context, chunk types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("knowledge store not initialized")
	}
	if chunk.ID == "" || chunk.ParentID == "" {
		return fmt.Errorf("chunk ID and parent ID required")
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("chunk embedding required")
	}

	blob := encodeFloat32SliceToBlob(chunk.Embedding)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, parent_id, source, congress, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`, chunk.ID, chunk.ParentID, chunk.Source, chunk.Congress, chunk.Text, blob)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}

	if s.vecReady {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO vec_chunks (embedding, chunk_id) VALUES (?, ?)
		`, blob, chunk.ID); err != nil {
			logging.Get(logging.CategoryStore).Warn("Failed to insert vec_chunks row for %s: %v", chunk.ID, err)
		}
	}

	return nil
}

// SearchChunks finds the chunks nearest to the query embedding, filtered
// by the given options. Uses sqlite-vec ANN search when available and
// falls back to a brute-force cosine scan otherwise.
func (s *KnowledgeStore) SearchChunks(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]ChunkMatch, error) {
	timer := logging.StartTimer(logging.CategoryStore, "KnowledgeStore.SearchChunks")
	defer timer.Stop()

	if opts.Source == "" {
		return nil, fmt.Errorf("search source required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}

	logging.StoreDebug("Searching chunks: source=%s, congress=%s, parents=%d, limit=%d, max_distance=%.2f",
		opts.Source, opts.Congress, len(opts.ParentIDs), opts.Limit, opts.MaxDistance)

	if s.vecReady {
		matches, err := s.searchVec(ctx, queryEmbedding, opts)
		if err == nil {
			return matches, nil
		}
		logging.StoreDebug("Falling back to brute-force search: %v", err)
	}

	return s.searchBruteForce(ctx, queryEmbedding, opts)
}

// searchVec performs ANN search using sqlite-vec.
func (s *KnowledgeStore) searchVec(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]ChunkMatch, error) {
	queryBlob := encodeFloat32SliceToBlob(queryEmbedding)

	where, args := chunkFilter(opts)
	args = append([]interface{}{queryBlob}, args...)
	args = append(args, opts.Limit)

	query := `
		SELECT
			c.id,
			c.parent_id,
			c.source,
			c.congress,
			c.text,
			vec_distance_cosine(vc.embedding, ?) AS distance
		FROM vec_chunks vc
		JOIN chunks c ON vc.chunk_id = c.id
		WHERE ` + where + `
		ORDER BY distance ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vec search failed: %w", err)
	}
	defer rows.Close()

	var matches []ChunkMatch
	for rows.Next() {
		var match ChunkMatch
		var congress sql.NullString
		if err := rows.Scan(&match.ChunkID, &match.ParentID, &match.Source, &congress, &match.Text, &match.Distance); err != nil {
			logging.Get(logging.CategoryStore).Warn("Failed to scan chunk row: %v", err)
			continue
		}
		match.Congress = congress.String
		if match.Distance > opts.MaxDistance {
			continue
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// searchBruteForce scans all candidate chunks and ranks them by cosine
// distance in Go. Used when sqlite-vec is not available.
func (s *KnowledgeStore) searchBruteForce(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]ChunkMatch, error) {
	where, args := chunkFilter(opts)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.parent_id, c.source, c.congress, c.text, c.embedding
		FROM chunks c
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var matches []ChunkMatch
	for rows.Next() {
		var match ChunkMatch
		var congress sql.NullString
		var blob []byte
		if err := rows.Scan(&match.ChunkID, &match.ParentID, &match.Source, &congress, &match.Text, &blob); err != nil {
			continue
		}
		match.Congress = congress.String

		chunkEmbedding := decodeFloat32SliceFromBlob(blob)
		if len(chunkEmbedding) == 0 {
			continue
		}

		distance, err := embedding.CosineDistance(queryEmbedding, chunkEmbedding)
		if err != nil {
			continue
		}
		if distance > opts.MaxDistance {
			continue
		}
		match.Distance = distance
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by distance ascending
	for i := 0; i < len(matches); i++ {
		for j := i + 1; j < len(matches); j++ {
			if matches[j].Distance < matches[i].Distance {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}

	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	return matches, nil
}

// chunkFilter builds the shared WHERE clause for both search paths.
func chunkFilter(opts SearchOptions) (string, []interface{}) {
	clauses := []string{"c.source = ?"}
	args := []interface{}{opts.Source}

	if opts.Congress != "" {
		clauses = append(clauses, "c.congress = ?")
		args = append(args, opts.Congress)
	}

	if len(opts.ParentIDs) > 0 {
		placeholders := strings.Repeat("?,", len(opts.ParentIDs)-1) + "?"
		clauses = append(clauses, "c.parent_id IN ("+placeholders+")")
		for _, id := range opts.ParentIDs {
			args = append(args, id)
		}
	}

	return strings.Join(clauses, " AND "), args
}
