package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// InsertDocument adds or replaces a document record.
func (s *KnowledgeStore) InsertDocument(ctx context.Context, doc types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("knowledge store not initialized")
	}
	if doc.ID == "" {
		return fmt.Errorf("document ID required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (id, title, url, content, source)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.URL, doc.Content, doc.Source)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	logging.StoreDebug("Inserted document %s (%s)", doc.ID, doc.Title)
	return nil
}

// DocumentByID fetches a single document. Returns ErrNotFound when no
// document has the given ID.
func (s *KnowledgeStore) DocumentByID(ctx context.Context, id string) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}

	var doc types.Document
	var url, content, source sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, url, content, source FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Title, &url, &content, &source)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", id, err)
	}

	doc.URL = url.String
	doc.Content = content.String
	doc.Source = source.String
	return &doc, nil
}
