// Package store implements the SQLite-backed knowledge store holding
// bills, documents, and their embedded chunks. Vector search uses the
// sqlite-vec extension when available and falls back to brute-force
// cosine scanning when it is not.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/saihaj/DOGE-AI-sub000/internal/embedding"
	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ChunkMatch is a vector search hit joined with its chunk metadata.
type ChunkMatch struct {
	ChunkID  string
	ParentID string
	Source   string
	Congress string
	Text     string
	Distance float64
}

// KnowledgeStore manages bills, documents, and embedded chunks in a
// local SQLite database.
type KnowledgeStore struct {
	db          *sql.DB
	embedEngine embedding.Engine
	dbPath      string
	mu          sync.RWMutex
	vecReady    bool
}

// NewKnowledgeStore creates or opens the knowledge store.
// Creates the database and schema if it doesn't exist.
func NewKnowledgeStore(dbPath string, engine embedding.Engine) (*KnowledgeStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewKnowledgeStore")
	defer timer.Stop()

	if dbPath == "" {
		return nil, fmt.Errorf("database path required")
	}

	logging.Store("Initializing knowledge store at: %s", dbPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to create directory %s: %v", dir, err)
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open knowledge database: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		logging.Get(logging.CategoryStore).Error("Failed to ping knowledge database: %v", err)
		return nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	store := &KnowledgeStore{
		db:          db,
		embedEngine: engine,
		dbPath:      dbPath,
	}

	if err := store.initializeSchema(); err != nil {
		db.Close()
		logging.Get(logging.CategoryStore).Error("Failed to initialize knowledge schema: %v", err)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Knowledge store initialized successfully")
	return store, nil
}

// initializeSchema creates the required tables.
func (s *KnowledgeStore) initializeSchema() error {
	timer := logging.StartTimer(logging.CategoryStore, "KnowledgeStore.initializeSchema")
	defer timer.Stop()

	schema := `
	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL,
		congress TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		summary TEXT,
		introduced_at DATETIME,
		UNIQUE(number, congress)
	);
	CREATE INDEX IF NOT EXISTS idx_bills_number ON bills(number);
	CREATE INDEX IF NOT EXISTS idx_bills_title ON bills(title COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT,
		content TEXT,
		source TEXT
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL,
		source TEXT NOT NULL,
		congress TEXT,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source, congress);
	CREATE INDEX IF NOT EXISTS idx_chunks_parent ON chunks(parent_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	// sqlite-vec virtual table for ANN search over chunk embeddings
	dims := 768
	if s.embedEngine != nil {
		dims = s.embedEngine.Dimensions()
	}

	vecTable := fmt.Sprintf(`
	CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
		embedding float[%d],
		chunk_id TEXT
	);
	`, dims)

	if _, err := s.db.Exec(vecTable); err != nil {
		// Don't fail - vec extension might not be available
		logging.Get(logging.CategoryStore).Warn("Failed to create vec_chunks table (sqlite-vec may not be available): %v", err)
	} else {
		s.vecReady = true
		logging.StoreDebug("sqlite-vec table created with %d dimensions", dims)
	}

	return nil
}

// GetStats returns row counts for monitoring and the stats command.
func (s *KnowledgeStore) GetStats() (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}

	stats := map[string]interface{}{
		"db_path":   s.dbPath,
		"vec_ready": s.vecReady,
	}

	for _, table := range []string{"bills", "documents", "chunks"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}

	return stats, nil
}

// Close closes the database connection.
func (s *KnowledgeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.Store("Closing knowledge store")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logging.Get(logging.CategoryStore).Error("Failed to close knowledge database: %v", err)
			return err
		}
		s.db = nil
	}

	return nil
}
