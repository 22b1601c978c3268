package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// InsertBill adds or replaces a bill record.
func (s *KnowledgeStore) InsertBill(ctx context.Context, bill types.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("knowledge store not initialized")
	}
	if bill.ID == "" {
		return fmt.Errorf("bill ID required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bills (id, number, congress, title, content, summary, introduced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, bill.ID, bill.Number, bill.Congress, bill.Title, bill.Content, bill.Summary, bill.IntroducedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	logging.StoreDebug("Inserted bill %s (number=%d, congress=%s)", bill.ID, bill.Number, bill.Congress)
	return nil
}

// BillByID fetches a single bill. Returns ErrNotFound when no bill has
// the given ID.
func (s *KnowledgeStore) BillByID(ctx context.Context, id string) (*types.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, number, congress, title, content, summary, introduced_at
		FROM bills WHERE id = ?
	`, id)

	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bill %s: %w", id, err)
	}
	return bill, nil
}

// BillsByNumber returns every bill carrying the given number across all
// congresses, in insertion order. Number lookups are deliberately not
// scoped to the active congress: a user asking about H.R. 1234 may mean
// any session's bill, and the disambiguation step decides which.
func (s *KnowledgeStore) BillsByNumber(ctx context.Context, number int) ([]types.Bill, error) {
	timer := logging.StartTimer(logging.CategoryStore, "KnowledgeStore.BillsByNumber")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, congress, title, content, summary, introduced_at
		FROM bills WHERE number = ?
		ORDER BY rowid
	`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills by number: %w", err)
	}
	defer rows.Close()

	return collectBills(rows)
}

// BillsByTitle returns bills whose title exactly equals the given title,
// ignoring case, capped at limit in insertion order. No substring or
// fuzzy matching: partial titles miss here and fall through to semantic
// search instead.
func (s *KnowledgeStore) BillsByTitle(ctx context.Context, title string, limit int) ([]types.Bill, error) {
	timer := logging.StartTimer(logging.CategoryStore, "KnowledgeStore.BillsByTitle")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, congress, title, content, summary, introduced_at
		FROM bills WHERE title = ? COLLATE NOCASE
		ORDER BY rowid
		LIMIT ?
	`, title, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills by title: %w", err)
	}
	defer rows.Close()

	return collectBills(rows)
}

// BillsByIDs fetches the bills for the given IDs, in insertion order.
// Missing IDs are silently absent from the result.
func (s *KnowledgeStore) BillsByIDs(ctx context.Context, ids []string) ([]types.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("knowledge store not initialized")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, congress, title, content, summary, introduced_at
		FROM bills WHERE id IN (`+placeholders+`)
		ORDER BY rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills by ids: %w", err)
	}
	defer rows.Close()

	return collectBills(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*types.Bill, error) {
	var bill types.Bill
	var content, summary sql.NullString
	var introducedAt sql.NullTime

	if err := row.Scan(&bill.ID, &bill.Number, &bill.Congress, &bill.Title, &content, &summary, &introducedAt); err != nil {
		return nil, err
	}
	bill.Content = content.String
	bill.Summary = summary.String
	bill.IntroducedAt = introducedAt.Time
	return &bill, nil
}

func collectBills(rows *sql.Rows) ([]types.Bill, error) {
	var bills []types.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			logging.Get(logging.CategoryStore).Warn("Failed to scan bill row: %v", err)
			continue
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}
