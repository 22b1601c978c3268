package resolve

import (
	"context"
	"fmt"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// TitleResolver matches candidate titles against stored titles by
// exact, case-insensitive equality. No substring or fuzzy matching: a
// partial title misses here and falls through to semantic search.
type TitleResolver struct {
	store BillStore
	limit int
}

// NewTitleResolver creates a title resolver. limit caps rows per title
// lookup.
func NewTitleResolver(store BillStore, limit int) *TitleResolver {
	if limit <= 0 {
		limit = 5
	}
	return &TitleResolver{store: store, limit: limit}
}

// Resolve tries each candidate title in order and returns the first
// bill whose stored title matches exactly. A nil bill with nil error
// means no title matched and the chain should fall through.
//
// When several stored bills share one exact title, the first row the
// store returns wins. There is no secondary ranking by recency or
// relevance; a title collision across congresses silently picks the
// oldest stored row. Known limitation.
func (r *TitleResolver) Resolve(ctx context.Context, titles []string) (*types.Bill, error) {
	timer := logging.StartTimer(logging.CategoryResolution, "TitleResolver.Resolve")
	defer timer.Stop()

	for _, title := range titles {
		bills, err := r.store.BillsByTitle(ctx, title, r.limit)
		if err != nil {
			return nil, fmt.Errorf("title lookup failed: %w", err)
		}
		if len(bills) > 0 {
			if len(bills) > 1 {
				logging.Resolution("Title %q matched %d bills, using first stored row", title, len(bills))
			}
			return &bills[0], nil
		}
	}

	logging.Resolution("No exact title match among %d candidates", len(titles))
	return nil, nil
}
