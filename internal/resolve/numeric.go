package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// NumericResolver resolves an explicit bill number to a canonical bill.
// The lookup deliberately spans all congresses: a user may reference a
// historical bill, and which session they mean is part of what needs
// disambiguating.
type NumericResolver struct {
	store  BillStore
	client types.LLMClient
}

// NewNumericResolver creates a numeric resolver.
func NewNumericResolver(store BillStore, client types.LLMClient) *NumericResolver {
	return &NumericResolver{store: store, client: client}
}

// Resolve looks up the bill number and disambiguates duplicates.
//
// A single match returns immediately with no LLM call. Multiple
// matches go to an LLM disambiguation step that must pick one of the
// listed candidates, preferring topical relevance and defaulting to
// the most recently introduced.
func (r *NumericResolver) Resolve(ctx context.Context, conversation []types.ConversationMessage, number int) (*types.Bill, error) {
	timer := logging.StartTimer(logging.CategoryResolution, "NumericResolver.Resolve")
	defer timer.Stop()

	bills, err := r.store.BillsByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("bill number lookup failed: %w", err)
	}

	switch len(bills) {
	case 0:
		logging.Resolution("No bill with number %d", number)
		return nil, NoMatch(ReasonBillNotFound)
	case 1:
		// Exactly one match: return it directly, no disambiguation call.
		logging.Resolution("Bill number %d resolved uniquely to %s", number, bills[0].ID)
		return &bills[0], nil
	}

	logging.Resolution("Bill number %d matches %d bills, disambiguating", number, len(bills))
	return r.disambiguate(ctx, conversation, bills)
}

// disambiguate asks the LLM to pick one bill from the duplicate set.
func (r *NumericResolver) disambiguate(ctx context.Context, conversation []types.ConversationMessage, bills []types.Bill) (*types.Bill, error) {
	var b strings.Builder
	b.WriteString("Candidate bills:\n")
	for _, bill := range bills {
		fmt.Fprintf(&b, "- id: %s | congress: %s | introduced: %s | title: %s\n  summary: %s\n",
			bill.ID, bill.Congress, bill.IntroducedAt.Format("2006-01-02"), bill.Title, bill.Summary)
	}
	b.WriteString("\nConversation:\n")
	b.WriteString(renderConversation(conversation))

	reply, err := r.client.CompleteWithSystem(ctx, disambiguationSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("disambiguation failed: %w", err)
	}

	chosen := cleanIDReply(reply)
	if chosen == "" {
		logging.Resolution("Disambiguation produced no id")
		return nil, NoMatch(ReasonNoBillIDFound)
	}

	for i := range bills {
		if bills[i].ID == chosen {
			logging.Resolution("Disambiguation chose %s", chosen)
			return &bills[i], nil
		}
	}

	// The model can echo an id inside a longer sentence. Scan for a
	// known candidate id before giving up.
	for i := range bills {
		if strings.Contains(reply, bills[i].ID) {
			logging.Resolution("Disambiguation chose %s (embedded in reply)", bills[i].ID)
			return &bills[i], nil
		}
	}

	logging.Resolution("Disambiguation returned unknown id %q", chosen)
	return nil, NoMatch(ReasonBillNotFound)
}

// cleanIDReply strips the wrapping a model tends to add around a bare id.
func cleanIDReply(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
