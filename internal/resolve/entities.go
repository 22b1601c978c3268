package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// CandidateIdentifiers is the ephemeral output of entity extraction:
// everything in the conversation that could identify a bill, before any
// of it has been confirmed against the store.
type CandidateIdentifiers struct {
	BillNumber int
	HasNumber  bool
	Titles     []string
	Keywords   []string
}

// billNumberPattern accepts the chamber-prefixed forms users actually
// type: "H.R. 1234", "HR1234", "h.r 1234", "S. 1234", "s1234", and the
// bare "1234". The chamber is discarded; only the number survives.
var billNumberPattern = regexp.MustCompile(`(?i)^\s*(?:h\.?\s*(?:r|j|con)?\.?\s*(?:res)?\.?|s\.?\s*(?:j|con)?\.?\s*(?:res)?\.?)?\s*(\d+)\s*$`)

// NormalizeBillNumber strips chamber prefixes and punctuation from a
// bill reference and returns the bare number. Returns false when the
// text is not a bill number form at all.
func NormalizeBillNumber(raw string) (int, bool) {
	m := billNumberPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Extractor turns free-text conversation into CandidateIdentifiers via
// schema-constrained LLM extraction.
type Extractor struct {
	client types.LLMClient
}

// NewExtractor creates an entity extractor.
func NewExtractor(client types.LLMClient) *Extractor {
	return &Extractor{client: client}
}

// extractionPayload is the JSON shape the extraction prompt demands.
type extractionPayload struct {
	BillNumber string   `json:"billNumber"`
	Titles     []string `json:"titles"`
	Keywords   []string `json:"keywords"`
}

// Extract pulls candidate identifiers out of the conversation. When
// nothing is extractable it returns NoMatch(ReasonNoExtraction) so the
// caller can skip every downstream tier.
func (e *Extractor) Extract(ctx context.Context, conversation []types.ConversationMessage) (CandidateIdentifiers, error) {
	timer := logging.StartTimer(logging.CategoryExtraction, "Extractor.Extract")
	defer timer.Stop()

	var ids CandidateIdentifiers
	if len(conversation) == 0 {
		return ids, NoMatch(ReasonNoExtraction)
	}

	raw, err := e.complete(ctx, renderConversation(conversation))
	if err != nil {
		return ids, fmt.Errorf("entity extraction failed: %w", err)
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		logging.Get(logging.CategoryExtraction).Warn("Unparseable extraction output: %v", err)
		return ids, NoMatch(ReasonNoExtraction)
	}

	if payload.BillNumber != "" {
		if n, ok := NormalizeBillNumber(payload.BillNumber); ok {
			ids.BillNumber = n
			ids.HasNumber = true
		}
	}
	for _, t := range payload.Titles {
		if t = strings.TrimSpace(t); t != "" {
			ids.Titles = append(ids.Titles, t)
		}
	}
	for _, k := range payload.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			ids.Keywords = append(ids.Keywords, k)
		}
	}

	if !ids.HasNumber && len(ids.Titles) == 0 && len(ids.Keywords) == 0 {
		logging.Extraction("Nothing extractable, skipping all tiers")
		return ids, NoMatch(ReasonNoExtraction)
	}

	logging.Extraction("Extracted: number=%v(%d), titles=%d, keywords=%d",
		ids.HasNumber, ids.BillNumber, len(ids.Titles), len(ids.Keywords))
	return ids, nil
}

// complete prefers native schema-constrained output and falls back to
// prompt-enforced JSON for clients without it.
func (e *Extractor) complete(ctx context.Context, conversationText string) (string, error) {
	if sc, ok := e.client.(types.StructuredCompleter); ok {
		return sc.CompleteStructured(ctx, extractionSystemPrompt, conversationText, extractionSchema())
	}
	return e.client.CompleteWithSystem(ctx, extractionSystemPrompt+"\n\n"+extractionJSONInstruction, conversationText)
}

// renderConversation flattens the ordered conversation for a prompt.
// The most recent message is the focal turn, so order is preserved.
func renderConversation(conversation []types.ConversationMessage) string {
	var b strings.Builder
	for _, msg := range conversation {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// stripCodeFence removes a markdown code fence if the model wrapped its
// JSON in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
