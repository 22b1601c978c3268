package resolve

// Prompts and schemas for the LLM steps of the resolution chain. Kept
// together so the wording can be tuned without touching control flow.

const extractionSystemPrompt = `You extract legislative references from a conversation about US policy.

From the conversation, identify:
- billNumber: an explicit bill number if one is mentioned (e.g. "H.R. 1234", "S. 55"). Empty string if none.
- titles: full bill titles mentioned verbatim (e.g. "Lower Energy Costs Act").
- keywords: short topical phrases describing what the conversation is about (e.g. "farm subsidies", "border security funding").

Only report what is actually present. Do not invent bill numbers or titles.`

const extractionJSONInstruction = `Respond with a single JSON object and nothing else:
{"billNumber": "", "titles": [], "keywords": []}`

// extractionSchema is the JSON schema for schema-constrained extraction.
func extractionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"billNumber": map[string]interface{}{
				"type":        "string",
				"description": "Explicit bill number as written, empty if none",
			},
			"titles": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"keywords": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required":             []string{"billNumber", "titles", "keywords"},
		"additionalProperties": false,
	}
}

const disambiguationSystemPrompt = `Multiple bills share the same bill number across congresses. Pick the single bill the conversation is about.

Selection order:
1. Topical relevance to the conversation.
2. If no contextual signal dominates, pick the most recently introduced bill.

You must always pick one of the listed bills. Respond with the chosen bill id and nothing else.`

const classifierSystemPrompt = `You judge which bills a conversation is actually about.

You are given text excerpts from candidate bills. Respond with a JSON array of the bill ids whose excerpts are genuinely related to the conversation. Respond with [] if none are related. No other output.`

// classifierSchema constrains the relevance classifier to an id list.
func classifierSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"billIds": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required":             []string{"billIds"},
		"additionalProperties": false,
	}
}

const agentSystemPrompt = `Several candidate bills remain plausible for this conversation. Narrow them to exactly one.

You may call the search_bills tool to run focused similarity searches over the remaining candidates. Use it to compare how well each candidate matches what the conversation is actually about.

When you are confident, respond with the single winning bill id and nothing else. If you cannot settle on exactly one bill, respond with ` + NoExactMatchSentinel + `.`

const documentFilterSystemPrompt = `You judge which document excerpts help answer a question.

Respond with a JSON array of the excerpt ids that are genuinely useful for answering. Respond with [] if none are. No other output.`

// documentFilterSchema constrains the document relevance filter.
func documentFilterSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"chunkIds": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required":             []string{"chunkIds"},
		"additionalProperties": false,
	}
}
