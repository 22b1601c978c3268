// Package types holds the shared data model for the bill context
// resolution subsystem: the legislative records read from the knowledge
// store, the conversation passed in by the caller, and the bundle handed
// back to the response generator.
package types

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationMessage is a single turn of the caller-owned conversation.
// Messages are ordered; the most recent message is the focal turn.
type ConversationMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Bill is a canonical legislative item. Bills are created and owned by an
// external ingestion process; this subsystem only reads them.
//
// Identity is ID. Number is unique only within a congress: H.R. 1234 exists
// in every congress that got that far, so Number alone never identifies a
// bill across sessions.
type Bill struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	Congress     string    `json:"congress"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Summary      string    `json:"summary"`
	IntroducedAt time.Time `json:"introduced_at"`
}

// Document is a supporting background document (report, article, memo).
// Same ownership model as Bill; read-only here.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Chunk is a pre-split, pre-embedded fragment of a bill or document.
// Many chunks share one parent. Congress is set only for bill chunks;
// document chunks carry an empty Congress.
type Chunk struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Source    string    `json:"source"`
	Congress  string    `json:"congress,omitempty"`
}

// ContextBundle is the subsystem's final output. Either field may be
// absent: Documents empty means no supporting text was found relevant,
// Bill nil means no single bill could be resolved. Never persisted.
type ContextBundle struct {
	Documents string `json:"documents,omitempty"`
	Bill      *Bill  `json:"bill,omitempty"`
}

// HasBill reports whether a bill was resolved.
func (b ContextBundle) HasBill() bool { return b.Bill != nil }

// HasDocuments reports whether supporting document text was found.
func (b ContextBundle) HasDocuments() bool { return b.Documents != "" }
