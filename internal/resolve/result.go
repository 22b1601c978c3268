package resolve

import (
	"errors"
	"fmt"
)

// Reason classifies why resolution produced no bill. These are terminal
// outcomes of the decision procedure, not transport failures: provider
// and store errors propagate as ordinary errors for the caller's retry
// policy, while a Reason means the procedure ran and concluded "no".
type Reason string

const (
	// ReasonNoExtraction means nothing extractable was found in the
	// conversation, so no tier was attempted.
	ReasonNoExtraction Reason = "noExtraction"

	// ReasonNoBillIDFound means disambiguation among numeric duplicates
	// produced no id.
	ReasonNoBillIDFound Reason = "noBillIdFound"

	// ReasonBillNotFound means a resolved id does not correspond to a
	// stored record.
	ReasonBillNotFound Reason = "billNotFound"

	// ReasonUnrelatedBill means candidates existed but the relevance
	// classifier rejected all of them.
	ReasonUnrelatedBill Reason = "unrelatedBill"

	// ReasonNoExactMatch means the agentic refinement loop exhausted
	// without settling on one id.
	ReasonNoExactMatch Reason = "noExactMatch"
)

// NoMatchError carries a terminal resolution outcome. Callers
// distinguish it from transport errors with errors.As.
type NoMatchError struct {
	Reason Reason
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match: %s", e.Reason)
}

// NoMatch wraps a Reason as an error.
func NoMatch(reason Reason) error {
	return &NoMatchError{Reason: reason}
}

// ReasonOf extracts the resolution reason from an error, if it carries
// one. The second return is false for transport errors.
func ReasonOf(err error) (Reason, bool) {
	var nm *NoMatchError
	if errors.As(err, &nm) {
		return nm.Reason, true
	}
	return "", false
}
