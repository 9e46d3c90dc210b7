package decision

import "fmt"

// MalformedDecisionError reports model output that could not be interpreted
// as a decision: empty text, an unparseable JSON object, or a missing
// required action field. Transport failures never produce this error; they
// are recovered inside the gateway.
type MalformedDecisionError struct {
	Message string
	Cause   error
}

func (e *MalformedDecisionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed decision: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed decision: %s", e.Message)
}

func (e *MalformedDecisionError) Unwrap() error {
	return e.Cause
}
