package orchestrator

import "errors"

// ErrUnknownModel is returned when the bound agent's model id is missing
// from the supplied ModelCatalog.
var ErrUnknownModel = errors.New("orchestrator: unknown model id")

// DispatchError wraps a tool-dispatch failure that is serious enough to
// abort the turn outright (distinct from an ordinary tool failure, which is
// recorded on the ToolResult and handled by the error tracker instead).
// Nothing in this package constructs one: the dispatch contract always
// returns a ToolResult, even for unknown tools or bad arguments, and a
// failure to persist the conversation is returned as a plain wrapped
// "orchestrator: persist conversation" error, not as a DispatchError.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return "orchestrator: dispatch: " + e.Err.Error() }
func (e *DispatchError) Unwrap() error { return e.Err }
