package dispatch

import "fmt"

// Kind is the machine-readable failure category carried on every error
// envelope, so callers can branch without parsing the human message.
type Kind string

const (
	// KindUnknownTool reports a tool name absent from the catalog.
	KindUnknownTool Kind = "unknown_tool"
	// KindMissingArgument reports a required argument absent from the call.
	KindMissingArgument Kind = "missing_argument"
	// KindInvalidDraftID reports a draft id absent from the registry.
	KindInvalidDraftID Kind = "invalid_draft_id"
	// KindComposerError reports a failed composition backend call.
	KindComposerError Kind = "composer_error"
	// KindDraftState reports an operation rejected by the draft's lifecycle
	// state, such as mutating a saved draft.
	KindDraftState Kind = "draft_state"
	// KindInternal reports any fault not converted to a more specific kind.
	KindInternal Kind = "internal"
)

// Error is a categorized dispatch failure. It never crosses a transport
// boundary as a raised fault; the dispatcher folds it into the envelope.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func errUnknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Message: fmt.Sprintf("Unknown tool: %s", name)}
}

func errMissingArgument(field string) *Error {
	return &Error{Kind: KindMissingArgument, Message: fmt.Sprintf("Missing required argument: %s", field)}
}

func errInvalidDraftID() *Error {
	return &Error{Kind: KindInvalidDraftID, Message: "Invalid draft_id"}
}

func errComposer(cause error) *Error {
	return &Error{Kind: KindComposerError, Message: cause.Error(), cause: cause}
}

func errDraftState(message string) *Error {
	return &Error{Kind: KindDraftState, Message: message}
}

func errInternal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}
