// Package draft holds the in-memory registry of draft sessions.
//
// A session records the identity, canvas dimensions, and lifecycle state of
// one in-progress composition. Sessions live for the lifetime of the process;
// there is no persistence and no explicit deletion.
package draft

import (
	"errors"
	"fmt"
)

// State is the lifecycle phase of a draft session. Transitions only move
// forward: New -> Composing -> Saved. Saved is terminal.
type State int

const (
	// StateNew marks a freshly created draft with no assets yet.
	StateNew State = iota
	// StateComposing marks a draft that has received at least one asset.
	StateComposing
	// StateSaved marks a draft whose final composition has been produced.
	StateSaved
)

// String returns the lifecycle phase name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateComposing:
		return "composing"
	case StateSaved:
		return "saved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the registry's record of one draft.
type Session struct {
	ID     string
	Folder string
	Width  int
	Height int
	State  State
}

// ErrNotFound reports a draft id absent from the registry.
var ErrNotFound = errors.New("draft not found")

// ErrInvalidTransition reports a lifecycle transition that would move
// backward from the current state.
var ErrInvalidTransition = errors.New("invalid draft state transition")
