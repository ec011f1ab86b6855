package draft

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FolderCreator materializes the backing folder for a new draft. It is the
// narrow slice of the Composer the registry depends on.
type FolderCreator interface {
	CreateDraft(ctx context.Context, draftID string, width, height int) (folder string, err error)
}

// Registry is a concurrency-safe store of draft sessions keyed by id.
//
// The registry-wide mutex guards only map access. Each entry additionally
// carries an operation mutex that callers acquire via Lock for the duration
// of a Composer call mutating that draft, so concurrent writers can never
// touch the same backing folder at once while operations on distinct drafts
// proceed in parallel.
type Registry struct {
	creator FolderCreator

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	session Session
	op      sync.Mutex
}

// NewRegistry creates an empty registry backed by the given folder creator.
func NewRegistry(creator FolderCreator) *Registry {
	return &Registry{
		creator: creator,
		entries: make(map[string]*entry),
	}
}

// Create allocates a fresh draft id, asks the Composer to materialize its
// backing folder, and stores the session as StateNew. When the Composer call
// fails no entry is inserted.
func (r *Registry) Create(ctx context.Context, width, height int) (Session, error) {
	id := uuid.NewString()

	folder, err := r.creator.CreateDraft(ctx, id, width, height)
	if err != nil {
		return Session{}, fmt.Errorf("create draft folder: %w", err)
	}

	session := Session{
		ID:     id,
		Folder: folder,
		Width:  width,
		Height: height,
		State:  StateNew,
	}

	r.mu.Lock()
	r.entries[id] = &entry{session: session}
	r.mu.Unlock()

	return session, nil
}

// Get returns a snapshot of the session for id, or ErrNotFound.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return e.session, nil
}

// AdvanceState moves the session's lifecycle state forward. Advancing to the
// current state is a no-op; moving backward returns ErrInvalidTransition.
func (r *Registry) AdvanceState(id string, next State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	if next == e.session.State {
		return nil
	}
	if next < e.session.State {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.session.State, next)
	}
	e.session.State = next
	return nil
}

// Lock acquires the per-draft operation mutex and returns a session snapshot
// taken after acquisition, plus the release function. The registry-wide lock
// is not held while the caller runs, so operations on other drafts are not
// blocked by a slow Composer call.
func (r *Registry) Lock(id string) (Session, func(), error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return Session{}, nil, ErrNotFound
	}

	e.op.Lock()

	// Re-read under the registry lock: the state may have advanced while we
	// waited on the operation mutex.
	r.mu.Lock()
	session := e.session
	r.mu.Unlock()

	return session, e.op.Unlock, nil
}
