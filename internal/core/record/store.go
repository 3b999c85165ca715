package record

import "context"

// Store persists records. The directory a record lives in is its state, and
// Move is the only way a record changes state.
type Store interface {
	// Init creates every state directory.
	Init(ctx context.Context) error
	// List returns the records in a state, oldest first.
	List(ctx context.Context, state State) ([]*Record, error)
	// Get loads a record by file name from a state.
	Get(ctx context.Context, state State, name string) (*Record, error)
	// Find locates a record by id or file name across all states.
	Find(ctx context.Context, id string) (*Record, error)
	// Create writes a new record atomically. Returns ErrExists when the
	// name is taken.
	Create(ctx context.Context, state State, rec *Record) error
	// Update rewrites a record in place.
	Update(ctx context.Context, rec *Record) error
	// Move rewrites rec and relocates it from one state to another. The
	// record's id is persisted in its header before it leaves intake.
	Move(ctx context.Context, rec *Record, from, to State) error
}
