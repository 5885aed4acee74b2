package storage

import "github.com/julianstephens/memosphere/internal/models"

// Provider is the storage seam for the journal. The local JSON slot store, the
// SQLite store and the remote entry API client all satisfy it, so the service
// layer never depends on the storage mechanism.
//
// Providers never run mutations concurrently with each other: every Save and
// Delete is a full read-modify-write of the collection, so sequential callers
// always observe a consistent, monotonically updated collection.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// GetAll returns every entry, most recently created first. An empty
	// collection is an empty slice, not an error.
	GetAll() ([]models.Entry, error)
	// GetByID looks up a single entry. Absence is a normal outcome reported
	// through the second return value, never an error.
	GetByID(id string) (models.Entry, bool, error)
	// Save assigns a fresh id and creation timestamp, prepends the entry to
	// the collection and persists it, returning the fully populated entry.
	Save(entry models.NewEntry) (models.Entry, error)
	// Search returns entries whose title, content or tag names contain the
	// query (case-insensitive). A blank query returns everything.
	Search(query string) ([]models.Entry, error)
	// GetReflectionChain walks linkedEntryId references starting from (but not
	// including) the entry with the given id, oldest last. The walk ends
	// silently at a dangling link and includes a non-reflection ancestor as
	// its final element. Traversal is bounded by the collection size even if
	// the stored data were ever to contain a cycle.
	GetReflectionChain(id string) ([]models.Entry, error)
	// Delete removes the entry and, in the same write, every entry directly
	// linked to it. Deleting an unknown id is a no-op.
	Delete(id string) error
}
