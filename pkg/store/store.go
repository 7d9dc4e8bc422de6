// Package store persists layout snapshots of interactive sessions.
//
// A [Snapshot] records the node positions and pins of a view at one moment
// under a UUID. Snapshots can be listed per document, loaded back as the
// initial positions of a render or a new server session, and deleted.
//
// Backends:
//   - [MemoryStore]: in-process, for tests and throwaway servers
//   - [FileStore]: one JSON file per snapshot (CLI default)
//   - [MongoStore]: shared storage for server deployments
//
// Usage:
//
//	st, err := store.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	snap := store.New("before refactor", docHash, v.Snapshot())
//	if err := st.Save(ctx, snap); err != nil {
//	    return err
//	}
//	later, err := st.Get(ctx, snap.ID)
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
)

// Snapshot is a saved layout.
type Snapshot struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	// DocumentHash identifies the document the layout belongs to.
	DocumentHash string       `json:"document_hash,omitempty" bson:"document_hash,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	Layout       graph.Layout `json:"layout" bson:"layout"`
}

// New returns a snapshot with a fresh id and the current time.
func New(name, docHash string, l graph.Layout) *Snapshot {
	return &Snapshot{
		ID:           uuid.NewString(),
		Name:         name,
		DocumentHash: docHash,
		CreatedAt:    time.Now().UTC(),
		Layout:       l,
	}
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save stores s, replacing any snapshot with the same id. An empty id
	// is assigned a new UUID and a zero CreatedAt is set to now.
	Save(ctx context.Context, s *Snapshot) error

	// Get returns the snapshot with the given id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns the snapshots of a document, newest first. An empty
	// docHash lists every snapshot.
	List(ctx context.Context, docHash string) ([]*Snapshot, error)

	// Delete removes a snapshot. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// ParseID validates a snapshot id and returns it in canonical form.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid snapshot id %q", id)
	}
	return u.String(), nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
}

// prepare fills in a missing id and creation time and validates the id.
func prepare(s *Snapshot) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	id, err := ParseID(s.ID)
	if err != nil {
		return err
	}
	s.ID = id
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

func newestFirst(snaps []*Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if !snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
		}
		return snaps[i].ID < snaps[j].ID
	})
}
