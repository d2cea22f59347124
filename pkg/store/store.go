// Package store persists layout records for the HTTP API.
//
// Backends:
//
//   - [MemoryStore]: in-process map, for development and tests
//   - [FileStore]: one JSON file per record, for the CLI
//   - [MongoStore]: MongoDB collection, for server deployments
//
// Records are [graph.Layout] values identified by a UUID assigned on save.
// Looking up an unknown ID returns a NOT_FOUND error from pkg/errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// Store holds layout records.
type Store interface {
	// Save stores l, assigning an ID and creation time when missing, and
	// returns the ID.
	Save(ctx context.Context, l *graph.Layout) (string, error)

	// Get returns the record with the given ID.
	Get(ctx context.Context, id string) (*graph.Layout, error)

	// Delete removes a record. Deleting an unknown ID is a NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// List returns up to limit records, newest first. A limit of zero or
	// less means DefaultListLimit.
	List(ctx context.Context, limit int) ([]graph.Layout, error)

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// prepare fills in the ID and creation time of a record about to be saved.
func prepare(l *graph.Layout) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	l.Cached = false
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "layout %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
