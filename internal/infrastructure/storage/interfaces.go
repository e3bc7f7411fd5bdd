package storage

import (
	"context"
	"errors"

	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("record not found")

// Repository defines the exception record store.
// This interface allows swapping implementations (SQLite, in-memory, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	// GetAll returns every record, newest first
	GetAll(ctx context.Context) ([]exceptions.Record, error)

	// List returns the records passing filter, newest first
	List(ctx context.Context, filter exceptions.Filter) ([]exceptions.Record, error)

	// Get returns one record or ErrNotFound
	Get(ctx context.Context, id string) (*exceptions.Record, error)

	// PutMany inserts records, replacing any with the same ID
	PutMany(ctx context.Context, records []exceptions.Record) error

	// UpdatePartial applies patch to one record and returns the result
	UpdatePartial(ctx context.Context, id string, patch exceptions.Patch) (*exceptions.Record, error)

	// Delete removes one record or returns ErrNotFound
	Delete(ctx context.Context, id string) error

	// Clear removes every record
	Clear(ctx context.Context) error

	Close() error
}
