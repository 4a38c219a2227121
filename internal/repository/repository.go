// Package repository stores the creator's own list of secrets.
//
// Three backends share one contract: a JSON file (the default), an embedded
// Badger database, and PostgreSQL. Every backend is safe for concurrent use
// and resolves concurrent writes to the same secret last-writer-wins.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/GophShare/internal/db"
	"github.com/atinyakov/GophShare/internal/models"
)

var (
	// ErrNotFound is returned when no secret has the requested id.
	ErrNotFound = errors.New("secret not found")
	// ErrAlreadyExists is returned when creating a secret whose id is taken.
	ErrAlreadyExists = errors.New("secret already exists")
)

// Store is implemented by every backend.
type Store interface {
	// Create saves a new secret.
	Create(ctx context.Context, secret models.Secret) error
	// List returns all stored secrets, newest first.
	List(ctx context.Context) ([]models.Secret, error)
	// Get returns the secret with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (models.Secret, error)
	// Delete removes a secret. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// IncrementViewCount bumps the view counter and returns the updated secret.
	IncrementViewCount(ctx context.Context, id string) (models.Secret, error)
	// DeleteExpired removes every secret whose lifecycle policy has expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// Close releases the backend.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// DatabaseDSN selects PostgreSQL when set.
	DatabaseDSN string
	// BadgerDir selects Badger when set and DatabaseDSN is empty.
	BadgerDir string
	// StorageFile is the JSON file used when neither of the above is set.
	StorageFile string
}

// Open returns the backend chosen by opts.
func Open(opts Options) (Store, error) {
	switch {
	case opts.DatabaseDSN != "":
		conn, err := db.InitPostgres(opts.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(conn), nil
	case opts.BadgerDir != "":
		return OpenBadger(opts.BadgerDir)
	default:
		return NewFileRepository(opts.StorageFile)
	}
}
