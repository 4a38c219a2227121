package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/atinyakov/GophShare/internal/models"
	"github.com/dgraph-io/badger/v4"
)

var secretPrefix = []byte("secret/")

func secretKey(id string) []byte {
	return append(append([]byte(nil), secretPrefix...), id...)
}

// BadgerRepository keeps secrets in an embedded Badger database, one JSON
// value per secret under "secret/<id>".
type BadgerRepository struct {
	DB *badger.DB
}

// NewBadgerRepository wraps an open Badger database.
func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{DB: db}
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerRepository(db), nil
}

// maxConflictRetries bounds retries of read-modify-write transactions that
// lose a race against another writer.
const maxConflictRetries = 64

// update runs fn in a read-write transaction, retrying on badger.ErrConflict.
func (r *BadgerRepository) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = r.DB.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getSecret(txn *badger.Txn, id string) (models.Secret, error) {
	item, err := txn.Get(secretKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Secret{}, ErrNotFound
	}
	if err != nil {
		return models.Secret{}, fmt.Errorf("get secret: %w", err)
	}

	var sec models.Secret
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &sec)
	})
	if err != nil {
		return models.Secret{}, fmt.Errorf("decode secret: %w", err)
	}
	return sec, nil
}

func putSecret(txn *badger.Txn, sec models.Secret) error {
	val, err := json.Marshal(sec)
	if err != nil {
		return fmt.Errorf("encode secret: %w", err)
	}
	return txn.Set(secretKey(sec.ID), val)
}

// eachSecret calls fn for every stored secret.
func eachSecret(txn *badger.Txn, fn func(key []byte, sec models.Secret) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(secretPrefix); it.ValidForPrefix(secretPrefix); it.Next() {
		item := it.Item()
		var sec models.Secret
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sec)
		}); err != nil {
			return fmt.Errorf("decode %s: %w", bytes.TrimPrefix(item.Key(), secretPrefix), err)
		}
		if err := fn(item.KeyCopy(nil), sec); err != nil {
			return err
		}
	}
	return nil
}

func (r *BadgerRepository) Create(_ context.Context, secret models.Secret) error {
	return r.update(func(txn *badger.Txn) error {
		if _, err := getSecret(txn, secret.ID); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		return putSecret(txn, secret)
	})
}

func (r *BadgerRepository) List(_ context.Context) ([]models.Secret, error) {
	secrets := []models.Secret{}
	err := r.DB.View(func(txn *badger.Txn) error {
		return eachSecret(txn, func(_ []byte, sec models.Secret) error {
			secrets = append(secrets, sec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(secrets, func(i, j int) bool {
		return secrets[i].CreatedAt.After(secrets[j].CreatedAt)
	})
	return secrets, nil
}

func (r *BadgerRepository) Get(_ context.Context, id string) (models.Secret, error) {
	var sec models.Secret
	err := r.DB.View(func(txn *badger.Txn) error {
		var err error
		sec, err = getSecret(txn, id)
		return err
	})
	return sec, err
}

func (r *BadgerRepository) Delete(_ context.Context, id string) error {
	return r.update(func(txn *badger.Txn) error {
		return txn.Delete(secretKey(id))
	})
}

func (r *BadgerRepository) IncrementViewCount(_ context.Context, id string) (models.Secret, error) {
	var sec models.Secret
	err := r.update(func(txn *badger.Txn) error {
		var err error
		sec, err = getSecret(txn, id)
		if err != nil {
			return err
		}
		sec.ViewCount++
		return putSecret(txn, sec)
	})
	if err != nil {
		return models.Secret{}, err
	}
	return sec, nil
}

func (r *BadgerRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	err := r.update(func(txn *badger.Txn) error {
		var expired [][]byte
		err := eachSecret(txn, func(key []byte, sec models.Secret) error {
			if sec.Policy().Expired(now) {
				expired = append(expired, key)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, key := range expired {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete expired: %w", err)
			}
		}
		removed = int64(len(expired))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *BadgerRepository) Close() error {
	return r.DB.Close()
}
