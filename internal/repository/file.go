package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atinyakov/GophShare/internal/models"
)

// DefaultStorageFile is used when no path is configured.
const DefaultStorageFile = "storage.json"

// FileRepository keeps secrets in a JSON file that is rewritten on every change.
type FileRepository struct {
	path    string
	mu      sync.Mutex
	secrets []models.Secret
}

type fileContents struct {
	Secrets []models.Secret `json:"secrets"`
}

// NewFileRepository loads path, starting empty when it does not exist yet.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		path = DefaultStorageFile
	}
	r := &FileRepository{path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepository) load() error {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.secrets = []models.Secret{}
			return nil
		}
		return fmt.Errorf("open storage: %w", err)
	}
	defer f.Close()

	var contents fileContents
	if err := json.NewDecoder(f).Decode(&contents); err != nil {
		return fmt.Errorf("decode storage: %w", err)
	}
	r.secrets = contents.Secrets
	if r.secrets == nil {
		r.secrets = []models.Secret{}
	}
	return nil
}

// save writes secrets to a temporary file first so a crash never leaves a
// torn file.
func (r *FileRepository) save(secrets []models.Secret) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(fileContents{Secrets: secrets}); err != nil {
		tmp.Close()
		return fmt.Errorf("encode storage: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}
	return nil
}

// commit persists secrets and only then makes them the in-memory list, so a
// failed write leaves memory matching the file.
func (r *FileRepository) commit(secrets []models.Secret) error {
	if err := r.save(secrets); err != nil {
		return err
	}
	r.secrets = secrets
	return nil
}

func (r *FileRepository) indexOf(id string) int {
	for i, s := range r.secrets {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Create prepends secret so the list stays newest first.
func (r *FileRepository) Create(_ context.Context, secret models.Secret) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(secret.ID) >= 0 {
		return ErrAlreadyExists
	}
	next := make([]models.Secret, 0, len(r.secrets)+1)
	next = append(next, secret)
	next = append(next, r.secrets...)
	return r.commit(next)
}

func (r *FileRepository) List(_ context.Context) ([]models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Secret, len(r.secrets))
	copy(out, r.secrets)
	return out, nil
}

func (r *FileRepository) Get(_ context.Context, id string) (models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		return r.secrets[i], nil
	}
	return models.Secret{}, ErrNotFound
}

func (r *FileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]models.Secret, 0, len(r.secrets)-1)
	next = append(next, r.secrets[:i]...)
	next = append(next, r.secrets[i+1:]...)
	return r.commit(next)
}

func (r *FileRepository) IncrementViewCount(_ context.Context, id string) (models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Secret{}, ErrNotFound
	}
	next := make([]models.Secret, len(r.secrets))
	copy(next, r.secrets)
	next[i].ViewCount++
	if err := r.commit(next); err != nil {
		return models.Secret{}, err
	}
	return next[i], nil
}

func (r *FileRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.Secret, 0, len(r.secrets))
	var removed int64
	for _, s := range r.secrets {
		if s.Policy().Expired(now) {
			removed++
			continue
		}
		next = append(next, s)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := r.commit(next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Close is a no-op; every change is already on disk.
func (r *FileRepository) Close() error { return nil }
