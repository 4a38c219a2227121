// Package service implements the creator-side secret operations on top of a
// repository: creating, listing, revealing and deleting shared secrets.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atinyakov/GophShare/internal/envelope"
	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/models"
	"github.com/atinyakov/GophShare/internal/repository"
	"github.com/atinyakov/GophShare/internal/share"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrValidation wraps every rejected CreateRequest.
var ErrValidation = errors.New("invalid secret")

// ErrNotFound is returned for unknown or expired secret ids.
var ErrNotFound = repository.ErrNotFound

// SecretRepository defines the persistence operations needed by SecretService.
type SecretRepository interface {
	Create(ctx context.Context, secret models.Secret) error
	List(ctx context.Context) ([]models.Secret, error)
	Get(ctx context.Context, id string) (models.Secret, error)
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) (models.Secret, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CreateRequest is the creation form.
type CreateRequest struct {
	Title         string
	Content       string
	BurnAfterView bool
	// AutoDestroy is the lifetime in seconds; 0 means never.
	AutoDestroy int
}

// Created is the outcome of a successful Create.
type Created struct {
	Secret models.Secret
	Link   string
}

// SecretService implements the creator's secret list.
type SecretService struct {
	repo   SecretRepository
	origin string
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewSecretService constructs a SecretService that builds links under origin.
// A nil log disables logging.
func NewSecretService(repo SecretRepository, origin string, log *zap.Logger) *SecretService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SecretService{
		repo:   repo,
		origin: origin,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create validates req, encrypts the content under a fresh key, stores the
// secret and returns it with its share link.
func (s *SecretService) Create(ctx context.Context, req CreateRequest) (Created, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Created{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return Created{}, fmt.Errorf("%w: content is required", ErrValidation)
	}
	// encoding/json would silently replace invalid bytes with U+FFFD.
	if !utf8.ValidString(req.Title) {
		return Created{}, fmt.Errorf("%w: title must be valid UTF-8", ErrValidation)
	}
	if !utf8.ValidString(req.Content) {
		return Created{}, fmt.Errorf("%w: content must be valid UTF-8", ErrValidation)
	}
	ad, err := lifecycle.ParseAutoDestroy(req.AutoDestroy)
	if err != nil {
		return Created{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	env, key, err := envelope.Encrypt(req.Content)
	if err != nil {
		return Created{}, fmt.Errorf("encrypt secret: %w", err)
	}

	now := s.now()
	sec := models.Secret{
		ID:               s.newID(),
		Title:            req.Title,
		Envelope:         env,
		Key:              key,
		BurnAfterView:    req.BurnAfterView,
		AutoDestroyAfter: ad,
		// stores keep millisecond precision
		CreatedAt: time.UnixMilli(now.UnixMilli()),
	}
	if err := s.repo.Create(ctx, sec); err != nil {
		return Created{}, fmt.Errorf("store secret: %w", err)
	}

	s.log.Info("secret created",
		zap.String("id", sec.ID),
		zap.Bool("burn_after_view", sec.BurnAfterView),
		zap.Stringer("auto_destroy", sec.AutoDestroyAfter),
	)
	return Created{Secret: sec, Link: s.link(sec)}, nil
}

// List returns the live secrets, newest first. Expired secrets found on the
// way are deleted.
func (s *SecretService) List(ctx context.Context) ([]models.Secret, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}

	now := s.now()
	live := make([]models.Secret, 0, len(all))
	for _, sec := range all {
		if sec.Policy().Expired(now) {
			s.destroy(ctx, sec.ID)
			continue
		}
		live = append(live, sec)
	}
	return live, nil
}

// Get returns a live secret by id.
func (s *SecretService) Get(ctx context.Context, id string) (models.Secret, error) {
	sec, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Secret{}, err
	}
	if sec.Policy().Expired(s.now()) {
		s.destroy(ctx, id)
		return models.Secret{}, ErrNotFound
	}
	return sec, nil
}

// Delete removes a secret. Unknown ids are not an error.
func (s *SecretService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	s.log.Info("secret deleted", zap.String("id", id))
	return nil
}

// Link rebuilds the share link of a live secret.
func (s *SecretService) Link(ctx context.Context, id string) (string, error) {
	sec, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.link(sec), nil
}

// Reveal decrypts the creator's copy of a secret and counts the view.
func (s *SecretService) Reveal(ctx context.Context, id string) (string, error) {
	sec, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	plaintext, err := envelope.Decrypt(sec.Envelope, sec.Key)
	if err != nil {
		return "", fmt.Errorf("reveal secret %s: %w", id, err)
	}
	if _, err := s.repo.IncrementViewCount(ctx, id); err != nil {
		return "", fmt.Errorf("count view: %w", err)
	}
	return plaintext, nil
}

// PurgeExpired deletes every expired secret and reports how many went.
func (s *SecretService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func (s *SecretService) link(sec models.Secret) string {
	return share.BuildLink(s.origin, sec.Payload(), sec.Key)
}

// destroy deletes an expired secret. Failures are logged and left to the reaper.
func (s *SecretService) destroy(ctx context.Context, id string) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Warn("failed to delete expired secret", zap.String("id", id), zap.Error(err))
		return
	}
	s.log.Info("secret expired", zap.String("id", id))
}
