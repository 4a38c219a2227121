package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/atinyakov/GophShare/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a duplicate key.
const uniqueViolation = "23505"

const secretColumns = `id, title, envelope, key, burn_after_view, auto_destroy_after, view_count, created_at`

// PostgresRepository implements the secret list against a PostgreSQL database.
type PostgresRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRepository creates a PostgresRepository using the provided *sql.DB.
// The schema from db.Schema must already be applied.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSecret(row rowScanner) (models.Secret, error) {
	var (
		sec         models.Secret
		autoDestroy int
		createdAt   int64
	)
	err := row.Scan(&sec.ID, &sec.Title, &sec.Envelope, &sec.Key,
		&sec.BurnAfterView, &autoDestroy, &sec.ViewCount, &createdAt)
	if err != nil {
		return models.Secret{}, err
	}
	sec.AutoDestroyAfter = lifecycle.AutoDestroy(autoDestroy)
	sec.CreatedAt = time.UnixMilli(createdAt)
	return sec, nil
}

// Create inserts a new secret. A duplicate id yields ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, secret models.Secret) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO secrets (`+secretColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, secret.ID, secret.Title, secret.Envelope, secret.Key, secret.BurnAfterView,
		int(secret.AutoDestroyAfter), secret.ViewCount, secret.CreatedAt.UnixMilli())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

// List fetches all secrets, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Secret, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+secretColumns+` FROM secrets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	secrets := []models.Secret{}
	for rows.Next() {
		sec, err := scanSecret(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		secrets = append(secrets, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return secrets, nil
}

// Get retrieves a single secret by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (models.Secret, error) {
	sec, err := scanSecret(r.DB.QueryRowContext(ctx, `
		SELECT `+secretColumns+` FROM secrets WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Secret{}, ErrNotFound
	}
	if err != nil {
		return models.Secret{}, fmt.Errorf("get secret: %w", err)
	}
	return sec, nil
}

// Delete removes a secret by id. Unknown ids are ignored.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM secrets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

// IncrementViewCount atomically bumps view_count and returns the updated row.
func (r *PostgresRepository) IncrementViewCount(ctx context.Context, id string) (models.Secret, error) {
	sec, err := scanSecret(r.DB.QueryRowContext(ctx, `
		UPDATE secrets SET view_count = view_count + 1 WHERE id = $1
		RETURNING `+secretColumns+`
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Secret{}, ErrNotFound
	}
	if err != nil {
		return models.Secret{}, fmt.Errorf("increment view count: %w", err)
	}
	return sec, nil
}

// DeleteExpired removes every secret with a lifetime that has run out at now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM secrets
		 WHERE auto_destroy_after > 0
		   AND created_at + auto_destroy_after * 1000 <= $1
	`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) Close() error {
	return r.DB.Close()
}
