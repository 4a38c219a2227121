// Package db opens the PostgreSQL database backing the secret list. Only
// local databases are accepted because rows carry the decryption keys.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/lib/pq"
)

// Schema creates the secrets table. created_at is stored in Unix milliseconds
// so expiry can be evaluated in SQL as created_at + auto_destroy_after*1000.
const Schema = `
CREATE TABLE IF NOT EXISTS secrets (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    envelope TEXT NOT NULL,
    key TEXT NOT NULL,
    burn_after_view BOOLEAN NOT NULL DEFAULT TRUE,
    auto_destroy_after INTEGER NOT NULL DEFAULT 0,
    view_count INTEGER NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS secrets_created_at_idx ON secrets (created_at DESC);
`

// ErrRemoteDatabase is returned for DSNs that point off this machine. The
// secrets table holds every decryption key, so it must stay local.
var ErrRemoteDatabase = errors.New("database must be on loopback or a unix socket")

// InitPostgres checks that dsn is local, opens it, and hands the connection to
// Prepare.
func InitPostgres(dsn string) (*sql.DB, error) {
	if err := CheckLocalDSN(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := Prepare(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Prepare verifies the connection and applies Schema. db is closed when
// either step fails.
func Prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// CheckLocalDSN accepts URL and key/value DSNs whose host is localhost, a
// loopback address or a unix socket directory. A DSN without a host falls
// back to PGHOST and then to localhost, as lib/pq does.
func CheckLocalDSN(dsn string) error {
	kv := dsn
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := pq.ParseURL(dsn)
		if err != nil {
			return fmt.Errorf("parse dsn: %w", err)
		}
		kv = parsed
	}

	host := dsnHost(kv)
	if host == "" {
		host = os.Getenv("PGHOST")
	}
	if host == "" || isLocalHost(host) {
		return nil
	}
	return fmt.Errorf("%w: host %q", ErrRemoteDatabase, host)
}

// dsnHost returns the last host= value of a key/value DSN.
func dsnHost(kv string) string {
	var host string
	for _, field := range strings.Fields(kv) {
		name, value, found := strings.Cut(field, "=")
		if found && name == "host" {
			host = strings.Trim(value, "'")
		}
	}
	return host
}

func isLocalHost(host string) bool {
	if strings.HasPrefix(host, "/") || strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}

// Migrate applies Schema to an open database.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
