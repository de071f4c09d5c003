package credstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps credentials in a local sqlite file, one row per profile.
type SQLiteStore struct {
	db      *sql.DB
	profile string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// applies pending migrations.
func NewSQLiteStore(path, profile string) (*SQLiteStore, error) {
	if profile == "" {
		return nil, errors.New("profile is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, profile: profile}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) runMigrations() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (domain.Credential, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM credentials WHERE profile = ?`, s.profile).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	return domain.Credential(token), nil
}

func (s *SQLiteStore) Save(ctx context.Context, cred domain.Credential) error {
	if cred.IsZero() {
		return errors.New("credential is empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (profile, token, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET token = excluded.token, saved_at = excluded.saved_at`,
		s.profile, cred.String(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
