package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymsessions/internal/docstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store keeps documents in a single postgres table, keyed by (collection, id).
type Store struct {
	db *pgxpool.Pool
}

var _ docstore.Store = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db: db,
	}
}

// RunMigrations applies all pending schema migrations to the database at dsn.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warnf("close migrator: source: %v, db: %v", srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migrations version: %w", err)
	}
	log.Debugf("pg store schema at version %d (dirty: %t)", version, dirty)

	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Record, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT body FROM exercise_document WHERE collection = $1 ORDER BY id;`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]docstore.Record, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		records = append(records, docstore.Record(body))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, record docstore.Record) error {
	if id == "" {
		return docstore.ErrEmptyID
	}

	_, err := s.db.Exec(
		ctx,
		`
			INSERT INTO exercise_document (collection, id, body, updated_at)
			VALUES ($1, $2, $3::jsonb, now())
			ON CONFLICT (collection, id)
			DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at;`,
		collection, id, string(record),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", docstore.DocumentKey(collection, id), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return docstore.ErrEmptyID
	}

	tag, err := s.db.Exec(
		ctx,
		`DELETE FROM exercise_document WHERE collection = $1 AND id = $2;`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", docstore.DocumentKey(collection, id), err)
	}
	if tag.RowsAffected() == 0 {
		log.Tracef("pg store: %s not found, nothing deleted", docstore.DocumentKey(collection, id))
	}
	return nil
}
