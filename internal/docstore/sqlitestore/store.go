package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/2beens/gymsessions/internal/docstore"
	"github.com/2beens/gymsessions/pkg"
)

// Store is a single file document store, for running without any external service.
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

// Open opens (or creates) the sqlite database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	dirExists, err := pkg.PathExists(dir, true)
	if err != nil {
		return nil, fmt.Errorf("checking sqlite dir %s: %w", dir, err)
	}
	if !dirExists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir %s: %w", dir, err)
		}
		log.Debugf("sqlite dir created: %s", dir)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exercise_document (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		body       BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	log.Debugf("sqlite store opened: %s", path)
	return &Store{db: db}, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT body FROM exercise_document WHERE collection = ? ORDER BY id`,
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
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO exercise_document (collection, id, body, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		collection, id, []byte(record),
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
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM exercise_document WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", docstore.DocumentKey(collection, id), err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
