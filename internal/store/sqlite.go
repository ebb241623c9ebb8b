package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	tlog "github.com/shapedtime/torrentmap/internal/log"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

var _ Store = &SQLite{}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite stores records in a single table of a SQLite database.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLite opens the database at file and runs pending migrations.
func NewSQLite(file string) (*SQLite, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLite{db: db, log: tlog.Component("index-store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

type migration struct {
	version int
	name    string
}

// migrate runs all pending migrations
func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		// "001_index_records.sql" -> 1
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		migrations = append(migrations, migration{version, entry.Name()})
	}

	slices.SortFunc(migrations, func(a, b migration) int {
		return a.version - b.version
	})

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		s.log.Info().Int("version", m.version).Str("name", m.name).Msg("applying migration")

		content, err := migrationsFS.ReadFile(path.Join("migrations", m.name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.name, err)
		}

		if err := s.applyMigration(m.version, string(content)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
	}

	return nil
}

// applyMigration runs a migration within a transaction
func (s *SQLite) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(content); err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLite) Put(r *Record) error {
	h, err := NormalizeHash(r.InfoHash)
	if err != nil {
		return err
	}

	trackers, err := json.Marshal(r.Trackers)
	if err != nil {
		return err
	}
	files, err := json.Marshal(r.Files)
	if err != nil {
		return err
	}
	index, err := json.Marshal(r.Index)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO index_records (info_hash, name, source, layout, trackers, files, index_map, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(info_hash) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			layout = excluded.layout,
			trackers = excluded.trackers,
			files = excluded.files,
			index_map = excluded.index_map,
			created_at = excluded.created_at`,
		h, r.Name, r.Source, string(r.Layout), string(trackers), string(files), string(index),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

const selectRecord = `SELECT info_hash, name, source, layout, trackers, files, index_map, created_at FROM index_records`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		r                      Record
		layout, createdAt      string
		trackers, files, index string
	)
	if err := row.Scan(&r.InfoHash, &r.Name, &r.Source, &layout, &trackers, &files, &index, &createdAt); err != nil {
		return nil, err
	}

	r.Layout = torrentfile.Layout(layout)
	if err := json.Unmarshal([]byte(trackers), &r.Trackers); err != nil {
		return nil, fmt.Errorf("decode trackers: %w", err)
	}
	if err := json.Unmarshal([]byte(files), &r.Files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	if err := json.Unmarshal([]byte(index), &r.Index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	r.CreatedAt = t

	return &r, nil
}

func (s *SQLite) Get(hash string) (*Record, error) {
	h, err := NormalizeHash(hash)
	if err != nil {
		return nil, err
	}

	r, err := scanRecord(s.db.QueryRow(selectRecord+` WHERE info_hash = ?`, h))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return r, nil
}

func (s *SQLite) List() ([]*Record, error) {
	rows, err := s.db.Query(selectRecord + ` ORDER BY name, info_hash`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(hash string) (bool, error) {
	h, err := NormalizeHash(hash)
	if err != nil {
		return false, err
	}

	res, err := s.db.Exec(`DELETE FROM index_records WHERE info_hash = ?`, h)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLite) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM index_records`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}
