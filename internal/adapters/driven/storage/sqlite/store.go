package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/canvai/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/logger"
)

// DatabaseFile is the file name of each store's database.
const DatabaseFile = "index.db"

// Ensure IndexRepository implements the interface.
var _ driven.IndexRepository = (*IndexRepository)(nil)

// IndexRepository persists each index store in its own SQLite file under root.
type IndexRepository struct {
	root string

	// mu serialises saves and deletes.
	mu sync.Mutex
}

// NewIndexRepository creates a repository rooted at dir.
// If dir is empty, defaults to ~/.canvai/indexes.
func NewIndexRepository(dir string) (*IndexRepository, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".canvai", "indexes")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	return &IndexRepository{root: dir}, nil
}

// Root returns the directory holding all stores.
func (r *IndexRepository) Root() string {
	return r.root
}

// Path returns the database path of the named store.
func (r *IndexRepository) Path(name string) string {
	return filepath.Join(r.root, name, DatabaseFile)
}

// Save writes store to a temporary database and renames it over the live one.
func (r *IndexRepository) Save(ctx context.Context, store *domain.IndexStore) error {
	if store == nil {
		return fmt.Errorf("save: nil store: %w", domain.ErrInvalidInput)
	}
	if err := validName(store.Name); err != nil {
		return fmt.Errorf("save store %q: %w", store.Name, err)
	}
	if err := store.Validate(); err != nil {
		return fmt.Errorf("save store %q: %w", store.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.root, store.Name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, DatabaseFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp database: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if err := writeStore(ctx, tmpPath, store); err != nil {
		return fmt.Errorf("save store %q: %w", store.Name, err)
	}

	if err := os.Rename(tmpPath, r.Path(store.Name)); err != nil {
		return fmt.Errorf("replacing store %q: %w", store.Name, err)
	}
	committed = true

	logger.Debug("saved index store %s (%d entries) to %s", store.Name, store.Len(), r.Path(store.Name))
	return nil
}

// Load reads the named store.
func (r *IndexRepository) Load(ctx context.Context, name string) (*domain.IndexStore, error) {
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("load store %q: %w", name, err)
	}

	path := r.Path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("stat store %q: %w", name, err)
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	store, err := readStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load store %q: %w", name, err)
	}
	return store, nil
}

// Exists reports whether the named store has a database file.
func (r *IndexRepository) Exists(_ context.Context, name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(r.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat store %q: %w", name, err)
}

// Delete removes the store directory.
func (r *IndexRepository) Delete(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(r.root, name)); err != nil {
		return fmt.Errorf("deleting store %q: %w", name, err)
	}
	return nil
}

// List returns the names of stores with a database file, sorted.
func (r *IndexRepository) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading index directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(r.Path(e.Name())); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return domain.ErrInvalidInput
	}
	return nil
}

// open uses a rollback journal so each database stays a single file that
// can be renamed into place.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(DELETE)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func writeStore(ctx context.Context, path string, store *domain.IndexStore) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	builtAt := store.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO store_meta (name, dimension, metric, model, built_at) VALUES (?, ?, ?, ?, ?)`,
		store.Name, store.Dimension, store.Metric.String(), store.Model, builtAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting store meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (position, doc_id, content, metadata, vector) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range store.Entries {
		meta := e.Document.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, i, e.Document.ID, e.Document.Content,
			string(metaJSON), float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("inserting entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing store: %w", err)
	}
	return nil
}

func readStore(ctx context.Context, db *sql.DB) (*domain.IndexStore, error) {
	var (
		store   domain.IndexStore
		metric  string
		builtAt string
	)
	row := db.QueryRowContext(ctx, `SELECT name, dimension, metric, model, built_at FROM store_meta LIMIT 1`)
	if err := row.Scan(&store.Name, &store.Dimension, &metric, &store.Model, &builtAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading store meta: %w", err)
	}
	store.Metric = domain.Metric(metric)
	if t, err := time.Parse(time.RFC3339Nano, builtAt); err == nil {
		store.BuiltAt = t
	}

	rows, err := db.QueryContext(ctx, `SELECT doc_id, content, metadata, vector FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	store.Entries = []domain.IndexEntry{}
	for rows.Next() {
		var (
			e        domain.IndexEntry
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&e.Document.ID, &e.Document.Content, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &e.Document.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		e.Vector = bytesToFloat32Slice(blob)
		store.Entries = append(store.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	if err := store.Validate(); err != nil {
		return nil, err
	}
	return &store, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
