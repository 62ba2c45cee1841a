package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/ioschema/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS materiel (
	nom          TEXT PRIMARY KEY,
	nom_complet  TEXT,
	marque       TEXT,
	type         TEXT,
	nb_di        INTEGER,
	nb_do        INTEGER,
	nb_ai_t      INTEGER,
	nb_ao        INTEGER,
	ordre_gui    INTEGER,
	code_base_64 TEXT
);`

const selectColumns = `nom, nom_complet, marque, type, nb_di, nb_do, nb_ai_t, nb_ao, ordre_gui`

// rename is swapped in tests.
var rename = os.Rename

// SQLiteStore serves the catalog from the `materiel` table of a SQLite file.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// OpenSQLite opens an existing catalog database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeCatalogNotFound, "catalog database not found: %s", path)
		}
		return nil, fmt.Errorf("stat catalog %s: %w", path, err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// CreateSQLite opens or creates a catalog database and ensures the schema exists.
func CreateSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	return db, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Version identifies the current content of the catalog file by its absolute
// path, modification time and size.
func (s *SQLiteStore) Version() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat catalog: %w", err)
	}
	return fmt.Sprintf("%s:%d:%d", abs, info.ModTime().UnixNano(), info.Size()), nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Lookup returns the card Spec for id.
func (s *SQLiteStore) Lookup(ctx context.Context, id string) (ModuleSpec, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM materiel WHERE nom = ?`, id)
	spec, err := scanSpec(row)
	if err == sql.ErrNoRows {
		return ModuleSpec{}, false, nil
	}
	if err != nil {
		return ModuleSpec{}, false, fmt.Errorf("query module %s: %w", id, err)
	}
	return spec, true, nil
}

// Glyph returns the module's overview image, as stored in code_base_64.
func (s *SQLiteStore) Glyph(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var code sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT code_base_64 FROM materiel WHERE nom = ?`, id).Scan(&code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query glyph %s: %w", id, err)
	}
	return []byte(code.String), nil
}

// All returns every module ordered by brand, category and GUI order.
func (s *SQLiteStore) All(ctx context.Context) ([]ModuleSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM materiel ORDER BY marque, type, ordre_gui`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var out []ModuleSpec
	for rows.Next() {
		spec, err := scanSpec(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, spec)
	}
	return out, rows.Err()
}

// Put inserts or replaces a module row.
func (s *SQLiteStore) Put(ctx context.Context, spec ModuleSpec, glyph []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO materiel
			(nom, nom_complet, marque, type, nb_di, nb_do, nb_ai_t, nb_ao, ordre_gui, code_base_64)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		spec.ID, spec.DisplayName, spec.Brand, categoryToken(spec.Category),
		spec.Capacity.DI, spec.Capacity.DO, spec.Capacity.AI, spec.Capacity.AO,
		spec.GUIOrder, string(glyph),
	)
	if err != nil {
		return fmt.Errorf("store module %s: %w", spec.ID, err)
	}
	return nil
}

// Replace swaps the database file for the content of r. The upload is
// checked for a readable `materiel` table before it replaces the current file.
func (s *SQLiteStore) Replace(ctx context.Context, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catalog-*.sqlite3")
	if err != nil {
		return 0, fmt.Errorf("create temp catalog: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write temp catalog: %w", err)
	}

	if err := checkCatalog(ctx, tmpPath); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return 0, fmt.Errorf("close catalog: %w", err)
	}
	if err := rename(tmpPath, s.path); err != nil {
		if db, oerr := openDB(s.path); oerr == nil {
			s.db = db
		}
		return 0, fmt.Errorf("replace catalog: %w", err)
	}
	db, err := openDB(s.path)
	if err != nil {
		return 0, err
	}
	s.db = db
	return n, nil
}

// WriteTo streams the database file to w.
func (s *SQLiteStore) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return io.Copy(w, f)
}

func checkCatalog(ctx context.Context, path string) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materiel`).Scan(&n); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "uploaded file is not a catalog database")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpec(row scanner) (ModuleSpec, error) {
	var (
		id                       string
		name, brand, category    sql.NullString
		di, do, ai, ao, guiOrder sql.NullString
	)
	if err := row.Scan(&id, &name, &brand, &category, &di, &do, &ai, &ao, &guiOrder); err != nil {
		return ModuleSpec{}, err
	}
	return ModuleSpec{
		ID:          id,
		DisplayName: name.String,
		Brand:       brand.String,
		Category:    ParseCategory(category.String),
		Capacity: Capacity{
			DI: parseCount(di.String),
			DO: parseCount(do.String),
			AI: parseCount(ai.String),
			AO: parseCount(ao.String),
		},
		TemplatePageID: id,
		GUIOrder:       parseCount(guiOrder.String),
	}, nil
}

// parseCount reads the leading integer of a legacy numeric column. Empty or
// non-numeric text counts as 0; "16.0" and "16 DI" read as 16.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func categoryToken(c Category) string {
	switch c {
	case CategoryController:
		return tokenController
	case CategoryCard:
		return tokenCard
	}
	return strings.ToLower(string(c))
}

var _ Gateway = (*SQLiteStore)(nil)
