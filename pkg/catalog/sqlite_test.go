package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ioschema/pkg/cache"
	"github.com/matzehuels/ioschema/pkg/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	s, err := CreateSQLite(ctx, filepath.Join(t.TempDir(), "bdd.sqlite3"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	for _, spec := range fixtureSpecs() {
		glyph := []byte(nil)
		if spec.IsCard() {
			glyph = []byte("<svg id='" + spec.ID + "'/>")
		}
		if err := s.Put(ctx, spec, glyph); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestSQLiteStoreLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	spec, ok, err := s.Lookup(ctx, "automate")
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if spec.Category != CategoryController {
		t.Errorf("category = %s, want controller", spec.Category)
	}
	if spec.Capacity.DI != 4 || spec.Capacity.DO != 2 {
		t.Errorf("capacity = %+v", spec.Capacity)
	}
	if spec.PageID() != "automate" {
		t.Errorf("PageID = %s", spec.PageID())
	}

	if _, ok, err := s.Lookup(ctx, "ghost"); ok || err != nil {
		t.Errorf("ghost lookup = %v, %v", ok, err)
	}
}

func TestSQLiteStoreGlyph(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	glyph, err := s.Glyph(ctx, "s4th_16_di")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(glyph), "s4th_16_di") {
		t.Errorf("glyph = %q", glyph)
	}
	if g, err := s.Glyph(ctx, "automate"); err != nil || len(g) != 0 {
		t.Errorf("controller glyph = %q, %v", g, err)
	}
	if g, err := s.Glyph(ctx, "ghost"); err != nil || g != nil {
		t.Errorf("ghost glyph = %q, %v", g, err)
	}
}

func TestSQLiteStoreAll(t *testing.T) {
	s := newTestStore(t)
	all, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(fixtureSpecs()) {
		t.Fatalf("All returned %d rows", len(all))
	}
	groups := Group(all)
	if groups[0].Brand != "Sofrel" {
		t.Errorf("first brand = %s", groups[0].Brand)
	}
}

func TestOpenSQLiteMissing(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "missing.sqlite3"))
	if !errors.Is(err, errors.ErrCodeCatalogNotFound) {
		t.Errorf("err = %v, want CATALOG_NOT_FOUND", err)
	}
}

func TestSQLiteStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	other, err := CreateSQLite(ctx, filepath.Join(t.TempDir(), "other.sqlite3"))
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Put(ctx, ModuleSpec{ID: "only_one", Category: CategoryCard, Capacity: Capacity{AO: 2}}, nil); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := other.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	other.Close()

	n, err := s.Replace(ctx, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("Replace reported zero bytes")
	}
	if _, ok, _ := s.Lookup(ctx, "automate"); ok {
		t.Error("old rows still visible after Replace")
	}
	if spec, ok, _ := s.Lookup(ctx, "only_one"); !ok || spec.Capacity.AO != 2 {
		t.Errorf("new row = %+v, %v", spec, ok)
	}
}

func TestSQLiteStoreReplaceRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Replace(ctx, strings.NewReader("definitely not sqlite"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if _, ok, _ := s.Lookup(ctx, "automate"); !ok {
		t.Error("catalog lost after rejected upload")
	}
	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".catalog-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSQLiteStoreReplaceRenameFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	rename = func(string, string) error { return fmt.Errorf("device busy") }
	t.Cleanup(func() { rename = os.Rename })

	if _, err := s.Replace(ctx, &buf); err == nil {
		t.Fatal("Replace succeeded despite rename failure")
	}
	spec, ok, err := s.Lookup(ctx, "s4th_16_di")
	if err != nil || !ok || spec.Capacity.DI != 16 {
		t.Errorf("Lookup after failed Replace = %+v, %v, %v", spec, ok, err)
	}
}

func TestSQLiteStoreLenientCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO materiel (nom, type, nb_di, nb_do, nb_ai_t, nb_ao, ordre_gui)
		VALUES ('legacy_card', 'carte', '', 'abc', '8.0', ' 2 sorties', NULL)`)
	if err != nil {
		t.Fatal(err)
	}

	spec, ok, err := s.Lookup(ctx, "legacy_card")
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	want := Capacity{DI: 0, DO: 0, AI: 8, AO: 2}
	if spec.Capacity != want {
		t.Errorf("capacity = %+v, want %+v", spec.Capacity, want)
	}
	if spec.GUIOrder != 0 {
		t.Errorf("GUIOrder = %d, want 0", spec.GUIOrder)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"16", 16},
		{"", 0},
		{"abc", 0},
		{"8.0", 8},
		{" 4 DI", 4},
		{"-", 0},
		{"-3", -3},
	}
	for _, tt := range tests {
		if got := parseCount(tt.in); got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSQLiteStoreVersion(t *testing.T) {
	s := newTestStore(t)

	v1, err := s.Version()
	if err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(s.Path(), later, later); err != nil {
		t.Fatal(err)
	}
	v2, err := s.Version()
	if err != nil {
		t.Fatal(err)
	}
	if v1 == v2 {
		t.Errorf("version unchanged after modification: %s", v1)
	}
}

// storeWith creates a catalog file in its own directory holding one spec.
func storeWith(t *testing.T, spec ModuleSpec) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	s, err := CreateSQLite(ctx, filepath.Join(t.TempDir(), "materiel.sqlite3"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Put(ctx, spec, []byte("<svg id='"+spec.ID+"'/>")); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCachedCatalogsShareCacheDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a := storeWith(t, ModuleSpec{ID: "s4th_16_di", Category: CategoryCard, Capacity: Capacity{DI: 16}})
	b := storeWith(t, ModuleSpec{ID: "s4th_16_di", Category: CategoryCard, Capacity: Capacity{DI: 4}})

	for _, tc := range []struct {
		name  string
		store *SQLiteStore
		want  int
	}{
		{"first catalog", a, 16},
		{"second catalog", b, 4},
		{"first catalog again", a, 16},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				t.Fatal(err)
			}
			g := NewCached(tc.store, fc, "")
			spec, ok, err := g.Lookup(ctx, "s4th_16_di")
			if err != nil || !ok {
				t.Fatalf("Lookup = %v, %v", ok, err)
			}
			if spec.Capacity.DI != tc.want {
				t.Errorf("DI = %d, want %d", spec.Capacity.DI, tc.want)
			}
		})
	}
}

func TestCachedCatalogFollowsEdits(t *testing.T) {
	ctx := context.Background()
	s := storeWith(t, ModuleSpec{ID: "s4th_16_di", Category: CategoryCard, Capacity: Capacity{DI: 16}})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	g := NewCached(s, fc, "site")

	if spec, _, _ := g.Lookup(ctx, "s4th_16_di"); spec.Capacity.DI != 16 {
		t.Fatalf("DI = %d, want 16", spec.Capacity.DI)
	}
	if _, ok, _ := g.Lookup(ctx, "s4th_8_do"); ok {
		t.Fatal("s4th_8_do found before it was added")
	}

	if err := s.Put(ctx, ModuleSpec{ID: "s4th_16_di", Category: CategoryCard, Capacity: Capacity{DI: 12}}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, ModuleSpec{ID: "s4th_8_do", Category: CategoryCard, Capacity: Capacity{DO: 8}}, nil); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(s.Path(), later, later); err != nil {
		t.Fatal(err)
	}

	if spec, _, _ := g.Lookup(ctx, "s4th_16_di"); spec.Capacity.DI != 12 {
		t.Errorf("DI after edit = %d, want 12", spec.Capacity.DI)
	}
	if _, ok, _ := g.Lookup(ctx, "s4th_8_do"); !ok {
		t.Error("s4th_8_do still reported missing after it was added")
	}
}
