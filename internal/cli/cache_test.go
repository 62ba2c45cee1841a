package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/config"
)

func TestCacheDir(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "c")
	dir, err := cacheDir(config.CacheConfig{Dir: custom})
	if err != nil || dir != custom {
		t.Errorf("cacheDir(custom) = %q, %v", dir, err)
	}

	dir, err = cacheDir(config.CacheConfig{})
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestOpenAppCatalogsShareCacheDir(t *testing.T) {
	ctx := context.Background()
	cacheRoot := t.TempDir()
	logger := log.New(io.Discard)

	newCatalog := func(di int) string {
		path := filepath.Join(t.TempDir(), "materiel.sqlite3")
		store, err := catalog.CreateSQLite(ctx, path)
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()
		spec := catalog.ModuleSpec{ID: "s4th_16_di", Category: catalog.CategoryCard, Capacity: catalog.Capacity{DI: di}}
		if err := store.Put(ctx, spec, nil); err != nil {
			t.Fatal(err)
		}
		return path
	}

	for _, tc := range []struct {
		path string
		want int
	}{
		{newCatalog(16), 16},
		{newCatalog(4), 4},
	} {
		cfg := config.Default()
		cfg.Catalog.Path = tc.path
		cfg.Cache.Dir = cacheRoot

		a, err := openApp(ctx, &cfg, appOptions{}, logger)
		if err != nil {
			t.Fatal(err)
		}
		spec, ok, err := a.catalog.Lookup(ctx, "s4th_16_di")
		a.Close()
		if err != nil || !ok {
			t.Fatalf("Lookup = %v, %v", ok, err)
		}
		if spec.Capacity.DI != tc.want {
			t.Errorf("%s: DI = %d, want %d", tc.path, spec.Capacity.DI, tc.want)
		}
	}
}
