package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ioschema/pkg/assemble"
	"github.com/matzehuels/ioschema/pkg/cache"
	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/config"
	"github.com/matzehuels/ioschema/pkg/drawio"
	"github.com/matzehuels/ioschema/pkg/journal"
	"github.com/matzehuels/ioschema/pkg/pipeline"
)

// appOptions selects the backends a command needs.
type appOptions struct {
	journal bool
}

// app holds the opened backends shared by commands.
type app struct {
	cfg       *config.Config
	store     *catalog.SQLiteStore
	cache     cache.Cache
	cached    *catalog.Cached
	catalog   catalog.Gateway
	templates *drawio.FileRepository
	journal   journal.Store
	runner    *pipeline.Runner
}

func openApp(ctx context.Context, cfg *config.Config, opts appOptions, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, templates: drawio.NewFileRepository(cfg.Template.Path)}

	store, err := catalog.OpenSQLite(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.catalog = store

	a.cache, err = openCache(ctx, cfg.Cache, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if !cfg.Cache.Disabled {
		a.cached = catalog.NewCached(store, a.cache, cfg.Catalog.Scope,
			catalog.WithTTL(cfg.Cache.TTL.Duration, cache.TTLGlyph))
		a.catalog = a.cached
	}

	a.journal = journal.Discard{}
	if opts.journal {
		if a.journal, err = openJournal(ctx, cfg.Journal, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	precedence := catalog.DefaultPrecedence()
	if cfg.Diagram.PrecedencePath != "" {
		if precedence, err = catalog.LoadPrecedence(cfg.Diagram.PrecedencePath); err != nil {
			a.Close()
			return nil, err
		}
	}

	asmOpts := cfg.AssembleOptions()
	asmOpts.Glyphs = a.catalog
	asmOpts.Logger = logger

	a.runner = pipeline.NewRunner(a.catalog, a.templates, logger)
	a.runner.Precedence = precedence
	a.runner.Assembler = assemble.New(asmOpts)
	a.runner.Journal = a.journal
	return a, nil
}

// openCache prefers Redis, then the file cache, then no cache at all.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) (cache.Cache, error) {
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Debug("using redis cache", "addr", cfg.RedisAddr)
		return c, nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func openJournal(ctx context.Context, cfg config.JournalConfig, logger *log.Logger) (journal.Store, error) {
	if cfg.MongoURI == "" {
		return journal.NewMemory(cfg.Capacity), nil
	}
	store, err := journal.NewMongoStore(ctx, journal.MongoConfig{
		URI:        cfg.MongoURI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("connect journal: %w", err)
	}
	logger.Debug("using mongo journal", "database", cfg.Database)
	return store, nil
}

// cacheDir returns the configured cache directory or the user default.
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}

func (a *app) moduleIDs(ctx context.Context) ([]string, error) {
	specs, err := a.store.All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	return ids, nil
}

// WriteTo streams the catalog database.
func (a *app) WriteTo(w io.Writer) (int64, error) {
	return a.store.WriteTo(w)
}

// Replace swaps the catalog database and drops the cached lookups of every
// module known before or after the swap.
func (a *app) Replace(ctx context.Context, r io.Reader) (int64, error) {
	before, err := a.moduleIDs(ctx)
	if err != nil {
		return 0, err
	}
	n, err := a.store.Replace(ctx, r)
	if err != nil {
		return 0, err
	}
	if a.cached == nil {
		return n, nil
	}
	after, err := a.moduleIDs(ctx)
	if err != nil {
		return n, err
	}
	return n, a.cached.Invalidate(ctx, append(before, after...)...)
}

// Close releases every opened backend.
func (a *app) Close() error {
	var errs []error
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
