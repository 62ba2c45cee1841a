// Package config loads ioschema settings.
//
// Settings come from three layers, later ones winning:
//
//  1. [Default] values
//  2. A TOML file (see [Load])
//  3. IOSCHEMA_* environment variables (see [Config.ApplyEnv])
//
// A minimal file:
//
//	[catalog]
//	path = "/srv/ioschema/materiel.sqlite3"
//
//	[template]
//	path = "/srv/ioschema/template.drawio"
//
//	[cache]
//	redis_addr = "localhost:6379"
//	ttl = "30m"
package config

import (
	"fmt"
	"time"

	"github.com/matzehuels/ioschema/pkg/assemble"
	"github.com/matzehuels/ioschema/pkg/cache"
	"github.com/matzehuels/ioschema/pkg/errors"
)

// Config is the full ioschema configuration.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Template TemplateConfig `toml:"template"`
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Journal  JournalConfig  `toml:"journal"`
	Diagram  DiagramConfig  `toml:"diagram"`
}

// CatalogConfig locates the module catalog database.
type CatalogConfig struct {
	Path string `toml:"path"`
	// Scope adds a namespace to cache keys. Keys always carry the catalog
	// file's path, modification time and size.
	Scope string `toml:"scope"`
}

// TemplateConfig locates the master diagram.
type TemplateConfig struct {
	Path string `toml:"path"`
}

// ServerConfig configures `ioschema serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects the catalog lookup cache. RedisAddr takes precedence
// over Dir; Disabled turns caching off.
type CacheConfig struct {
	Disabled  bool     `toml:"disabled"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisPass string   `toml:"redis_password"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// JournalConfig selects the generation journal. An empty MongoURI keeps
// the journal in memory.
type JournalConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Capacity   int    `toml:"capacity"`
}

// DiagramConfig tunes assembly.
type DiagramConfig struct {
	UnusedMarker   string                  `toml:"unused_marker"`
	PrecedencePath string                  `toml:"precedence_path"`
	Tokens         assemble.Tokens         `toml:"tokens"`
	Overview       assemble.OverviewLayout `toml:"overview"`
}

// Duration is a time.Duration written as "10m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog:  CatalogConfig{Path: "materiel.sqlite3"},
		Template: TemplateConfig{Path: "template.drawio"},
		Server:   ServerConfig{Addr: ":3001"},
		Cache:    CacheConfig{TTL: Duration{cache.TTLModule}},
		Journal:  JournalConfig{Database: "ioschema", Collection: "generations", Capacity: 50},
		Diagram: DiagramConfig{
			UnusedMarker: assemble.DefaultUnusedMarker,
			Tokens:       assemble.DefaultTokens(),
			Overview:     assemble.DefaultOverviewLayout(),
		},
	}
}

// Validate reports settings that would fail later at startup.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "catalog.path is required")
	}
	if c.Template.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "template.path is required")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Journal.Capacity < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "journal.capacity must not be negative")
	}
	ov := c.Diagram.Overview
	if ov.Width <= 0 || ov.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "diagram.overview: width and height must be positive")
	}
	return nil
}

// AssembleOptions converts the diagram settings for assemble.New.
func (c *Config) AssembleOptions() assemble.Options {
	return assemble.Options{
		Tokens:       c.Diagram.Tokens,
		Overview:     c.Diagram.Overview,
		UnusedMarker: c.Diagram.UnusedMarker,
	}
}

// String summarizes where data lives, for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("catalog=%s template=%s", c.Catalog.Path, c.Template.Path)
}
