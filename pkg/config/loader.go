package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ioschema/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IOSCHEMA_"

// FileName is the configuration file looked up by [Find].
const FileName = "ioschema.toml"

// Load reads path over the defaults, then applies environment overrides.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read config %s", path)
		}
		if err := cfg.decode(data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decode(data []byte) error {
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown key %s", undecoded[0])
	}
	return nil
}

// resolvePaths makes file paths relative to the config file's directory.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Catalog.Path, &c.Template.Path, &c.Cache.Dir, &c.Diagram.PrecedencePath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// ApplyEnv overrides settings from IOSCHEMA_* variables. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CATALOG":        &c.Catalog.Path,
		"CATALOG_SCOPE":  &c.Catalog.Scope,
		"TEMPLATE":       &c.Template.Path,
		"ADDR":           &c.Server.Addr,
		"CACHE_DIR":      &c.Cache.Dir,
		"REDIS_ADDR":     &c.Cache.RedisAddr,
		"REDIS_PASSWORD": &c.Cache.RedisPass,
		"MONGO_URI":      &c.Journal.MongoURI,
		"MONGO_DATABASE": &c.Journal.Database,
		"UNUSED_MARKER":  &c.Diagram.UnusedMarker,
		"PRECEDENCE":     &c.Diagram.PrecedencePath,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sREDIS_DB", EnvPrefix)
		}
		c.Cache.RedisDB = n
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sCACHE_TTL", EnvPrefix)
		}
		c.Cache.TTL = Duration{d}
	}
	if v, ok := lookup(EnvPrefix + "NO_CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sNO_CACHE", EnvPrefix)
		}
		c.Cache.Disabled = b
	}
	return nil
}

// Find returns FileName in dir or any parent, or "" when there is none.
func Find(dir string) string {
	for {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes cfg as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
