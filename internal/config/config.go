package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/kamusis/classmap/internal/index"
)

// FileName is the default config file name, looked up in the working
// directory.
const FileName = "classmap.yaml"

// Environment keys that override the config file.
const (
	EnvCache         = "CLASSMAP_CACHE"
	EnvLocation      = "CLASSMAP_LOCATION"
	EnvOnlyNamespace = "CLASSMAP_ONLY_NAMESPACE"
)

// Root is a directory to index.
type Root struct {
	Path      string `yaml:"path"`
	Recursive bool   `yaml:"recursive"`
}

// Ignore marks a directory to skip (Skip: true) or to index without
// descending into it (Skip: false).
type Ignore struct {
	Path string `yaml:"path"`
	Skip bool   `yaml:"skip"`
}

// Config is the in-memory representation of classmap.yaml.
type Config struct {
	Cache          string   `yaml:"cache"`
	Location       string   `yaml:"location,omitempty"`
	Roots          []Root   `yaml:"roots"`
	Ignore         []Ignore `yaml:"ignore,omitempty"`
	Pattern        string   `yaml:"pattern,omitempty"`
	IgnoreEntries  []string `yaml:"ignore_entries,omitempty"`
	SkipDuplicates bool     `yaml:"skip_duplicates"`
	OnlyNamespace  bool     `yaml:"only_namespace"`
	StaleAfter     string   `yaml:"stale_after,omitempty"`
	SentinelKey    string   `yaml:"sentinel_key,omitempty"`

	// dir is the directory holding the config file; relative cache paths
	// and the .env file are resolved against it.
	dir string
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the config written by classmap init.
func DefaultConfig() *Config {
	return &Config{
		Cache:          ".classmap.json",
		Roots:          []Root{{Path: "./src/", Recursive: true}},
		Pattern:        index.DefaultPattern.String(),
		IgnoreEntries:  append([]string(nil), index.DefaultIgnoreEntries...),
		SkipDuplicates: true,
		StaleAfter:     autoload.DefaultStaleAfter.String(),
		SentinelKey:    index.DefaultSentinelKey,
		dir:            ".",
	}
}

// Load reads and validates the config at path, then applies environment
// overrides (process environment first, then the .env file next to path).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg := Config{SkipDuplicates: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Cache, err = ExpandPath(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v, err := GetConfigValue(c.dir, EnvCache); err != nil {
		return err
	} else if v != "" {
		c.Cache = v
	}
	if v, err := GetConfigValue(c.dir, EnvLocation); err != nil {
		return err
	} else if v != "" {
		c.Location = v
	}
	if v, err := GetConfigValue(c.dir, EnvOnlyNamespace); err != nil {
		return err
	} else if v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvOnlyNamespace, v, err)
		}
		c.OnlyNamespace = b
	}
	return nil
}

// Save marshals cfg and writes it to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields Load cannot check by type alone.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("no roots configured")
	}
	for i, r := range c.Roots {
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("roots[%d]: path is required", i)
		}
	}
	for i, ig := range c.Ignore {
		if strings.TrimSpace(ig.Path) == "" {
			return fmt.Errorf("ignore[%d]: path is required", i)
		}
	}
	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
		}
	}
	if _, err := c.staleAfter(); err != nil {
		return err
	}
	return nil
}

func (c *Config) staleAfter() (time.Duration, error) {
	if c.StaleAfter == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.StaleAfter)
	if err != nil {
		return 0, fmt.Errorf("invalid stale_after %q: %w", c.StaleAfter, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid stale_after %q: must not be negative", c.StaleAfter)
	}
	return d, nil
}

// CachePath returns the cache file path resolved against the config
// directory, or "" when the cache is disabled.
func (c *Config) CachePath() string {
	if c.Cache == "" || filepath.IsAbs(c.Cache) {
		return c.Cache
	}
	dir := c.dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, c.Cache)
}

// Options converts c into resolver options. Call Validate first.
func (c *Config) Options() (autoload.Options, error) {
	opts := autoload.Options{
		CacheFile:     c.CachePath(),
		Location:      c.Location,
		OnlyNamespace: c.OnlyNamespace,
		SentinelKey:   c.SentinelKey,
		IgnoreEntries: c.IgnoreEntries,
		Duplicates:    index.DuplicatesFatal,
	}
	if c.SkipDuplicates {
		opts.Duplicates = index.DuplicatesLastWins
	}
	for _, r := range c.Roots {
		opts.Roots = append(opts.Roots, index.Root{Path: r.Path, Recursive: r.Recursive})
	}
	if len(c.Ignore) > 0 {
		opts.Ignore = make(map[string]bool, len(c.Ignore))
		for _, ig := range c.Ignore {
			opts.Ignore[ig.Path] = ig.Skip
		}
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return autoload.Options{}, fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
		}
		opts.Pattern = re
	}
	d, err := c.staleAfter()
	if err != nil {
		return autoload.Options{}, err
	}
	opts.StaleAfter = d
	return opts, nil
}
