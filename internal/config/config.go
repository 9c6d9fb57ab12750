package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/invcore/pkg/inventory"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds all invctl configuration
type Config struct {
	Catalog    CatalogConfig      `yaml:"catalog"`
	Player     CollectionConfig   `yaml:"player"`
	Containers []CollectionConfig `yaml:"containers"`
	Combine    []CombineConfig    `yaml:"combine"`
	Storage    StorageConfig      `yaml:"storage"`
	Log        LogConfig          `yaml:"log"`
}

// CatalogConfig points at the item and recipe files. Empty paths select
// the built-in sample data.
type CatalogConfig struct {
	Items   string `yaml:"items"`
	Recipes string `yaml:"recipes"`
}

// CollectionConfig describes one collection and its starting contents
type CollectionConfig struct {
	ID            string            `yaml:"id"`
	MaxSlots      int               `yaml:"max_slots"`
	Reorderable   bool              `yaml:"reorderable"`
	Categories    []int             `yaml:"categories"`
	CraftingStage bool              `yaml:"crafting_stage"`
	Items         []inventory.Entry `yaml:"items"`
}

// Options converts the settings into collection options.
func (c CollectionConfig) Options() []inventory.Option {
	opts := []inventory.Option{
		inventory.WithMaxSlots(c.MaxSlots),
		inventory.WithReorder(c.Reorderable),
	}
	if len(c.Categories) > 0 {
		ids := make([]inventory.CategoryID, len(c.Categories))
		for i, id := range c.Categories {
			ids[i] = inventory.CategoryID(id)
		}
		opts = append(opts, inventory.WithCategories(ids...))
	}
	if c.CraftingStage {
		opts = append(opts, inventory.AsCraftingStage())
	}
	return opts
}

// CombineConfig is one entry of the combine rule table
type CombineConfig struct {
	First   int    `yaml:"first"`
	Second  int    `yaml:"second"`
	Outcome string `yaml:"outcome"`
}

// StorageConfig selects where collection snapshots are saved
type StorageConfig struct {
	Backend  string       `yaml:"backend"` // memory, redis or sqlite
	AutoLoad bool         `yaml:"autoload"`
	AutoSave bool         `yaml:"autosave"`
	Redis    RedisConfig  `yaml:"redis"`
	SQLite   SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SQLiteConfig holds the SQLite database location
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not provided
	if cfg.Player.ID == "" {
		cfg.Player.ID = "player"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	if cfg.Storage.Redis.Address == "" {
		cfg.Storage.Redis.Address = "localhost:6379"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "invcore:"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "invcore.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	seen := map[string]struct{}{c.Player.ID: {}}
	for i, cc := range c.Containers {
		if cc.ID == "" {
			return fmt.Errorf("container %d: id cannot be empty", i)
		}
		if _, dup := seen[cc.ID]; dup {
			return fmt.Errorf("container %d: duplicate id %q", i, cc.ID)
		}
		seen[cc.ID] = struct{}{}
		if cc.MaxSlots < 0 {
			return fmt.Errorf("container %q: max_slots cannot be negative", cc.ID)
		}
	}
	for i, r := range c.Combine {
		if r.Outcome == "" {
			return fmt.Errorf("combine rule %d: outcome cannot be empty", i)
		}
	}
	return nil
}
