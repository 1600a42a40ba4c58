package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/inklet/inklet/pkg/model"
)

// Config holds settings loaded from the TOML config file. Every field has
// a working default so the file is optional.
type Config struct {
	// Compress controls whether exported page payloads are deflate+base64
	// encoded or written as plain XML.
	Compress bool `toml:"compress"`

	// DetachPolicy selects what happens to connectors when a referenced
	// element is deleted: "detach" (default) or "cascade".
	DetachPolicy string `toml:"detach_policy"`

	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	// Backend is one of "file" (default), "memory", "redis", or "mongo".
	Backend string `toml:"backend"`

	// Dir is the document directory for the file backend.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the document HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Compress:     true,
		DetachPolicy: "detach",
		Store: StoreConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: appName},
		},
		Server: ServerConfig{Addr: ":8416"},
	}
}

// LoadConfig reads the TOML config at path, or the default XDG location
// when path is empty. A missing default file is not an error; an explicit
// path that does not exist is.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = configPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0])
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "", "file", "memory", "redis", "mongo":
	default:
		return errUnknownBackend(c.Store.Backend)
	}
	switch c.DetachPolicy {
	case "", "detach", "cascade":
	default:
		return fmt.Errorf("invalid detach_policy: %s (must be 'detach' or 'cascade')", c.DetachPolicy)
	}
	return nil
}

// detachPolicy maps the configured policy name to the model constant.
func (c *Config) detachPolicy() model.DetachPolicy {
	if c.DetachPolicy == "cascade" {
		return model.CascadeConnectors
	}
	return model.DetachEndpoints
}

func errUnknownBackend(name string) error {
	return fmt.Errorf("unknown store backend: %s (must be 'file', 'memory', 'redis', or 'mongo')", name)
}
