// Package config loads the CLI configuration file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/weft/pkg/codec"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "weft.yaml"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the content of weft.yaml.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Store  string `yaml:"store"`
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Redis  Redis  `yaml:"redis"`

	MaxPropagationDepth int  `yaml:"max_propagation_depth"`
	RejectCycles        bool `yaml:"reject_cycles"`
	StrictLoad          bool `yaml:"strict_load"`

	// EncryptionKey is a hex encoded 32 byte key. Empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
	Redact        []string `yaml:"redact"`

	// Templates are YAML files of extra node kinds for the catalog.
	Templates []string `yaml:"templates"`
}

// Redis configures the redis store and lock.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store:    StoreFile,
		Dir:      ".weft/graphs",
		Format:   string(codec.FormatXML),
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "weft:graph:",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are returned as they are.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if _, err := codec.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.MaxPropagationDepth < 0 {
		errs = append(errs, fmt.Errorf("max_propagation_depth must not be negative"))
	}
	if _, _, err := c.Keys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Keys decodes the encryption keys. The active key is nil when encryption
// is off.
func (c Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(c.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
