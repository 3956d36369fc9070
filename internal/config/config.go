// Package config loads the window defaults from a YAML, JSON or TOML file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// NewDriver picks a driver by file extension. A path without an extension
// is YAML.
func NewDriver(filePath string) (Driver, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml", "":
		return NewYAML(filePath), nil
	case ".json":
		return NewJSON(filePath), nil
	case ".toml":
		return NewTOML(filePath), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
}

// NewStore writes the defaults when the file does not exist yet.
func NewStore(driver Driver) (*Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := driver.Write(Default()); err != nil {
			return nil, err
		}
	}

	return &Store{
		driver: driver,
	}, nil
}

// Store validates every config it hands out or writes.
type Store struct {
	mu     sync.Mutex
	driver Driver
}

func (p *Store) GetConfig() (Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, err := p.driver.Read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return p.driver.Write(cfg)
}
