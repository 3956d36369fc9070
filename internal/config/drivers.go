package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ItsNotGoodName/x-canvasview/internal/core"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// file is the shared read and atomic write logic of every driver.
type file struct {
	filePath string
	decode   func(r io.Reader, cfg *Config) error
	encode   func(w io.Writer, cfg Config) error
}

func (f file) Exists() (bool, error) {
	return core.FileExists(f.filePath)
}

// Read overlays the file on the defaults so missing keys keep their
// default value.
func (f file) Read() (Config, error) {
	fd, err := os.Open(f.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer fd.Close()

	cfg := Default()
	if err := f.decode(fd, &cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode %s: %w", f.filePath, err)
	}
	return cfg, nil
}

func (f file) Write(cfg Config) error {
	filePathTmp := f.filePath + ".tmp"
	fd, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := f.encode(fd, cfg); err != nil {
		fd.Close()
		return err
	}
	if err := fd.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, f.filePath)
}

type YAML struct{ file }

func NewYAML(filePath string) YAML {
	return YAML{file{
		filePath: filePath,
		decode:   func(r io.Reader, cfg *Config) error { return yaml.NewDecoder(r).Decode(cfg) },
		encode:   func(w io.Writer, cfg Config) error { return yaml.NewEncoder(w).Encode(cfg) },
	}}
}

type JSON struct{ file }

func NewJSON(filePath string) JSON {
	return JSON{file{
		filePath: filePath,
		decode:   func(r io.Reader, cfg *Config) error { return json.NewDecoder(r).Decode(cfg) },
		encode: func(w io.Writer, cfg Config) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}}
}

type TOML struct{ file }

func NewTOML(filePath string) TOML {
	return TOML{file{
		filePath: filePath,
		decode:   func(r io.Reader, cfg *Config) error { return toml.NewDecoder(r).Decode(cfg) },
		encode:   func(w io.Writer, cfg Config) error { return toml.NewEncoder(w).Encode(cfg) },
	}}
}
