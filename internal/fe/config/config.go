// Package config loads the front-end's configuration from a gizzard.toml
// file: where caches live and how the external C toolchain is invoked.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config contains the front-end's settings.
type Config struct {
	// CacheDir is the directory the lexer DFAs, parse tables, and emitted C
	// sources are kept in.
	CacheDir string `toml:"cache_dir"`

	// CC is the C compiler command the emitted translation unit is handed
	// to.
	CC string `toml:"cc"`

	// CCFlags are extra flags passed to CC after the input and output
	// arguments.
	CCFlags []string `toml:"cc_flags"`

	// OutName is the name (under CacheDir) of the compiled program.
	OutName string `toml:"out_name"`
}

// Default returns the configuration used when no gizzard.toml is present.
func Default() Config {
	return Config{
		CacheDir: ".gizcache",
		CC:       "gcc",
		CCFlags:  []string{"-lm"},
		OutName:  "main",
	}
}

// Load reads path as TOML over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate returns an error if the Config does not have the correct fields
// set.
func (c Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir not set to path")
	}
	if c.CC == "" {
		return fmt.Errorf("cc not set to a compiler command")
	}
	if c.OutName == "" {
		return fmt.Errorf("out_name not set")
	}
	return nil
}
