// Package config handles bfx.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nf/bfx/bf"
)

// FileName is the name of the configuration file.
const FileName = "bfx.toml"

// DefaultDelay is the pause between instructions in visual mode.
const DefaultDelay = 100 * time.Millisecond

// Config represents a bfx.toml configuration.
type Config struct {
	Run     Run     `toml:"run"`
	Display Display `toml:"display"`

	// Dir is the directory containing the bfx.toml file (set at load time).
	Dir string `toml:"-"`
}

// Run configures program execution.
type Run struct {
	EOF         bf.EOFMode `toml:"eof"`
	MaxSegments int        `toml:"max_segments"`
	Input       string     `toml:"input"` // relative to Dir
}

// Display configures how execution is shown.
type Display struct {
	Delay  Duration `toml:"delay"`
	Visual bool     `toml:"visual"`
	GUI    bool     `toml:"gui"`
}

// Duration is a time.Duration written as a string, such as "100ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", text)
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when there is no bfx.toml.
func Default() *Config {
	return &Config{
		Run:     Run{EOF: bf.EOFBlock},
		Display: Display{Delay: Duration{DefaultDelay}},
	}
}

// Validate reports settings that are out of range.
// Load validates the file it reads; settings changed after loading
// should be validated again.
func (c *Config) Validate() error {
	if c.Run.MaxSegments < 0 {
		return fmt.Errorf("max_segments must not be negative")
	}
	if c.Display.Delay.Duration < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	return nil
}

// Load parses the bfx.toml file in the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a bfx.toml file,
// then loads and returns it. It returns the default configuration
// if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// InputPath returns the path of the configured input file,
// or the empty string if input comes from the console.
func (c *Config) InputPath() string {
	if c.Run.Input == "" {
		return ""
	}
	if filepath.IsAbs(c.Run.Input) {
		return c.Run.Input
	}
	return filepath.Join(c.Dir, c.Run.Input)
}
