// Package config collects the settings of the ipif tool from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/ipif/regs"
)

// Environment variables read by Load.
const (
	EnvBase     = "IPIF_BASE"
	EnvWidth    = "IPIF_WIDTH"
	EnvRecord   = "IPIF_RECORD"
	EnvPort     = "IPIF_PORT"
	EnvLogLevel = "IPIF_LOG_LEVEL"
)

// Config holds the defaults of the command-line flags.
type Config struct {
	Base     uint64
	Width    int
	Record   string
	Port     int
	LogLevel slog.Level
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Base:     0x40000000,
		Width:    regs.MaxInterruptWidth,
		LogLevel: slog.LevelInfo,
	}
}

// Load reads the given .env files, or ./.env when none is given, and then
// the process environment. Missing .env files are not an error. Variables
// already set in the environment win over .env files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()

	if v, ok := lookup(EnvBase); ok {
		base, err := ParseAddress(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvBase, err)
		}

		c.Base = base
	}

	if v, ok := lookup(EnvWidth); ok {
		width, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvWidth, err)
		}

		c.Width = width
	}

	if v, ok := lookup(EnvRecord); ok {
		c.Record = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvPort, err)
		}

		c.Port = port
	}

	if v, ok := lookup(EnvLogLevel); ok {
		err := c.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v)))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	return c, c.Validate()
}

// Validate checks the ranges of the settings.
func (c Config) Validate() error {
	if c.Width < 0 || c.Width > regs.MaxInterruptWidth {
		return fmt.Errorf("IP interrupt width %d is out of range [0, %d]",
			c.Width, regs.MaxInterruptWidth)
	}

	if c.Base%4 != 0 {
		return fmt.Errorf("base address 0x%x is not word aligned", c.Base)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}

	return nil
}

// ParseAddress parses a decimal, 0x-prefixed hex, 0o octal or 0b binary
// address. Underscores are allowed as digit separators.
func ParseAddress(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}
