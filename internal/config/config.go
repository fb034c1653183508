// Package config loads the choosable configuration file.
//
// Configuration is TOML. Lookup order for the file:
//
//  1. the path given on the command line (--config)
//  2. $CHOOSABLE_CONFIG
//  3. $XDG_CONFIG_HOME/choosable/config.toml
//  4. ~/.config/choosable/config.toml
//
// A missing file at a default location means built-in defaults; a missing
// file that was asked for explicitly is an error. A .env file in the working
// directory is loaded first, and ${VAR} references in the file are expanded
// from the environment before decoding.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// EnvConfigPath names the environment variable that overrides the config location.
const EnvConfigPath = "CHOOSABLE_CONFIG"

const appName = "choosable"

func init() {
	// Report validation failures by their TOML key names.
	validation.ErrorTag = "toml"
}

// Config is the full configuration.
type Config struct {
	Log        LogConfig       `toml:"log"`
	Export     ExportConfig    `toml:"export"`
	Characters CharacterConfig `toml:"characters"`
	Shell      ShellConfig     `toml:"shell"`
	Serve      ServeConfig     `toml:"serve"`
	Cache      CacheConfig     `toml:"cache"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Log),
		validation.Field(&c.Export),
		validation.Field(&c.Characters),
		validation.Field(&c.Shell),
		validation.Field(&c.Serve),
		validation.Field(&c.Cache),
	)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"`
}

// Validate validates the log configuration.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// ExportConfig holds defaults for the export, watch and serve commands.
type ExportConfig struct {
	Format     string  `toml:"format"`
	Rankdir    string  `toml:"rankdir"`
	EndingFill string  `toml:"ending_fill"`
	EndingFont string  `toml:"ending_font"`
	PNGScale   float64 `toml:"png_scale"`
}

// Validate validates the export configuration.
func (c ExportConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Format, validation.Required, validation.In("dot", "svg", "png", "pdf")),
		validation.Field(&c.Rankdir, validation.In("TB", "LR", "BT", "RL")),
		validation.Field(&c.EndingFill, validation.Required, validation.By(validColor)),
		validation.Field(&c.EndingFont, validation.Required, validation.By(validColor)),
		validation.Field(&c.PNGScale, validation.Min(0.1), validation.Max(10.0)),
	)
}

// CharacterConfig holds the colors given to newly added characters.
type CharacterConfig struct {
	Fill string `toml:"fill"`
	Font string `toml:"font"`
}

// Validate validates the character defaults.
func (c CharacterConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Fill, validation.Required, validation.By(validColor)),
		validation.Field(&c.Font, validation.Required, validation.By(validColor)),
	)
}

// ShellConfig holds interactive shell configuration.
type ShellConfig struct {
	HistoryFile string `toml:"history_file"`
}

// Validate validates the shell configuration.
func (c ShellConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HistoryFile, validation.By(validPath)),
	)
}

// ServeConfig holds preview server configuration.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Validate validates the serve configuration.
func (c ServeConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required, validation.By(validHostPort)),
	)
}

// CacheConfig holds rendered-artifact cache configuration.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	TTL      Duration `toml:"ttl"`
}

// Validate validates the cache configuration.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.By(func(v any) error {
			if v.(Duration).Duration < 0 {
				return errors.New("must not be negative")
			}
			return nil
		})),
	)
}

// Duration is a time.Duration written as a string such as "24h" or "90m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Export: ExportConfig{
			Format:     "dot",
			EndingFill: "azure4",
			EndingFont: "white",
			PNGScale:   2.0,
		},
		Characters: CharacterConfig{Fill: "white", Font: "black"},
		Shell:      ShellConfig{},
		Serve:      ServeConfig{Addr: "127.0.0.1:8080"},
		Cache:      CacheConfig{TTL: Duration{24 * time.Hour}},
	}
}

// DefaultPath returns where the configuration file is looked up when no
// path is given.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultHistoryFile returns the shell history location used when the
// configuration leaves it empty.
func DefaultHistoryFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName, "history")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName, "history")
}

// Load reads the configuration at path, or at [DefaultPath] when path is
// empty, on top of [Default].
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
		explicit = os.Getenv(EnvConfigPath) != ""
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes configuration data on top of [Default]. Unknown keys are
// rejected so that typos do not go unnoticed. name is used in messages only.
func Parse(name string, data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(os.ExpandEnv(string(data)), cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config file %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidInput, "config file %s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "config file %s", name)
	}
	return cfg, nil
}

func validColor(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if err := errs.ValidateColor(s); err != nil {
		return errors.New(errs.UserMessage(err))
	}
	return nil
}

func validPath(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if err := errs.ValidatePath(s); err != nil {
		return errors.New(errs.UserMessage(err))
	}
	return nil
}

func validHostPort(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	i := strings.LastIndexByte(s, ':')
	if i < 0 || i == len(s)-1 {
		return errors.New("must be host:port")
	}
	return nil
}
