package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/classicq/internal/translate"
)

// Config is the optional YAML configuration file. Command-line flags
// override its values.
type Config struct {
	Translator TranslatorConfig `yaml:"translator"`

	// Database is the default SQLite path for batch and history.
	Database string `yaml:"database"`

	// Workers bounds concurrent translations in batch. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// TranslatorConfig mirrors translate.Options.
type TranslatorConfig struct {
	// UnicodeNFC is a pointer so an absent key keeps the default (on).
	UnicodeNFC    *bool    `yaml:"unicode_nfc"`
	ReservedWords []string `yaml:"reserved_words"`
	Wildcard      string   `yaml:"wildcard"`
}

// DefaultConfig returns the configuration used without --config.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads a YAML config file. Unknown keys are errors. An empty
// file yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("parse config %s: workers must not be negative", path)
	}
	return cfg, nil
}

// TranslateOptions converts the translator section to translate.Options.
func (c *Config) TranslateOptions() translate.Options {
	opts := translate.DefaultOptions()
	if c.Translator.UnicodeNFC != nil {
		opts.UnicodeNFC = *c.Translator.UnicodeNFC
	}
	opts.ReservedWords = c.Translator.ReservedWords
	opts.Wildcard = c.Translator.Wildcard
	return opts
}
