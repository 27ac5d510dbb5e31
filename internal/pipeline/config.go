package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/triage-corpus/internal/balance"
	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/split"
	"github.com/rcliao/triage-corpus/internal/taxonomy"
	"github.com/rcliao/triage-corpus/internal/tokenize"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// Config controls one pipeline run.
type Config struct {
	// Taxonomy is a YAML taxonomy file (empty = embedded default)
	Taxonomy string `yaml:"taxonomy" json:"taxonomy,omitempty"`
	// SamplesPerCategory is the number of randomly synthesized strings per category
	SamplesPerCategory int  `yaml:"samples_per_category" json:"samples_per_category"`
	IncludeExamples    bool `yaml:"include_examples" json:"include_examples"`
	IncludeVariations  bool `yaml:"include_variations" json:"include_variations"`
	// SynthSeed seeds synthesis (0 = time-seeded)
	SynthSeed int64 `yaml:"synth_seed" json:"synth_seed"`
	// Workers bounds parallel per-category synthesis
	Workers         int     `yaml:"workers" json:"workers"`
	BalanceCap      int     `yaml:"balance_cap" json:"balance_cap"`
	VocabSize       int     `yaml:"vocab_size" json:"vocab_size"`
	MinFrequency    int     `yaml:"min_frequency" json:"min_frequency"`
	MaxLength       int     `yaml:"max_length" json:"max_length"`
	ValidationRatio float64 `yaml:"validation_ratio" json:"validation_ratio"`
	SplitSeed       int64   `yaml:"split_seed" json:"split_seed"`
	// OutputDir receives the artifact files
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// DefaultConfig returns a Config with the stock settings.
func DefaultConfig() *Config {
	return &Config{
		SamplesPerCategory: 200,
		IncludeExamples:    true,
		IncludeVariations:  true,
		Workers:            4,
		BalanceCap:         balance.DefaultCap,
		VocabSize:          vocab.DefaultSize,
		MinFrequency:       vocab.DefaultMinFrequency,
		MaxLength:          tokenize.DefaultMaxLength,
		ValidationRatio:    split.DefaultValidationRatio,
		SplitSeed:          split.DefaultSeed,
		OutputDir:          "data",
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A relative
// taxonomy path is resolved against the config file's directory and made
// absolute.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	if cfg.Taxonomy != "" && !filepath.IsAbs(cfg.Taxonomy) {
		abs, err := filepath.Abs(filepath.Join(filepath.Dir(path), cfg.Taxonomy))
		if err != nil {
			return nil, fmt.Errorf("resolve taxonomy path: %w", err)
		}
		cfg.Taxonomy = abs
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// YAML encodes the config.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// SaveToFile writes the config as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.SamplesPerCategory < 0 {
		return fmt.Errorf("samples_per_category must be >= 0, got %d", c.SamplesPerCategory)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.VocabSize < len(model.ReservedTokens) {
		return fmt.Errorf("vocab_size must be >= %d, got %d", len(model.ReservedTokens), c.VocabSize)
	}
	if c.MinFrequency < 1 {
		return fmt.Errorf("min_frequency must be >= 1, got %d", c.MinFrequency)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("max_length must be >= 0, got %d", c.MaxLength)
	}
	if c.ValidationRatio < 0 || c.ValidationRatio > 1 {
		return fmt.Errorf("validation_ratio must be in [0, 1], got %g", c.ValidationRatio)
	}
	return nil
}

// LoadTaxonomy returns the configured taxonomy or the embedded default.
func (c *Config) LoadTaxonomy() (*taxonomy.Taxonomy, error) {
	if c.Taxonomy == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFromFile(c.Taxonomy)
}
