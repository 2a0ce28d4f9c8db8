package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all revstat settings
type Config struct {
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Cleaning    CleaningConfig    `yaml:"cleaning" mapstructure:"cleaning"`
	Sentiment   SentimentConfig   `yaml:"sentiment" mapstructure:"sentiment"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// InputConfig controls how the delimited input is read
type InputConfig struct {
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter" validate:"len=1"`
	MaxBytes  int64  `yaml:"max_bytes" mapstructure:"max_bytes" validate:"min=1"` // Inputs larger than this are refused
}

// CleaningConfig controls record validation and coercion
type CleaningConfig struct {
	NullTokens     []string `yaml:"null_tokens" mapstructure:"null_tokens"`         // Case-insensitive tokens treated as missing
	OptionalFields []string `yaml:"optional_fields" mapstructure:"optional_fields"` // Fields allowed to be nullish
	DateLayouts    []string `yaml:"date_layouts" mapstructure:"date_layouts" validate:"min=1,dive,required"`
}

// SentimentConfig holds the rating thresholds of the classifier
type SentimentConfig struct {
	PositiveAbove float64 `yaml:"positive_above" mapstructure:"positive_above"`
	NegativeBelow float64 `yaml:"negative_below" mapstructure:"negative_below" validate:"ltefield=PositiveAbove"`
}

// CacheConfig controls the analysis result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir" validate:"required_if=Enabled true"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=1"`
}

// OutputConfig controls report contents
type OutputConfig struct {
	Verbose           bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter     bool `yaml:"include_footer" mapstructure:"include_footer"`
	IncludeReviews    bool `yaml:"include_reviews" mapstructure:"include_reviews"`
	IncludeRejections bool `yaml:"include_rejections" mapstructure:"include_rejections"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"` // Prometheus textfile path, empty disables
}

// DefaultDateLayouts are tried in order when parsing review_date
var DefaultDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	time.RFC1123,
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Delimiter: ",",
			MaxBytes:  512 << 20,
		},
		Cleaning: CleaningConfig{
			NullTokens:     []string{"null", "na", "n/a"},
			OptionalFields: []string{ColUserGender},
			DateLayouts:    append([]string(nil), DefaultDateLayouts...),
		},
		Sentiment: SentimentConfig{
			PositiveAbove: 4.0,
			NegativeBelow: 2.0,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DelimiterRune returns the configured input delimiter as a rune
func (c InputConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "revstat")
}
