package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ',', cfg.Input.DelimiterRune())
	assert.Equal(t, []string{ColUserGender}, cfg.Cleaning.OptionalFields)
	assert.Equal(t, 4.0, cfg.Sentiment.PositiveAbove)
	assert.Equal(t, 2.0, cfg.Sentiment.NegativeBelow)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"multi-char delimiter", func(c *Config) { c.Input.Delimiter = ";;" }},
		{"empty delimiter", func(c *Config) { c.Input.Delimiter = "" }},
		{"no date layouts", func(c *Config) { c.Cleaning.DateLayouts = nil }},
		{"blank date layout", func(c *Config) { c.Cleaning.DateLayouts = []string{""} }},
		{"inverted thresholds", func(c *Config) { c.Sentiment.NegativeBelow = 4.5 }},
		{"zero workers", func(c *Config) { c.Concurrency.Workers = 0 }},
		{"cache without dir", func(c *Config) { c.Cache.Dir = "" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_CacheDisabledWithoutDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.Dir = ""
	assert.NoError(t, cfg.Validate())
}

func TestInputConfig_DelimiterRune(t *testing.T) {
	assert.Equal(t, '\t', InputConfig{Delimiter: "\t"}.DelimiterRune())
	assert.Equal(t, ';', InputConfig{Delimiter: ";"}.DelimiterRune())
	assert.Equal(t, ',', InputConfig{}.DelimiterRune())
}

func TestSentimentCounts(t *testing.T) {
	var c SentimentCounts
	c.Add(SentimentPositive)
	c.Add(SentimentNeutral)
	c.Add(SentimentNegative)
	c.Add(SentimentNegative)

	assert.Equal(t, SentimentCounts{Positive: 1, Neutral: 1, Negative: 2}, c)
	assert.Equal(t, 4, c.Total())
}
