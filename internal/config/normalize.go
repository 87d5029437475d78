package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTokenizer()
	c.normalizeLogging()
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if dir, ok := os.LookupEnv("TIMEWEAVE_CACHE_DIR"); ok && strings.TrimSpace(dir) != "" {
		c.Paths.CacheDir = strings.TrimSpace(dir)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	var err error
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeTokenizer trims abbreviations and drops blanks and duplicates,
// keeping first-seen order.
func (c *Config) normalizeTokenizer() {
	if len(c.Tokenizer.Abbreviations) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(c.Tokenizer.Abbreviations))
	out := make([]string, 0, len(c.Tokenizer.Abbreviations))
	for _, abbr := range c.Tokenizer.Abbreviations {
		abbr = strings.TrimSpace(abbr)
		if abbr == "" {
			continue
		}
		if _, ok := seen[abbr]; ok {
			continue
		}
		seen[abbr] = struct{}{}
		out = append(out, abbr)
	}
	c.Tokenizer.Abbreviations = out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
