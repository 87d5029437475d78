package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Tokenizer contains the abbreviation exception set.
type Tokenizer struct {
	// UseDefaultAbbreviations merges the built-in list with Abbreviations.
	UseDefaultAbbreviations bool     `toml:"use_default_abbreviations"`
	Abbreviations           []string `toml:"abbreviations"`
}

// Alignment tunes the timestamp aligner.
type Alignment struct {
	ErrorThreshold float64 `toml:"error_threshold"`
	MaxSplit       int     `toml:"max_split"`
	SplitThreshold float64 `toml:"split_threshold"`
	Band           int     `toml:"band"`
}

// Validation tunes the consistency validator. Values are seconds.
type Validation struct {
	MinWordDuration float64 `toml:"min_word_duration"`
	DurationFloor   float64 `toml:"duration_floor"`
}

// Sentences tunes the sentence segmenter.
type Sentences struct {
	MinWords       int  `toml:"min_words"`
	RequireCapital bool `toml:"require_capital"`
	MaxChars       int  `toml:"max_chars"`
}

// Scenes tunes the scene segmenter.
type Scenes struct {
	MaxDuration float64 `toml:"max_duration"`
}

// Subtitles tunes the subtitle segmenter.
type Subtitles struct {
	MaxChars       int     `toml:"max_chars"`
	MaxDuration    float64 `toml:"max_duration"`
	PauseThreshold float64 `toml:"pause_threshold"`
	LookbackWords  int     `toml:"lookback_words"`
}

// Cache controls the on-disk result cache.
type Cache struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// Batch controls parallel batch runs.
type Batch struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for timeweave.
//
// Sections:
//   - Paths: cache and log directories
//   - Tokenizer: abbreviation exception set
//   - Alignment, Validation, Sentences, Scenes, Subtitles: pipeline stages
//   - Cache: result cache toggle and size
//   - Batch: worker count for batch runs
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Tokenizer  Tokenizer  `toml:"tokenizer"`
	Alignment  Alignment  `toml:"alignment"`
	Validation Validation `toml:"validation"`
	Sentences  Sentences  `toml:"sentences"`
	Scenes     Scenes     `toml:"scenes"`
	Subtitles  Subtitles  `toml:"subtitles"`
	Cache      Cache      `toml:"cache"`
	Batch      Batch      `toml:"batch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/timeweave/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. The returned config has all paths expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// resolveConfigPath honours an explicit path, then ./timeweave.toml, then
// the per-user file.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("timeweave.toml")
	if err != nil {
		return "", false, err
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// Marshal renders the effective configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if dir, ok := os.LookupEnv("TIMEWEAVE_CACHE_DIR"); ok && strings.TrimSpace(dir) != "" {
		return strings.TrimSpace(dir)
	}
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "timeweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/timeweave"
	}
	return filepath.Join(home, ".cache", "timeweave")
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
