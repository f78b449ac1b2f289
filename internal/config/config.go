// Package config resolves logsift's ambient settings: model file locations,
// batch sizing, and log level. Values come from built-in defaults, an
// optional logsift.yaml, and LOGSIFT_* environment variables, in that order
// of increasing precedence. Run parameters (thresholds, file paths) are
// command-line flags, not config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is consulted when LOGSIFT_CONFIG is unset. A missing
// file is not an error.
const DefaultConfigFile = "logsift.yaml"

// Config holds all logsift configuration.
type Config struct {
	ModelPath      string `yaml:"model_path"`
	VocabPath      string `yaml:"vocab_path"`
	ProjectionPath string `yaml:"projection_path"` // empty = model has no dense layer
	ORTLibPath     string `yaml:"ort_lib_path"`    // empty = resolve next to the model
	BatchSize      int    `yaml:"batch_size"`
	LogLevel       string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// Load resolves configuration from defaults, the optional YAML file, and
// environment variables.
func Load() (Config, error) {
	cfg := Config{
		ModelPath: "models/model_quantized.onnx",
		VocabPath: "models/vocab.txt",
		BatchSize: 1024,
		LogLevel:  "info",
	}

	path := os.Getenv("LOGSIFT_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; defaults and env apply.
	default:
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.ModelPath = getenv("LOGSIFT_MODEL_PATH", cfg.ModelPath)
	cfg.VocabPath = getenv("LOGSIFT_VOCAB_PATH", cfg.VocabPath)
	cfg.ProjectionPath = getenv("LOGSIFT_PROJECTION_PATH", cfg.ProjectionPath)
	cfg.ORTLibPath = getenv("LOGSIFT_ORT_LIB_PATH", cfg.ORTLibPath)
	cfg.BatchSize = getenvInt("LOGSIFT_BATCH_SIZE", cfg.BatchSize)
	cfg.LogLevel = getenv("LOGSIFT_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// Validate checks settings needed to load the embedding model. It collects
// every problem rather than stopping at the first.
func (c Config) Validate() error {
	var problems []string

	if _, err := os.Stat(c.ModelPath); err != nil {
		problems = append(problems, fmt.Sprintf("model file not found: %s", c.ModelPath))
	}
	if _, err := os.Stat(c.VocabPath); err != nil {
		problems = append(problems, fmt.Sprintf("vocab file not found: %s", c.VocabPath))
	}
	if c.ProjectionPath != "" {
		if _, err := os.Stat(c.ProjectionPath); err != nil {
			problems = append(problems, fmt.Sprintf("projection file not found: %s", c.ProjectionPath))
		}
	}
	if c.BatchSize <= 0 {
		problems = append(problems, fmt.Sprintf("batch_size must be positive, got %d", c.BatchSize))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
