package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-textbook/internal/config"
)

const envPrefix = "TEXTBOOK_"

// envFile is loaded from the build root when present. Variables already
// set in the process environment win.
const envFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without editing textbook.yaml.
type envConfig struct {
	Root          string // TEXTBOOK_ROOT: build root
	ConfigPath    string // TEXTBOOK_CONFIG: config file path
	Filter        string // TEXTBOOK_EXECUTION_FILTER
	BuildOnDev    string // TEXTBOOK_BUILD_ON_DEV: commit spec, enables dev mode
	Timeout       string // TEXTBOOK_TIMEOUT: per-cell timeout
	Kernel        string // TEXTBOOK_KERNEL
	ToolVersion   string // TEXTBOOK_TOOL_VERSION: installed toolchain version
	LatestVersion string // TEXTBOOK_LATEST_VERSION: latest stable release
	LogLevel      string // TEXTBOOK_LOG_LEVEL
	LogFormat     string // TEXTBOOK_LOG_FORMAT
	Workers       int    // TEXTBOOK_WORKERS
}

// knownEnvVars lists valid TEXTBOOK_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEXTBOOK_ROOT":             true,
	"TEXTBOOK_CONFIG":           true,
	"TEXTBOOK_EXECUTION_FILTER": true,
	"TEXTBOOK_BUILD_ON_DEV":     true,
	"TEXTBOOK_TIMEOUT":          true,
	"TEXTBOOK_KERNEL":           true,
	"TEXTBOOK_TOOL_VERSION":     true,
	"TEXTBOOK_LATEST_VERSION":   true,
	"TEXTBOOK_LOG_LEVEL":        true,
	"TEXTBOOK_LOG_FORMAT":       true,
	"TEXTBOOK_WORKERS":          true,
}

// loadDotEnv loads <root>/.env into the process environment. A missing
// file is not an error.
func loadDotEnv(root string) error {
	path := filepath.Join(root, envFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		Root:          os.Getenv("TEXTBOOK_ROOT"),
		ConfigPath:    os.Getenv("TEXTBOOK_CONFIG"),
		Filter:        os.Getenv("TEXTBOOK_EXECUTION_FILTER"),
		BuildOnDev:    os.Getenv("TEXTBOOK_BUILD_ON_DEV"),
		Timeout:       os.Getenv("TEXTBOOK_TIMEOUT"),
		Kernel:        os.Getenv("TEXTBOOK_KERNEL"),
		ToolVersion:   os.Getenv("TEXTBOOK_TOOL_VERSION"),
		LatestVersion: os.Getenv("TEXTBOOK_LATEST_VERSION"),
		LogLevel:      os.Getenv("TEXTBOOK_LOG_LEVEL"),
		LogFormat:     os.Getenv("TEXTBOOK_LOG_FORMAT"),
	}

	if workers := os.Getenv("TEXTBOOK_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for every unrecognized TEXTBOOK_*
// variable, in name order.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overrides config file values with set variables.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Filter != "" {
		cfg.Execution.Filter = env.Filter
	}
	if env.Timeout != "" {
		cfg.Execution.CellTimeout = env.Timeout
	}
	if env.Kernel != "" {
		cfg.Execution.Kernel = env.Kernel
	}
	if env.Workers > 0 {
		cfg.Execution.Workers = env.Workers
	}
	if env.ToolVersion != "" {
		cfg.Toolchain.Version = env.ToolVersion
	}
	if env.LatestVersion != "" {
		cfg.Toolchain.LatestStable = env.LatestVersion
	}
}
