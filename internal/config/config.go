// Package config loads the textbook build configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-textbook/internal/fileutil"
	"github.com/alnah/go-textbook/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// DefaultNames are the config file names looked up in the build root.
var DefaultNames = []string{"textbook.yaml", "textbook.yml"}

// MaxWorkers bounds execution.workers.
const MaxWorkers = 64

// Config holds the build configuration. Paths are relative to the build
// root unless absolute.
type Config struct {
	Content   string          `yaml:"content"`
	State     StateConfig     `yaml:"state"`
	Output    OutputConfig    `yaml:"output"`
	Execution ExecutionConfig `yaml:"execution"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
}

// StateConfig locates the files carried between builds.
type StateConfig struct {
	Hashes   string `yaml:"hashes"`
	SkipList string `yaml:"skipList"`
}

// OutputConfig defines where sidecars and figures are written.
type OutputConfig struct {
	StableDir      string `yaml:"stableDir"` // empty = next to each notebook
	DevDir         string `yaml:"devDir"`    // dev builds mirror the content tree here
	InlineImages   bool   `yaml:"inlineImages"`
	StandaloneHTML bool   `yaml:"standaloneHTML"`
}

// ExecutionConfig defines how notebooks are executed.
type ExecutionConfig struct {
	Filter      string   `yaml:"filter"`
	CellTimeout string   `yaml:"cellTimeout"` // Go duration, e.g. "10m"
	Kernel      string   `yaml:"kernel"`
	Command     []string `yaml:"command"`
	WriteBack   *bool    `yaml:"writeBack"` // nil = default (true)
	Workers     int      `yaml:"workers"`   // 0 = auto
}

// ToolchainConfig describes the library the notebooks demonstrate.
type ToolchainConfig struct {
	Name           string   `yaml:"name"`
	Version        string   `yaml:"version"`
	VersionCommand []string `yaml:"versionCommand"`
	LatestStable   string   `yaml:"latestStable"`
}

// DefaultConfig returns the layout of the textbook repository.
func DefaultConfig() *Config {
	writeBack := true
	return &Config{
		Content: "content",
		State: StateConfig{
			Hashes:   filepath.Join("scripts", "nb_hashes.json"),
			SkipList: filepath.Join("scripts", "nbs_to_skip.json"),
		},
		Output: OutputConfig{
			DevDir: "dev",
		},
		Execution: ExecutionConfig{
			Filter:      "no-execution",
			CellTimeout: "10m",
			Kernel:      "python3",
			Command:     []string{"jupyter", "nbconvert"},
			WriteBack:   &writeBack,
			Workers:     1,
		},
		Toolchain: ToolchainConfig{
			Name: "hnn-core",
		},
	}
}

// Validate checks values that YAML decoding cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: content: must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.State.Hashes) == "" {
		return fmt.Errorf("%w: state.hashes: must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.State.SkipList) == "" {
		return fmt.Errorf("%w: state.skipList: must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Output.DevDir) == "" {
		return fmt.Errorf("%w: output.devDir: must not be empty", ErrInvalidConfig)
	}
	if _, err := c.CellTimeout(); err != nil {
		return err
	}
	if c.Execution.Workers < 0 || c.Execution.Workers > MaxWorkers {
		return fmt.Errorf("%w: execution.workers: must be between 0 and %d, got %d",
			ErrInvalidConfig, MaxWorkers, c.Execution.Workers)
	}
	if len(c.Execution.Command) > 0 && strings.TrimSpace(c.Execution.Command[0]) == "" {
		return fmt.Errorf("%w: execution.command: program must not be empty", ErrInvalidConfig)
	}
	if len(c.Toolchain.VersionCommand) > 0 && strings.TrimSpace(c.Toolchain.VersionCommand[0]) == "" {
		return fmt.Errorf("%w: toolchain.versionCommand: program must not be empty", ErrInvalidConfig)
	}
	return nil
}

// CellTimeout parses execution.cellTimeout. Empty means zero, which the
// executor replaces with its default.
func (c *Config) CellTimeout() (time.Duration, error) {
	if c.Execution.CellTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Execution.CellTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: execution.cellTimeout: %v", ErrInvalidConfig, err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("%w: execution.cellTimeout: must be at least 1s, got %s", ErrInvalidConfig, d)
	}
	return d, nil
}

// WriteBack reports whether executed notebooks replace their sources.
func (c *Config) WriteBack() bool {
	return c.Execution.WriteBack == nil || *c.Execution.WriteBack
}

// Paths are the config's locations resolved against a build root.
type Paths struct {
	Root      string
	Content   string
	Hashes    string
	SkipList  string
	StableDir string // empty = next to each notebook
	DevDir    string
}

// Resolve joins every relative path onto root.
func (c *Config) Resolve(root string) Paths {
	return Paths{
		Root:      root,
		Content:   fileutil.ResolvePath(root, c.Content),
		Hashes:    fileutil.ResolvePath(root, c.State.Hashes),
		SkipList:  fileutil.ResolvePath(root, c.State.SkipList),
		StableDir: fileutil.ResolvePath(root, c.Output.StableDir),
		DevDir:    fileutil.ResolvePath(root, c.Output.DevDir),
	}
}

// Find returns the first DefaultNames file present in root.
func Find(root string) (string, bool) {
	for _, name := range DefaultNames {
		path := filepath.Join(root, name)
		if fileutil.FileExists(path) {
			return path, true
		}
	}
	return "", false
}

// LoadConfig reads the file at path over DefaultConfig. Keys absent from
// the file keep their defaults; unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yamlutil.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
