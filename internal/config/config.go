// Package config loads arenactl configuration from JSONC files and flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/slotarena/internal/catalog"
)

var (
	ErrConfigInvalid      = errors.New("invalid config")
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrFieldEmpty         = errors.New("field must not be empty")
	ErrCountInvalid       = errors.New("count must be positive")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Engine      string `json:"engine"`
	Version     string `json:"version"`
	HistoryFile string `json:"history_file,omitempty"`
	BenchCount  int    `json:"bench_count,omitempty"`
	CheckOps    int    `json:"check_ops,omitempty"`
	Seed        uint64 `json:"seed,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"`
	HistoryPath  string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string
	Project string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Engine:     catalog.Hop,
		Version:    catalog.Default,
		BenchCount: 100_000,
		CheckOps:   2000,
		Seed:       1,
	}
}

// FileName is the project config file name.
const FileName = ".arenactl.json"

const defaultHistoryName = ".arenactl_history"

// globalPath returns $XDG_CONFIG_HOME/arenactl/config.json, falling back to
// ~/.config/arenactl/config.json. Empty if neither variable is set.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "arenactl", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "arenactl", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config
	Engine          string            // --engine; empty means no override
	Version         string            // --version; empty means no override
	Env             map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config (.arenactl.json), or the explicit -c file instead
// 4. CLI overrides.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	if path := globalPath(input.Env); path != "" {
		fileCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Sources.Global = path
		}
	}

	projectPath := filepath.Join(workDir, FileName)
	mustExist := false

	if input.ConfigPath != "" {
		projectPath = input.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		mustExist = true

		_, statErr := os.Stat(projectPath)
		if statErr != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}
	}

	fileCfg, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, fileCfg)
		cfg.Sources.Project = projectPath
	}

	if input.Engine != "" {
		cfg.Engine = input.Engine
	}

	if input.Version != "" {
		cfg.Version = input.Version
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.HistoryPath = resolveHistory(cfg.HistoryFile, workDir, input.Env)

	return cfg, nil
}

func resolveHistory(file, workDir string, env map[string]string) string {
	switch {
	case file == "" && env["HOME"] != "":
		return filepath.Join(env["HOME"], defaultHistoryName)
	case file == "":
		return filepath.Join(workDir, defaultHistoryName)
	case filepath.IsAbs(file):
		return file
	default:
		return filepath.Join(workDir, file)
	}
}

// loadFile reads a config file. If mustExist is false a missing file is not
// an error and loaded is false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "" would otherwise silently fall back to the lower layer.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	for _, field := range []string{"engine", "version"} {
		if val, ok := raw[field].(string); ok && val == "" {
			return Config{}, fmt.Errorf("%w: %s", ErrFieldEmpty, field)
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Engine != "" {
		base.Engine = overlay.Engine
	}

	if overlay.Version != "" {
		base.Version = overlay.Version
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	if overlay.BenchCount != 0 {
		base.BenchCount = overlay.BenchCount
	}

	if overlay.CheckOps != 0 {
		base.CheckOps = overlay.CheckOps
	}

	if overlay.Seed != 0 {
		base.Seed = overlay.Seed
	}

	return base
}

func validate(cfg Config) error {
	err := catalog.ValidateEngine(cfg.Engine)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	err = catalog.ValidateVersion(cfg.Version)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if cfg.BenchCount < 0 {
		return fmt.Errorf("%w: bench_count: %w", ErrConfigInvalid, ErrCountInvalid)
	}

	if cfg.CheckOps < 0 {
		return fmt.Errorf("%w: check_ops: %w", ErrConfigInvalid, ErrCountInvalid)
	}

	return nil
}
