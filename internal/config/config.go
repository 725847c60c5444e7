// Package config loads and saves whi's ambient tool settings: the
// handful of cross-invocation preferences (default shell, default query
// color mode, history retention override, venv auto-activate toggle)
// that are not part of the core PATH/venv state model itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"whi/internal/atomicfile"
	"whi/internal/whierr"
)

const (
	configFileName     = "whi.yaml"
	maxConfigFileBytes = 1 << 20
	minRetention       = 2
	maxRetention       = 5000
)

var allowedColorModes = map[string]struct{}{
	"auto":   {},
	"never":  {},
	"always": {},
}

var allowedShells = map[string]struct{}{
	"bash": {}, "zsh": {}, "fish": {}, "powershell": {}, "pwsh": {},
}

// Config is the full set of ambient settings persisted in whi.yaml.
type Config struct {
	// DefaultShell names the shell whose integration snippet "whi init"
	// should target when no shell is given explicitly.
	DefaultShell string `yaml:"default_shell"`
	// DefaultColor is a stored --color preference: "auto", "never", or
	// "always". The query command does not read it; its --color flag
	// defaults to "auto".
	DefaultColor string `yaml:"default_color"`
	// HistoryRetention is validated and persisted, but the history package
	// does not read it and always retains history.MaxSnapshots entries.
	HistoryRetention int `yaml:"history_retention"`
	// AutoActivate enables "__should_auto_activate"-driven venv
	// activation when entering a directory with a whifile.
	AutoActivate bool `yaml:"auto_activate"`
}

// DefaultConfig returns the settings whi starts with before any whi.yaml
// has been written.
func DefaultConfig() Config {
	return Config{
		DefaultShell:     "bash",
		DefaultColor:     "auto",
		HistoryRetention: 0,
		AutoActivate:     true,
	}
}

var userHomeDirFn = os.UserHomeDir

// DefaultPath returns "$HOME/.whi/whi.yaml".
func DefaultPath() string {
	home, err := userHomeDirFn()
	if err != nil {
		return filepath.Join(".", ".whi", configFileName)
	}
	return filepath.Join(home, ".whi", configFileName)
}

// Load reads and validates the config at path, returning DefaultConfig
// when the file does not exist.
func Load(path string) (Config, error) {
	resolved, err := validateConfigPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := readLimitedFile(resolved, maxConfigFileBytes)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, whierr.New("config.Load", whierr.IoFailure, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, whierr.New("config.Load", whierr.ParseFailure, err)
	}
	if err := applyDefaultsAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnsureFile loads path, writing DefaultConfig() to it first if it does
// not yet exist.
func EnsureFile(path string) (Config, error) {
	resolved, err := validateConfigPath(path)
	if err != nil {
		return Config{}, err
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if _, err := Save(resolved, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	return Load(resolved)
}

// Save validates cfg and atomically writes it to path.
func Save(path string, cfg Config) (Config, error) {
	resolved, err := validateConfigPath(path)
	if err != nil {
		return Config{}, err
	}
	if err := applyDefaultsAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return Config{}, whierr.New("config.Save", whierr.ParseFailure, err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return Config{}, whierr.New("config.Save", whierr.IoFailure, err)
	}
	if err := atomicfile.Write(resolved, data, 0o644); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaultsAndValidate(cfg *Config) error {
	if cfg.DefaultShell == "" {
		cfg.DefaultShell = "bash"
	}
	if _, ok := allowedShells[cfg.DefaultShell]; !ok {
		return whierr.Newf("config.applyDefaultsAndValidate", whierr.ParseFailure, "unknown default_shell %q", cfg.DefaultShell)
	}
	if cfg.DefaultColor == "" {
		cfg.DefaultColor = "auto"
	}
	if _, ok := allowedColorModes[cfg.DefaultColor]; !ok {
		return whierr.Newf("config.applyDefaultsAndValidate", whierr.ParseFailure, "unknown default_color %q", cfg.DefaultColor)
	}
	if cfg.HistoryRetention != 0 && (cfg.HistoryRetention < minRetention || cfg.HistoryRetention > maxRetention) {
		return whierr.Newf("config.applyDefaultsAndValidate", whierr.ParseFailure, "history_retention %d out of range [%d, %d]", cfg.HistoryRetention, minRetention, maxRetention)
	}
	return nil
}

// validateConfigPath resolves path to an absolute form, using DefaultPath()
// for empty input; it does not require the file to already exist.
func validateConfigPath(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", whierr.New("config.validateConfigPath", whierr.IoFailure, err)
	}
	return abs, nil
}

// pathWithinDir reports whether path lies within dir, both assumed
// absolute and clean.
func pathWithinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.' &&
		(len(rel) == 2 || rel[2] == os.PathSeparator)
}

// readLimitedFile reads path, refusing anything larger than maxBytes to
// avoid ever loading a maliciously large config into memory.
func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxBytes)
	}
	buf := make([]byte, info.Size())
	if _, err := f.Read(buf); err != nil && info.Size() > 0 {
		return nil, err
	}
	return buf, nil
}
