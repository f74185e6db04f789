package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. Everything except AppDir defaults
// to a location beneath AppDir.
type Paths struct {
	AppDir       string `toml:"app_dir"`
	ClientDir    string `toml:"client_dir"`
	OutputDir    string `toml:"output_dir"`
	VersionsFile string `toml:"versions_file"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Client describes the archive files inside ClientDir.
type Client struct {
	DatFile string `toml:"dat_file"`
	SprFile string `toml:"spr_file"`
	// DefaultVersion preselects a catalog entry; zero selects the first entry.
	DefaultVersion int `toml:"default_version"`
}

// Export contains batch export settings.
type Export struct {
	// FormatVersion is the container format: 1, 2 or 3.
	FormatVersion int `toml:"format_version"`
	// PacingMillis is the delay between items; zero disables pacing.
	PacingMillis  int  `toml:"pacing_ms"`
	RecordHistory bool `toml:"record_history"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the exporter.
//
// Configuration sections:
//   - Paths: application, client, output, catalog, state and log locations
//   - Client: archive file names and default client version
//   - Export: container format version, pacing and history journal
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Client  Client  `toml:"client"`
	Export  Export  `toml:"export"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/obdexporter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
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

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("obdexporter.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the exporter needs before a load.
// The output directory is left to the export job, which creates it on demand.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AppDir, c.Paths.ClientDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatPath returns the absolute path of the client dat file.
func (c *Config) DatPath() string {
	return filepath.Join(c.Paths.ClientDir, c.Client.DatFile)
}

// SprPath returns the absolute path of the client spr file.
func (c *Config) SprPath() string {
	return filepath.Join(c.Paths.ClientDir, c.Client.SprFile)
}

// HistoryPath returns the export history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, historyFileName)
}

// LockPath returns the single-exporter lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, lockFileName)
}

// Pacing returns the delay between exported items.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.Export.PacingMillis) * time.Millisecond
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
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
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
