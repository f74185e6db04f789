package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeClient()
	c.normalizeLogging()
	return nil
}

// Normalize derives empty paths from AppDir and canonicalizes values for a
// Config built in code rather than loaded from a file.
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.AppDir) == "" || c.Paths.AppDir == defaultAppDir {
		if value, ok := os.LookupEnv(AppDirEnv); ok && strings.TrimSpace(value) != "" {
			c.Paths.AppDir = value
		}
	}
	if strings.TrimSpace(c.Paths.AppDir) == "" {
		c.Paths.AppDir = defaultAppDir
	}

	var err error
	if c.Paths.AppDir, err = expandPath(strings.TrimSpace(c.Paths.AppDir)); err != nil {
		return fmt.Errorf("paths.app_dir: %w", err)
	}

	derived := []struct {
		key    string
		target *string
		name   string
	}{
		{"paths.client_dir", &c.Paths.ClientDir, clientDirName},
		{"paths.output_dir", &c.Paths.OutputDir, outputDirName},
		{"paths.versions_file", &c.Paths.VersionsFile, versionsFileName},
		{"paths.state_dir", &c.Paths.StateDir, stateDirName},
		{"paths.log_dir", &c.Paths.LogDir, logDirName},
	}
	for _, field := range derived {
		value := strings.TrimSpace(*field.target)
		if value == "" {
			*field.target = filepath.Join(c.Paths.AppDir, field.name)
			continue
		}
		if *field.target, err = expandPath(value); err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeClient() {
	c.Client.DatFile = strings.TrimSpace(c.Client.DatFile)
	if c.Client.DatFile == "" {
		c.Client.DatFile = defaultDatFile
	}
	c.Client.SprFile = strings.TrimSpace(c.Client.SprFile)
	if c.Client.SprFile == "" {
		c.Client.SprFile = defaultSprFile
	}
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
