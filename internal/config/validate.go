package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClient(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateClient() error {
	for key, name := range map[string]string{"client.dat_file": c.Client.DatFile, "client.spr_file": c.Client.SprFile} {
		if name == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if filepath.Base(name) != name {
			return fmt.Errorf("%s must be a file name inside paths.client_dir, got %q", key, name)
		}
	}
	if c.Client.DefaultVersion < 0 || c.Client.DefaultVersion > 0xFFFF {
		return fmt.Errorf("client.default_version must be between 0 and 65535, got %d", c.Client.DefaultVersion)
	}
	return nil
}

func (c *Config) validateExport() error {
	switch c.Export.FormatVersion {
	case 1, 2, 3:
	default:
		return fmt.Errorf("export.format_version must be 1, 2 or 3, got %d", c.Export.FormatVersion)
	}
	if c.Export.PacingMillis < 0 {
		return errors.New("export.pacing_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
