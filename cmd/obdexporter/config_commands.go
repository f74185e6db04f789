package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"obdexporter/internal/config"
	"obdexporter/internal/versions"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file and version catalog",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)

			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("load new config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			if _, err := os.Stat(cfg.Paths.VersionsFile); os.IsNotExist(err) || overwrite {
				if err := versions.CreateSample(cfg.Paths.VersionsFile); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote version catalog to %s\n", cfg.Paths.VersionsFile)
			}
			fmt.Fprintf(out, "Copy %s and %s into %s before exporting.\n", cfg.Client.DatFile, cfg.Client.SprFile, cfg.Paths.ClientDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration and catalog if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file and version catalog",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			cfg, path, exists, err := config.Load(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			catalog, err := versions.Load(cfg.Paths.VersionsFile)
			if err != nil {
				return fmt.Errorf("version catalog: %w", err)
			}
			if cfg.Client.DefaultVersion != 0 {
				if _, ok := catalog.Find(uint16(cfg.Client.DefaultVersion)); !ok {
					return fmt.Errorf("client.default_version %d is not in %s", cfg.Client.DefaultVersion, catalog.Path())
				}
			}
			fmt.Fprintf(out, "Version catalog: %d versions\n", catalog.Len())
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
