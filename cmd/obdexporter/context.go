package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"obdexporter/internal/assets"
	"obdexporter/internal/assets/datfile"
	"obdexporter/internal/config"
	"obdexporter/internal/export"
	"obdexporter/internal/history"
	"obdexporter/internal/logging"
	"obdexporter/internal/obd"
	"obdexporter/internal/pipeline"
	"obdexporter/internal/versions"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var console io.Writer
	if c.verbose != nil && *c.verbose {
		console = cmd.ErrOrStderr()
	}
	return logging.NewFromConfig(cfg, console)
}

// catalog loads the version catalog, pointing at `config init` when it is missing.
func (c *commandContext) catalog() (*versions.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := versions.Load(cfg.Paths.VersionsFile)
	if err != nil {
		return nil, fmt.Errorf("%w (run `obdexporter config init` to install the bundled catalog)", err)
	}
	return catalog, nil
}

// resolveVersion picks the requested client version, falling back to the
// configured default and then to the first catalog entry.
func (c *commandContext) resolveVersion(requested int) (versions.Version, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return versions.Version{}, err
	}
	catalog, err := c.catalog()
	if err != nil {
		return versions.Version{}, err
	}
	if requested == 0 {
		requested = cfg.Client.DefaultVersion
	}
	if requested < 0 || requested > 0xFFFF {
		return versions.Version{}, fmt.Errorf("client version %d out of range", requested)
	}
	return catalog.Resolve(uint16(requested))
}

type controllerOptions struct {
	observer      pipeline.Observer
	recorder      export.Recorder
	logger        *slog.Logger
	outputDir     string
	formatVersion int
}

// newController wires the asset store, encoder and journal for one session.
func (c *commandContext) newController(opts controllerOptions) (*pipeline.Controller, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	format := cfg.Export.FormatVersion
	if opts.formatVersion != 0 {
		format = opts.formatVersion
	}
	version, err := obd.ParseVersion(format)
	if err != nil {
		return nil, err
	}
	outputDir := cfg.Paths.OutputDir
	if strings.TrimSpace(opts.outputDir) != "" {
		if outputDir, err = config.ExpandPath(opts.outputDir); err != nil {
			return nil, fmt.Errorf("resolve output dir: %w", err)
		}
	}
	return pipeline.New(pipeline.Options{
		Store:         assets.NewStore(datfile.Decoder{}, opts.logger),
		Encoder:       obd.Encoder{},
		Recorder:      opts.recorder,
		Observer:      opts.observer,
		Logger:        opts.logger,
		DatPath:       cfg.DatPath(),
		SprPath:       cfg.SprPath(),
		OutputDir:     outputDir,
		FormatVersion: version,
		Pacing:        cfg.Pacing(),
	})
}

// openRecorder opens the history journal when enabled. The returned close
// function is always safe to call.
func (c *commandContext) openRecorder() (export.Recorder, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, func() {}, err
	}
	if !cfg.Export.RecordHistory {
		return nil, func() {}, nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, func() {}, err
	}
	return store, func() { _ = store.Close() }, nil
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Export.RecordHistory {
		return nil, errors.New("export history is disabled (export.record_history = false)")
	}
	return history.Open(cfg.HistoryPath())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
