package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"obdexporter/internal/assets"
	"obdexporter/internal/export"
	"obdexporter/internal/logging"
	"obdexporter/internal/obd"
	"obdexporter/internal/selection"
	"obdexporter/internal/thing"
	"obdexporter/internal/versions"
)

// Options wires a Controller.
type Options struct {
	Store    *assets.Store
	Encoder  export.Encoder
	Recorder export.Recorder
	Observer Observer
	Logger   *slog.Logger

	DatPath       string
	SprPath       string
	OutputDir     string
	FormatVersion obd.Version
	Pacing        time.Duration
}

// Controller gates loading, selection changes and export. At most one
// background operation runs at a time.
type Controller struct {
	store    *assets.Store
	encoder  export.Encoder
	recorder export.Recorder
	observer Observer
	logger   *slog.Logger
	sampler  *logging.ProgressSampler

	datPath       string
	sprPath       string
	outputDir     string
	formatVersion obd.Version
	pacing        time.Duration

	mu          sync.Mutex
	state       State
	version     versions.Version
	selection   *selection.Set
	done        chan struct{}
	cancel      context.CancelFunc
	lastLoadErr error
	lastOutcome *export.Outcome
}

// New constructs an idle controller.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline requires an asset store")
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	c := &Controller{
		store:         opts.Store,
		encoder:       opts.Encoder,
		recorder:      opts.Recorder,
		observer:      observer,
		logger:        logging.NewComponentLogger(opts.Logger, "pipeline"),
		sampler:       logging.NewProgressSampler(10),
		datPath:       opts.DatPath,
		sprPath:       opts.SprPath,
		outputDir:     opts.OutputDir,
		formatVersion: opts.FormatVersion,
		pacing:        opts.Pacing,
		state:         StateIdle,
		selection:     selection.New(),
	}
	if opts.Store.State().Loaded() {
		c.state = StateReady
		c.version = opts.Store.State().Version
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Version returns the loaded client version.
func (c *Controller) Version() (versions.Version, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, c.state == StateReady || c.state == StateExporting
}

// LastLoadError returns the error of the most recent failed load.
func (c *Controller) LastLoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLoadErr
}

// LastOutcome returns the outcome of the most recent export.
func (c *Controller) LastOutcome() *export.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutcome
}

// StartLoad begins loading the client archive for version in the background.
// It is a no-op when assets are already loaded.
func (c *Controller) StartLoad(ctx context.Context, version versions.Version) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateReady:
		return nil
	case StateLoading, StateExporting:
		return ErrBusy
	}

	runCtx, cancel := context.WithCancel(logging.WithStage(ctx, "load"))
	done := make(chan struct{})
	c.transition(StateLoading)
	c.done = done
	c.cancel = cancel
	c.lastLoadErr = nil
	c.sampler.Reset()

	go c.runLoad(runCtx, cancel, version, done)
	return nil
}

func (c *Controller) runLoad(ctx context.Context, cancel context.CancelFunc, version versions.Version, done chan struct{}) {
	defer close(done)
	defer cancel()

	err := c.store.Load(ctx, assets.LoadRequest{
		DatPath: c.datPath,
		SprPath: c.sprPath,
		Version: version,
		Progress: func(percent int) {
			if c.sampler.ShouldLog(percent, "load") {
				c.logger.Debug("load progress", logging.Int("percent", percent))
			}
			c.observer.LoadProgress(percent)
		},
	})
	if err == nil && !c.store.State().Loaded() {
		err = assets.ErrNotLoaded
	}

	c.mu.Lock()
	if err != nil {
		c.lastLoadErr = err
		c.transition(StateIdle)
	} else {
		c.version = c.store.State().Version
		c.transition(StateReady)
	}
	c.cancel = nil
	loadedVersion := c.version
	c.mu.Unlock()

	if err != nil {
		loadedVersion = version
	}
	c.observer.LoadCompleted(loadedVersion, err)
}

// Unload drops the loaded archive and clears the selection.
func (c *Controller) Unload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateLoading, StateExporting:
		return ErrBusy
	case StateIdle:
		return nil
	}
	if err := c.store.Unload(); err != nil {
		return err
	}
	c.selection.Clear()
	c.version = versions.Version{}
	c.transition(StateIdle)
	return nil
}

// Enumerate lists the identities of a category in the loaded archive.
func (c *Controller) Enumerate(category thing.Category) ([]thing.Identity, error) {
	return c.store.Enumerate(category)
}

// Add appends identities to the selection, skipping duplicates, and returns
// how many were added. Only allowed while ready.
func (c *Controller) Add(ids ...thing.Identity) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return 0, ErrSelectionLocked
	}
	return c.selection.AddAll(ids), nil
}

// Remove drops identities from the selection. Only allowed while ready.
func (c *Controller) Remove(ids ...thing.Identity) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return 0, ErrSelectionLocked
	}
	return c.selection.Remove(ids...), nil
}

// Clear empties the selection. Only allowed while ready.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrSelectionLocked
	}
	c.selection.Clear()
	return nil
}

// Selection returns a snapshot of the selected identities.
func (c *Controller) Selection() []thing.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Items()
}

// CanExport reports whether StartExport would be accepted.
func (c *Controller) CanExport() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady && c.selection.Len() > 0
}

// StartExport exports the current selection in the background.
func (c *Controller) StartExport(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateLoading, StateExporting:
		return ErrBusy
	case StateIdle:
		return ErrNotReady
	}
	if c.selection.Len() == 0 {
		return ErrEmptySelection
	}

	items := c.selection.Items()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.transition(StateExporting)
	c.done = done
	c.cancel = cancel
	c.sampler.Reset()

	opts := export.Options{
		OutputDir:     c.outputDir,
		FormatVersion: c.formatVersion,
		ClientVersion: c.version.Value,
		Encoder:       c.encoder,
		Pacing:        c.pacing,
		Recorder:      c.recorder,
		Logger:        c.logger,
		Progress: func(p export.Progress) {
			if c.sampler.ShouldLog(p.Percent, "export") {
				c.logger.Info("export progress",
					logging.Int("percent", p.Percent),
					logging.Int("completed", p.Completed),
					logging.Int("total", p.Total),
				)
			}
			c.observer.ExportProgress(p)
		},
	}
	go c.runExport(runCtx, cancel, items, opts, done)
	return nil
}

func (c *Controller) runExport(ctx context.Context, cancel context.CancelFunc, items []thing.Identity, opts export.Options, done chan struct{}) {
	defer close(done)
	defer cancel()

	outcome := export.Run(ctx, c.store, items, opts)

	c.mu.Lock()
	c.lastOutcome = outcome
	c.cancel = nil
	c.transition(StateReady)
	c.mu.Unlock()

	c.observer.ExportCompleted(outcome)
}

// Cancel asks the running background operation to stop. It has no effect when
// nothing runs.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done returns a channel closed once the current background operation and
// its completion notification have finished.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// Wait blocks until the current background operation finishes or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transition must be called with mu held.
func (c *Controller) transition(next State) {
	if c.state == next {
		return
	}
	c.logger.Debug("pipeline state changed",
		logging.String("from", string(c.state)),
		logging.String("to", string(next)),
	)
	c.state = next
}
