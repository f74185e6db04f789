package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"obdexporter/internal/faults"
	"obdexporter/internal/fileutil"
	"obdexporter/internal/logging"
	"obdexporter/internal/obd"
	"obdexporter/internal/thing"
)

// Describer resolves identities to descriptors. *assets.Store satisfies it.
type Describer interface {
	Describe(id thing.Identity, extended bool) (*thing.Descriptor, error)
}

// Encoder turns a descriptor into container bytes. obd.Encoder satisfies it.
type Encoder interface {
	Encode(desc *thing.Descriptor, version obd.Version) ([]byte, error)
}

// Progress is reported once per written artifact.
type Progress struct {
	Completed int
	Total     int
	// Percent is floor(Completed*100/Total).
	Percent  int
	Identity thing.Identity
	Path     string
}

// Options configures a run.
type Options struct {
	OutputDir     string
	FormatVersion obd.Version
	// ClientVersion is recorded with the run; it does not affect encoding.
	ClientVersion uint16
	Encoder       Encoder
	// Pacing is the minimum spacing between items. Zero disables pacing.
	Pacing   time.Duration
	Progress func(Progress)
	Recorder Recorder
	Logger   *slog.Logger
	// RunID overrides the generated run identifier.
	RunID string
}

// Outcome summarizes a finished run. Err is nil only when every item was
// written.
type Outcome struct {
	RunID         string
	OutputDir     string
	FormatVersion obd.Version
	ClientVersion uint16
	Total         int
	Completed     int
	Files         []string
	Failure       *ItemFailure
	Err           error
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Succeeded reports whether every item was exported.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Err == nil
}

// Duration returns the wall time of the run.
func (o *Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// FileName returns the artifact name for id, e.g. "Item_100.obd".
func FileName(id thing.Identity) string {
	return fmt.Sprintf("%s_%d.obd", id.Category, id.ID)
}

// NewRunID returns a time-ordered run identifier.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Run exports items in order into opts.OutputDir. It stops at the first
// failure; files written before the failure are kept. The returned outcome is
// never nil.
func Run(ctx context.Context, src Describer, items []thing.Identity, opts Options) *Outcome {
	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	version := opts.FormatVersion
	if version == 0 {
		version = obd.Version1
	}
	outcome := &Outcome{
		RunID:         runID,
		OutputDir:     opts.OutputDir,
		FormatVersion: version,
		ClientVersion: opts.ClientVersion,
		Total:         len(items),
		StartedAt:     time.Now().UTC(),
	}
	if len(items) == 0 {
		outcome.Err = ErrEmptySelection
		outcome.FinishedAt = outcome.StartedAt
		return outcome
	}

	ctx = logging.WithStage(logging.WithRunID(ctx, runID), "export")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "export"))
	r := &runner{
		src:      src,
		encoder:  opts.Encoder,
		recorder: opts.Recorder,
		progress: opts.Progress,
		logger:   logger,
		outcome:  outcome,
	}
	if r.encoder == nil {
		r.encoder = obd.Encoder{}
	}
	if opts.Pacing > 0 {
		r.limiter = rate.NewLimiter(rate.Every(opts.Pacing), 1)
	}

	logger.Info("export started",
		logging.String(logging.FieldEventType, "export_start"),
		logging.Int("total", outcome.Total),
		logging.String("output_dir", outcome.OutputDir),
		logging.String("format_version", version.String()),
	)
	r.recordStart(ctx)
	r.run(ctx, items)
	outcome.FinishedAt = time.Now().UTC()
	r.finish(ctx)
	return outcome
}

type runner struct {
	src      Describer
	encoder  Encoder
	recorder Recorder
	progress func(Progress)
	limiter  *rate.Limiter
	logger   *slog.Logger
	outcome  *Outcome
}

func (r *runner) run(ctx context.Context, items []thing.Identity) {
	out := r.outcome
	if err := fileutil.EnsureDir(out.OutputDir); err != nil {
		out.Err = &IOError{Op: "create output directory", Path: out.OutputDir, Err: err}
		return
	}

	for _, id := range items {
		if err := r.pace(ctx); err != nil {
			out.Err = fmt.Errorf("export cancelled after %d of %d: %w", out.Completed, out.Total, err)
			return
		}
		path, err := r.exportOne(id)
		if err != nil {
			out.Failure = &ItemFailure{Identity: id, Err: err}
			out.Err = out.Failure
			return
		}
		out.Completed++
		out.Files = append(out.Files, path)
		r.recordItem(ctx, id, path)
		if r.progress != nil {
			r.progress(Progress{
				Completed: out.Completed,
				Total:     out.Total,
				Percent:   out.Completed * 100 / out.Total,
				Identity:  id,
				Path:      path,
			})
		}
	}
}

func (r *runner) pace(ctx context.Context) error {
	if r.limiter != nil {
		return r.limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (r *runner) exportOne(id thing.Identity) (string, error) {
	desc, err := r.src.Describe(id, true)
	if err != nil {
		return "", err
	}
	data, err := r.encoder.Encode(desc, r.outcome.FormatVersion)
	if err != nil {
		if !errors.Is(err, faults.ErrEncode) {
			err = faults.Wrap(faults.ErrEncode, "export", "encode", id.String(), err)
		}
		return "", err
	}
	path := filepath.Join(r.outcome.OutputDir, FileName(id))
	if err := fileutil.WriteFile(path, data); err != nil {
		failed := id
		return "", &IOError{Op: "write artifact", Path: path, Identity: &failed, Err: err}
	}
	r.logger.Debug("artifact written",
		logging.String(logging.FieldThing, id.String()),
		logging.String("path", path),
		logging.Int("bytes", len(data)),
	)
	return path, nil
}

func (r *runner) finish(ctx context.Context) {
	out := r.outcome
	attrs := []logging.Attr{
		logging.Int("completed", out.Completed),
		logging.Int("total", out.Total),
		logging.Duration("elapsed", out.Duration()),
	}
	if out.Err == nil {
		r.logger.Info("export completed", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "export_complete"))...)...)
	} else {
		if out.Failure != nil {
			attrs = append(attrs, logging.String(logging.FieldThing, out.Failure.Identity.String()))
		}
		r.logger.Error("export failed", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "export_failed"),
			logging.String(logging.FieldErrorHint, "files written before the failure were kept"),
			logging.String("error_kind", faults.Kind(out.Err)),
			logging.Error(out.Err))...)...)
	}
	r.recordFinish(ctx)
}
