package export

import (
	"context"

	"obdexporter/internal/logging"
	"obdexporter/internal/thing"
)

// Recorder journals runs. Recorder failures are logged and never abort a run.
type Recorder interface {
	RunStarted(ctx context.Context, outcome *Outcome) error
	ItemWritten(ctx context.Context, runID string, seq int, id thing.Identity, path string) error
	RunFinished(ctx context.Context, outcome *Outcome) error
}

func (r *runner) recordStart(ctx context.Context) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RunStarted(ctx, r.outcome); err != nil {
		r.warnRecorder("record run start", err)
	}
}

func (r *runner) recordItem(ctx context.Context, id thing.Identity, path string) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.ItemWritten(ctx, r.outcome.RunID, r.outcome.Completed, id, path); err != nil {
		r.warnRecorder("record artifact", err)
	}
}

func (r *runner) recordFinish(ctx context.Context) {
	if r.recorder == nil {
		return
	}
	// The run context may already be cancelled; the journal still needs the result.
	if err := r.recorder.RunFinished(context.WithoutCancel(ctx), r.outcome); err != nil {
		r.warnRecorder("record run result", err)
	}
}

func (r *runner) warnRecorder(op string, err error) {
	r.logger.Warn("export history unavailable",
		logging.String(logging.FieldEventType, "history_write_failed"),
		logging.String(logging.FieldErrorHint, "export continues; history may be incomplete"),
		logging.String("operation", op),
		logging.Error(err),
	)
}
