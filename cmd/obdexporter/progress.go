package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"obdexporter/internal/export"
	"obdexporter/internal/logging"
	"obdexporter/internal/pipeline"
	"obdexporter/internal/versions"
)

// terminalObserver renders controller notifications. Terminals get progress
// bars; other writers get sampled plain lines.
type terminalObserver struct {
	out         io.Writer
	interactive bool
	sampler     *logging.ProgressSampler

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

var _ pipeline.Observer = (*terminalObserver)(nil)

func newTerminalObserver(out io.Writer) *terminalObserver {
	return &terminalObserver{
		out:         out,
		interactive: shouldColorize(out),
		sampler:     logging.NewProgressSampler(25),
	}
}

func (o *terminalObserver) newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (o *terminalObserver) LoadProgress(percent int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.interactive {
		return
	}
	if o.bar == nil {
		o.bar = o.newBar(100, "Loading client")
	}
	_ = o.bar.Set(percent)
}

func (o *terminalObserver) LoadCompleted(version versions.Version, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finishBar()
	if err != nil {
		fmt.Fprintf(o.out, "Load failed: %v\n", err)
		return
	}
	fmt.Fprintf(o.out, "Loaded %s\n", version)
}

func (o *terminalObserver) ExportProgress(p export.Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.interactive {
		if o.bar == nil {
			o.bar = o.newBar(p.Total, "Exporting")
		}
		_ = o.bar.Set(p.Completed)
		return
	}
	if p.Completed == 1 {
		o.sampler.Reset()
	}
	if o.sampler.ShouldLog(p.Percent, "export") {
		fmt.Fprintf(o.out, "  %3d%% (%d/%d) %s\n", p.Percent, p.Completed, p.Total, p.Identity)
	}
}

func (o *terminalObserver) ExportCompleted(outcome *export.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finishBar()
	fmt.Fprintln(o.out, summarizeOutcome(outcome))
}

// finishBar must be called with mu held.
func (o *terminalObserver) finishBar() {
	if o.bar == nil {
		return
	}
	_ = o.bar.Finish()
	o.bar = nil
}

func summarizeOutcome(outcome *export.Outcome) string {
	if outcome == nil {
		return "Export did not run"
	}
	if outcome.Succeeded() {
		return fmt.Sprintf("Exported %d things to %s in %s", outcome.Completed, outcome.OutputDir, outcome.Duration().Round(time.Millisecond))
	}
	return fmt.Sprintf("Export stopped after %d of %d: %v", outcome.Completed, outcome.Total, outcome.Err)
}
