package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"obdexporter/internal/applock"
	"obdexporter/internal/pipeline"
	"obdexporter/internal/thing"
	"obdexporter/internal/versions"
)

const sessionHelp = `Commands:
  versions                 list client versions (* marks the selected one)
  use <version>            select a client version (while unloaded)
  load                     load the selected client in the background
  unload                   drop the loaded client and the selection
  list <category> [n]      show the things of a category
  add <selector>...        add things, e.g. item:100 outfit:1-5 missile:all
  remove <selector>...     remove things from the selection
  clear                    empty the selection
  selection                print the selection
  export                   export the selection in the background
  wait                     block until the running load or export finishes
  cancel                   stop the running load or export
  status                   show the session state
  quit                     leave the session`

type session struct {
	ctx         context.Context
	controller  *pipeline.Controller
	catalog     *versions.Catalog
	version     versions.Version
	out         io.Writer
	interactive bool
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	var clientVersion int

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Interactive export session",
		Long:  "Read commands from stdin and drive loading, selection and export step by step.\n\n" + sessionHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			version, err := ctx.resolveVersion(clientVersion)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			lock := applock.New(cfg.LockPath())
			if err := lock.TryAcquire(); err != nil {
				return err
			}
			defer lock.Release()

			recorder, closeRecorder, err := ctx.openRecorder()
			if err != nil {
				return err
			}
			defer closeRecorder()

			out := &lockedWriter{w: cmd.OutOrStdout()}
			controller, err := ctx.newController(controllerOptions{
				observer: newTerminalObserver(out),
				recorder: recorder,
				logger:   logger,
			})
			if err != nil {
				return err
			}

			s := &session{
				ctx:         cmd.Context(),
				controller:  controller,
				catalog:     catalog,
				version:     version,
				out:         out,
				interactive: isTerminalReader(cmd.InOrStdin()) && shouldColorize(out),
			}
			return s.run(cmd.InOrStdin())
		},
	}

	cmd.Flags().IntVar(&clientVersion, "client-version", 0, "Client version selected at start (default from config)")
	return cmd
}

func (s *session) run(in io.Reader) error {
	if s.interactive {
		fmt.Fprintf(s.out, "Client %s selected. Type help for commands.\n", s.version)
	}
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			s.prompt()
			continue
		}
		fields := strings.Fields(line)
		quit, err := s.dispatch(strings.ToLower(fields[0]), fields[1:])
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			break
		}
		s.prompt()
	}
	if err := s.controller.Wait(s.ctx); err != nil {
		s.controller.Cancel()
		<-s.controller.Done()
	}
	return scanner.Err()
}

func (s *session) prompt() {
	if s.interactive {
		fmt.Fprint(s.out, "obd> ")
	}
}

func (s *session) dispatch(name string, args []string) (bool, error) {
	switch name {
	case "help", "?":
		fmt.Fprintln(s.out, sessionHelp)
	case "versions":
		s.listVersions()
	case "use":
		return false, s.use(args)
	case "load":
		if s.controller.State() == pipeline.StateReady {
			fmt.Fprintln(s.out, "Client already loaded")
			return false, nil
		}
		return false, s.controller.StartLoad(s.ctx, s.version)
	case "unload":
		return false, s.controller.Unload()
	case "list":
		return false, s.list(args)
	case "add":
		return false, s.add(args)
	case "remove", "rm":
		return false, s.remove(args)
	case "clear":
		return false, s.controller.Clear()
	case "selection", "sel":
		s.printSelection()
	case "export":
		return false, s.controller.StartExport(s.ctx)
	case "wait":
		return false, s.controller.Wait(s.ctx)
	case "cancel":
		s.controller.Cancel()
	case "status":
		s.printStatus()
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (type help)", name)
	}
	return false, nil
}

func (s *session) listVersions() {
	for _, v := range s.catalog.All() {
		marker := " "
		if v.Value == s.version.Value {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %5d  %s\n", marker, v.Value, v.Description)
	}
}

func (s *session) use(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: use <version>")
	}
	if state := s.controller.State(); state != pipeline.StateIdle {
		return fmt.Errorf("%w: unload before switching versions", pipeline.ErrBusy)
	}
	value, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	version, ok := s.catalog.Find(uint16(value))
	if !ok {
		return fmt.Errorf("client version %d not in catalog", value)
	}
	s.version = version
	fmt.Fprintf(s.out, "Selected %s\n", version)
	return nil
}

func (s *session) list(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: list <category> [n]")
	}
	category, err := thing.ParseCategory(args[0])
	if err != nil {
		return err
	}
	limit := 20
	if len(args) > 1 {
		if limit, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid count %q", args[1])
		}
	}
	ids, err := s.controller.Enumerate(category)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d %s things\n", len(ids), category)
	shown := ids
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, 0, len(shown))
	for _, id := range shown {
		parts = append(parts, strconv.FormatUint(uint64(id.ID), 10))
	}
	if len(parts) > 0 {
		suffix := ""
		if len(shown) < len(ids) {
			suffix = " ..."
		}
		fmt.Fprintf(s.out, "  %s%s\n", strings.Join(parts, " "), suffix)
	}
	return nil
}

func (s *session) add(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add <selector>...")
	}
	ids, err := expandSelectors(s.controller, args)
	if err != nil {
		return err
	}
	added, err := s.controller.Add(ids...)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added %d (%d selected)\n", added, len(s.controller.Selection()))
	return nil
}

func (s *session) remove(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: remove <selector>...")
	}
	ids, err := expandSelectors(s.controller, args)
	if err != nil {
		return err
	}
	removed, err := s.controller.Remove(ids...)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Removed %d (%d selected)\n", removed, len(s.controller.Selection()))
	return nil
}

func (s *session) printSelection() {
	items := s.controller.Selection()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "Selection is empty")
		return
	}
	for i, id := range items {
		fmt.Fprintf(s.out, "%4d  %s\n", i+1, id)
	}
}

func (s *session) printStatus() {
	state := s.controller.State()
	fmt.Fprintf(s.out, "State:     %s\n", state)
	if version, ok := s.controller.Version(); ok {
		fmt.Fprintf(s.out, "Client:    %s\n", version)
	} else {
		fmt.Fprintf(s.out, "Client:    %s (not loaded)\n", s.version)
	}
	if err := s.controller.LastLoadError(); err != nil && state == pipeline.StateIdle {
		fmt.Fprintf(s.out, "Load:      %v\n", err)
	}
	fmt.Fprintf(s.out, "Selection: %d\n", len(s.controller.Selection()))
	if outcome := s.controller.LastOutcome(); outcome != nil {
		fmt.Fprintf(s.out, "Last run:  %s\n", summarizeOutcome(outcome))
	}
}

// lockedWriter serializes writes from the session loop and observer callbacks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lockedWriter) Unwrap() io.Writer {
	return l.w
}

func isTerminalReader(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
