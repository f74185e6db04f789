package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"obdexporter/internal/logging"
	"obdexporter/internal/thing"
	"obdexporter/internal/versions"
)

// LoadRequest describes the archive to load.
type LoadRequest struct {
	DatPath string
	SprPath string
	Version versions.Version
	// Progress receives values in [0, 100] while the load runs. It is called
	// from the goroutine executing Load.
	Progress func(percent int)
}

// Store owns the decoded archive and gates lookups on a successful load.
type Store struct {
	decoder Decoder
	logger  *slog.Logger

	mu    sync.RWMutex
	state state
}

// NewStore returns an unloaded store backed by decoder.
func NewStore(decoder Decoder, logger *slog.Logger) *Store {
	return &Store{
		decoder: decoder,
		logger:  logging.NewComponentLogger(logger, "assets"),
		state:   unloaded{},
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.status()
}

// Load decodes the archive named by req. It is a no-op when the store is
// already loaded and fails with ErrLoadInProgress while another load runs.
// Failures leave the store in the failed phase and are returned as *LoadError.
func (s *Store) Load(ctx context.Context, req LoadRequest) error {
	s.mu.Lock()
	switch s.state.(type) {
	case loaded:
		s.mu.Unlock()
		return nil
	case loading:
		s.mu.Unlock()
		return ErrLoadInProgress
	}
	s.state = loading{version: req.Version}
	s.mu.Unlock()

	logger := s.logger.With(
		logging.Int("client_version", int(req.Version.Value)),
		logging.String("dat_path", req.DatPath),
		logging.String("spr_path", req.SprPath),
	)
	logger.Info("asset load started", logging.String(logging.FieldEventType, "asset_load_start"))
	started := time.Now()

	archive, err := s.decode(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		loadErr := &LoadError{DatPath: req.DatPath, SprPath: req.SprPath, Version: req.Version.Value, Err: err}
		s.state = failed{version: req.Version, err: loadErr}
		logger.Warn("asset load failed",
			logging.String(logging.FieldEventType, "asset_load_failed"),
			logging.String(logging.FieldErrorHint, "check client files match the selected version"),
			logging.Error(err),
		)
		return loadErr
	}
	s.state = loaded{version: req.Version, archive: archive}
	logger.Info("asset load completed",
		logging.String(logging.FieldEventType, "asset_load_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (s *Store) decode(ctx context.Context, req LoadRequest) (Archive, error) {
	for _, path := range []string{req.DatPath, req.SprPath} {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat archive: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("archive %s is a directory", path)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.decoder == nil {
		return nil, errors.New("no archive decoder configured")
	}
	report(req.Progress, 0)
	archive, err := s.decoder.Decode(ctx, DecodeRequest{
		DatPath:  req.DatPath,
		SprPath:  req.SprPath,
		Version:  req.Version,
		Progress: req.Progress,
	})
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return nil, errors.New("decoder returned no archive")
	}
	report(req.Progress, 100)
	return archive, nil
}

// Unload drops the archive and returns the store to the unloaded phase. It
// fails with ErrLoadInProgress while a load runs.
func (s *Store) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(loading); ok {
		return ErrLoadInProgress
	}
	s.state = unloaded{}
	return nil
}

// Enumerate lists the identities of a category in archive order.
func (s *Store) Enumerate(category thing.Category) ([]thing.Identity, error) {
	archive, err := s.archive()
	if err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("enumerate: invalid category %d", uint8(category))
	}
	return archive.Things(category), nil
}

// Describe returns the decoded descriptor for id. Extended requests include
// sprite data where the decoder provides it.
func (s *Store) Describe(id thing.Identity, extended bool) (*thing.Descriptor, error) {
	archive, err := s.archive()
	if err != nil {
		return nil, err
	}
	desc, ok := archive.Describe(id, extended)
	if !ok || desc == nil {
		return nil, &UnknownThingError{Identity: id}
	}
	return desc, nil
}

func (s *Store) archive() (Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state.(loaded)
	if !ok {
		return nil, ErrNotLoaded
	}
	return st.archive, nil
}

func report(fn func(int), percent int) {
	if fn != nil {
		fn(percent)
	}
}
