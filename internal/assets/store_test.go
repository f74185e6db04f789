package assets_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"obdexporter/internal/assets"
	"obdexporter/internal/faults"
	"obdexporter/internal/testsupport"
	"obdexporter/internal/thing"
)

type memoryArchive struct {
	things map[thing.Category][]thing.Identity
}

func newMemoryArchive(ids ...thing.Identity) *memoryArchive {
	a := &memoryArchive{things: make(map[thing.Category][]thing.Identity)}
	for _, id := range ids {
		a.things[id.Category] = append(a.things[id.Category], id)
	}
	return a
}

func (a *memoryArchive) Things(category thing.Category) []thing.Identity {
	return append([]thing.Identity(nil), a.things[category]...)
}

func (a *memoryArchive) Describe(id thing.Identity, extended bool) (*thing.Descriptor, bool) {
	for _, candidate := range a.things[id.Category] {
		if candidate == id {
			desc := &thing.Descriptor{Identity: id}
			if extended {
				desc.Sprites = [][]byte{{1}}
			}
			return desc, true
		}
	}
	return nil, false
}

func loadRequest(t *testing.T) assets.LoadRequest {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.DatPath(), []byte("dat"))
	testsupport.WriteFile(t, cfg.SprPath(), []byte("spr"))
	return assets.LoadRequest{DatPath: cfg.DatPath(), SprPath: cfg.SprPath(), Version: testsupport.Client1098}
}

func TestLookupsBeforeLoadFail(t *testing.T) {
	store := assets.NewStore(nil, nil)

	if _, err := store.Enumerate(thing.Item); !errors.Is(err, assets.ErrNotLoaded) {
		t.Fatalf("Enumerate error = %v, want ErrNotLoaded", err)
	}
	if _, err := store.Describe(thing.New(thing.Item, 100), false); !errors.Is(err, faults.ErrNotLoaded) {
		t.Fatalf("Describe error = %v, want faults.ErrNotLoaded", err)
	}
	if store.State().Phase != assets.PhaseUnloaded {
		t.Fatalf("phase = %s, want unloaded", store.State().Phase)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		calls.Add(1)
		return newMemoryArchive(thing.New(thing.Item, 100)), nil
	})
	store := assets.NewStore(decoder, nil)
	req := loadRequest(t)

	var progress []int
	req.Progress = func(p int) { progress = append(progress, p) }
	if err := store.Load(context.Background(), req); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if err := store.Load(context.Background(), req); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("decoder calls = %d, want 1", calls.Load())
	}
	if len(progress) != 2 || progress[0] != 0 || progress[1] != 100 {
		t.Fatalf("progress = %v, want [0 100]", progress)
	}
	status := store.State()
	if !status.Loaded() || status.Version.Value != 1098 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestLoadFailureThenRetry(t *testing.T) {
	fail := true
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		if fail {
			return nil, errors.New("bad signature")
		}
		return newMemoryArchive(thing.New(thing.Outfit, 1)), nil
	})
	store := assets.NewStore(decoder, nil)
	req := loadRequest(t)

	err := store.Load(context.Background(), req)
	var loadErr *assets.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(err, faults.ErrLoad) || !faults.Retryable(err) {
		t.Fatalf("load error should be a retryable faults.ErrLoad: %v", err)
	}
	if loadErr.Version != 1098 {
		t.Fatalf("load error version = %d", loadErr.Version)
	}
	if store.State().Phase != assets.PhaseFailed {
		t.Fatalf("phase = %s, want failed", store.State().Phase)
	}
	if _, err := store.Enumerate(thing.Outfit); !errors.Is(err, assets.ErrNotLoaded) {
		t.Fatalf("Enumerate after failure = %v, want ErrNotLoaded", err)
	}

	fail = false
	if err := store.Load(context.Background(), req); err != nil {
		t.Fatalf("retry Load: %v", err)
	}
	ids, err := store.Enumerate(thing.Outfit)
	if err != nil || len(ids) != 1 {
		t.Fatalf("Enumerate after retry = %v, %v", ids, err)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		t.Fatal("decoder must not run when files are missing")
		return nil, nil
	})
	store := assets.NewStore(decoder, nil)
	req := loadRequest(t)
	req.SprPath = req.SprPath + ".missing"

	if err := store.Load(context.Background(), req); !errors.Is(err, faults.ErrLoad) {
		t.Fatalf("Load error = %v, want faults.ErrLoad", err)
	}
}

func TestLoadRejectsConcurrentLoad(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		close(entered)
		<-release
		return newMemoryArchive(), nil
	})
	store := assets.NewStore(decoder, nil)
	req := loadRequest(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := store.Load(context.Background(), req); err != nil {
			t.Errorf("background Load: %v", err)
		}
	}()
	<-entered

	if store.State().Phase != assets.PhaseLoading {
		t.Fatalf("phase = %s, want loading", store.State().Phase)
	}
	if err := store.Load(context.Background(), req); !errors.Is(err, assets.ErrLoadInProgress) {
		t.Fatalf("concurrent Load = %v, want ErrLoadInProgress", err)
	}
	if err := store.Unload(); !errors.Is(err, assets.ErrLoadInProgress) {
		t.Fatalf("Unload during load = %v, want ErrLoadInProgress", err)
	}
	close(release)
	wg.Wait()
}

func TestDescribeUnknownThing(t *testing.T) {
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		return newMemoryArchive(thing.New(thing.Item, 100)), nil
	})
	store := assets.NewStore(decoder, nil)
	if err := store.Load(context.Background(), loadRequest(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	desc, err := store.Describe(thing.New(thing.Item, 100), true)
	if err != nil {
		t.Fatalf("Describe known: %v", err)
	}
	if len(desc.Sprites) != 1 {
		t.Fatalf("extended describe should carry sprites: %+v", desc)
	}

	missing := thing.New(thing.Missile, 7)
	_, err = store.Describe(missing, false)
	var unknown *assets.UnknownThingError
	if !errors.As(err, &unknown) || unknown.Identity != missing {
		t.Fatalf("Describe missing = %v, want UnknownThingError", err)
	}
	if faults.Kind(err) != "unknown_thing" {
		t.Fatalf("kind = %q", faults.Kind(err))
	}
}

func TestEnumerateRejectsInvalidCategory(t *testing.T) {
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		return newMemoryArchive(), nil
	})
	store := assets.NewStore(decoder, nil)
	if err := store.Load(context.Background(), loadRequest(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := store.Enumerate(thing.Category(0)); err == nil {
		t.Fatal("expected error for invalid category")
	}
	ids, err := store.Enumerate(thing.Effect)
	if err != nil || len(ids) != 0 {
		t.Fatalf("empty category = %v, %v", ids, err)
	}
}

func TestUnloadAllowsVersionSwitch(t *testing.T) {
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		return newMemoryArchive(), nil
	})
	store := assets.NewStore(decoder, nil)
	req := loadRequest(t)
	if err := store.Load(context.Background(), req); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.Unload(); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	req.Version = testsupport.Client860
	if err := store.Load(context.Background(), req); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := store.State().Version.Value; got != 860 {
		t.Fatalf("version = %d, want 860", got)
	}
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	decoder := assets.DecoderFunc(func(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
		return newMemoryArchive(), nil
	})
	store := assets.NewStore(decoder, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Load(ctx, loadRequest(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load error = %v, want context.Canceled", err)
	}
}
