package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"obdexporter/internal/applock"
	"obdexporter/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectory(t *testing.T) {
	base := t.TempDir()

	missing := CheckOutputDirectory(filepath.Join(base, "a", "b", "Output"))
	if !missing.Passed || !strings.Contains(missing.Detail, "created on first export") {
		t.Fatalf("missing output dir = %+v", missing)
	}

	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	blocked := CheckOutputDirectory(filepath.Join(blocker, "Output"))
	if blocked.Passed {
		t.Fatalf("output under a file should fail: %+v", blocked)
	}

	existing := CheckOutputDirectory(base)
	if !existing.Passed {
		t.Fatalf("existing dir = %+v", existing)
	}
}

func TestCheckClientFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteClientArchive(t, cfg, testsupport.DefaultArchive())

	ok := CheckClientFiles(cfg.DatPath(), cfg.SprPath(), testsupport.Client1098)
	if !ok.Passed {
		t.Fatalf("matching archive failed: %s", ok.Detail)
	}
	if !strings.Contains(ok.Detail, "21 items") {
		t.Fatalf("detail = %q", ok.Detail)
	}

	mismatch := CheckClientFiles(cfg.DatPath(), cfg.SprPath(), testsupport.Client860)
	if mismatch.Passed || !strings.Contains(mismatch.Detail, "dat signature") {
		t.Fatalf("mismatch = %+v", mismatch)
	}

	missing := CheckClientFiles(filepath.Join(t.TempDir(), "none.dat"), cfg.SprPath(), testsupport.Client1098)
	if missing.Passed {
		t.Fatal("missing dat should fail")
	}
}

func TestCheckCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if catalog, result := CheckCatalog(cfg.Paths.VersionsFile); catalog != nil || result.Passed {
		t.Fatalf("missing catalog should fail: %+v", result)
	}
	testsupport.WriteCatalog(t, cfg)
	catalog, result := CheckCatalog(cfg.Paths.VersionsFile)
	if catalog == nil || !result.Passed {
		t.Fatalf("catalog check = %+v", result)
	}
}

func TestCheckLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obdexporter.lock")
	if result := CheckLock(path); !result.Passed {
		t.Fatalf("free lock = %+v", result)
	}
	lock := applock.New(path)
	if err := lock.TryAcquire(); err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	defer lock.Release()
	if result := CheckLock(path); result.Passed {
		t.Fatalf("held lock should fail: %+v", result)
	}
}

func TestCheckHistoryDisabledAndMissing(t *testing.T) {
	disabled := testsupport.NewConfig(t, testsupport.WithoutHistory())
	if result := CheckHistory(context.Background(), disabled); !result.Passed || result.Detail != "disabled" {
		t.Fatalf("disabled = %+v", result)
	}
	cfg := testsupport.NewConfig(t)
	if result := CheckHistory(context.Background(), cfg); !result.Passed {
		t.Fatalf("missing journal = %+v", result)
	}
	testsupport.MustOpenHistory(t, cfg)
	if result := CheckHistory(context.Background(), cfg); !result.Passed || result.Detail != "schema 1, no runs recorded" {
		t.Fatalf("empty journal = %+v", result)
	}
}

func TestRunAllPassesForPreparedInstall(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	testsupport.WriteCatalog(t, cfg)
	testsupport.WriteClientArchive(t, cfg, testsupport.DefaultArchive())

	results := RunAll(context.Background(), cfg)
	if !AllPassed(results) {
		for _, r := range results {
			t.Logf("%s: passed=%v %s", r.Name, r.Passed, r.Detail)
		}
		t.Fatal("expected all checks to pass")
	}
	if len(results) != 7 {
		t.Fatalf("result count = %d, want 7", len(results))
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}
