package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"obdexporter/internal/applock"
	"obdexporter/internal/config"
	"obdexporter/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "obdexporter.toml")
	writeTestConfig(t, configPath, cfg)
	testsupport.WriteCatalog(t, cfg)
	testsupport.WriteClientArchive(t, cfg, testsupport.DefaultArchive())

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\napp_dir = %q\n\n[export]\nformat_version = %d\npacing_ms = 0\nrecord_history = %t\n\n[logging]\nlevel = \"debug\"\n",
		cfg.Paths.AppDir,
		cfg.Export.FormatVersion,
		cfg.Export.RecordHistory,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, input string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	got := make(map[string]bool, len(entries))
	for _, entry := range entries {
		got[entry.Name()] = true
	}
	if len(got) != len(names) {
		t.Fatalf("output files = %v, want %v", got, names)
	}
	for _, name := range names {
		if !got[name] {
			t.Fatalf("missing %s in %v", name, got)
		}
	}
}

func TestVersionsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"versions"}, env.configPath)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	requireContains(t, out, "1098")
	requireContains(t, out, "Client 8.60")
	requireContains(t, out, "default")
	requireContains(t, out, "57BBD603")
}

func TestThingsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"things", "outfit"}, env.configPath)
	if err != nil {
		t.Fatalf("things outfit: %v", err)
	}
	requireContains(t, out, "Client 10.98: 10 Outfit things (1-10)")
	requireContains(t, out, "Outfit_10.obd")

	out, _, err = runCLI(t, []string{"things", "items", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("things items: %v", err)
	}
	requireContains(t, out, "showing 5 of 21")

	if _, _, err := runCLI(t, []string{"things", "creature"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestThingsWrongVersionFailsLoad(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"things", "item", "--client-version", "860"}, env.configPath)
	if err == nil {
		t.Fatal("expected signature mismatch")
	}
	requireContains(t, err.Error(), "signature")
}

func TestExportCommandWritesArtifactsAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"export", "item:100", "outfit:1-3", "item:100"}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	requireContains(t, out, "Skipped 1 duplicate")
	requireContains(t, out, "Exported 4 things")
	requireFiles(t, env.cfg.Paths.OutputDir, "Item_100.obd", "Outfit_1.obd", "Outfit_2.obd", "Outfit_3.obd")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "4/4")

	out, _, err = runCLI(t, []string{"inspect", filepath.Join(env.cfg.Paths.OutputDir, "Item_100.obd")}, "")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "Item 100")
	requireContains(t, out, "v1")
	requireContains(t, out, "1098")
}

func TestExportUnknownThingFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"export", "item:101", "missile:50", "item:102"}, env.configPath)
	if err == nil {
		t.Fatal("expected export failure")
	}
	requireContains(t, err.Error(), "Missile 50")
	requireFiles(t, env.cfg.Paths.OutputDir, "Item_101.obd")

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "failed")
	requireContains(t, out, "Missile 50")
}

func TestExportSelectorMatchingNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"export", "effect:50-60"}, env.configPath)
	if err == nil {
		t.Fatal("expected error")
	}
	requireContains(t, err.Error(), "matches no things")
	if _, statErr := os.Stat(env.cfg.Paths.OutputDir); !os.IsNotExist(statErr) {
		t.Fatal("output directory should not be created")
	}
}

func TestExportRequiresSelector(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"export"}, env.configPath); err == nil {
		t.Fatal("expected error without selectors")
	}
}

func TestExportFormatAndOutputFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "custom")

	if _, _, err := runCLI(t, []string{"export", "-f", "3", "-o", target, "missile:all"}, env.configPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	requireFiles(t, target, "Missile_1.obd", "Missile_2.obd", "Missile_3.obd")

	out, _, err := runCLI(t, []string{"inspect", filepath.Join(target, "Missile_2.obd")}, "")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "v3")
}

func TestExportRefusesWhileLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	lock := applock.New(env.cfg.LockPath())
	if err := lock.TryAcquire(); err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	defer lock.Release()

	_, _, err := runCLI(t, []string{"export", "item:100"}, env.configPath)
	if !errors.Is(err, applock.ErrLocked) {
		t.Fatalf("export error = %v, want ErrLocked", err)
	}
}

func TestHistoryShow(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"export", "effect:1-2"}, env.configPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	store := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := store.ListRuns(t.Context(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns = %v, %v", runs, err)
	}

	out, _, err := runCLI(t, []string{"history", "show", runs[0].ID}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Run "+runs[0].ID)
	requireContains(t, out, "Effect 2")
	requireContains(t, out, "Effect_1.obd")

	if _, _, err := runCLI(t, []string{"history", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestSessionScript(t *testing.T) {
	env := setupCLITestEnv(t)
	script := strings.Join([]string{
		"load",
		"wait",
		"list outfit 3",
		"add item:100 item:101 item:100",
		"selection",
		"export",
		"wait",
		"status",
		"quit",
	}, "\n")

	out, _, err := runCLIWithInput(t, []string{"session"}, env.configPath, script)
	if err != nil {
		t.Fatalf("session: %v\n%s", err, out)
	}
	requireContains(t, out, "Loaded Client 10.98")
	requireContains(t, out, "10 Outfit things")
	requireContains(t, out, "1 2 3 ...")
	requireContains(t, out, "Added 2 (2 selected)")
	requireContains(t, out, "Exported 2 things")
	requireContains(t, out, "State:     ready")
	requireFiles(t, env.cfg.Paths.OutputDir, "Item_100.obd", "Item_101.obd")
}

func TestSessionRejectsWorkBeforeLoad(t *testing.T) {
	env := setupCLITestEnv(t)
	script := "add item:100\nexport\nbogus\nuse 860\nstatus\n"

	out, _, err := runCLIWithInput(t, []string{"session"}, env.configPath, script)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	requireContains(t, out, "selection can only change while ready")
	requireContains(t, out, "client assets are not loaded")
	requireContains(t, out, `unknown command "bogus"`)
	requireContains(t, out, "Selected Client 8.60")
	requireContains(t, out, "State:     idle")
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Preflight")
	requireContains(t, out, "Client files")
	requireContains(t, out, "[OK]")
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("unexpected failure in %q", out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv(config.AppDirEnv, filepath.Join(base, "app"))

	target := filepath.Join(base, "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "Wrote version catalog")
	if _, err := os.Stat(filepath.Join(base, "app", "versions.xml")); err != nil {
		t.Fatalf("expected catalog under app dir: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "7 versions")
}

func TestMissingCatalogPointsAtInit(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(env.cfg.Paths.VersionsFile); err != nil {
		t.Fatalf("remove catalog: %v", err)
	}
	_, _, err := runCLI(t, []string{"versions"}, env.configPath)
	if err == nil {
		t.Fatal("expected error without catalog")
	}
	requireContains(t, err.Error(), "config init")
}

func TestLogsCommandFiltersByRun(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"export", "missile:1"}, env.configPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	store := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := store.ListRuns(t.Context(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns = %v, %v", runs, err)
	}

	out, _, err := runCLI(t, []string{"logs", "--run", runs[0].ID, "--event", "export_complete"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "export completed")
	requireContains(t, out, runs[0].ID)

	out, _, err = runCLI(t, []string{"logs", "--run", "no-such-run"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No matching log lines")
}
