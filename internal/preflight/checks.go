package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"obdexporter/internal/applock"
	"obdexporter/internal/assets/datfile"
	"obdexporter/internal/config"
	"obdexporter/internal/history"
	"obdexporter/internal/versions"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory passes when the output directory is writable or can be
// created by the first export.
func CheckOutputDirectory(path string) Result {
	const name = "Output directory"

	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		info, err := os.Stat(parent)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, parent)}
			}
			if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first export)", path)}
		}
		next := filepath.Dir(parent)
		if next == parent {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		parent = next
	}
}

// CheckCatalog loads the version catalog. The catalog is nil when the check fails.
func CheckCatalog(path string) (*versions.Catalog, Result) {
	const name = "Version catalog"

	catalog, err := versions.Load(path)
	if err != nil {
		return nil, Result{Name: name, Detail: err.Error()}
	}
	return catalog, Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d versions, default %s", catalog.Len(), catalog.Default()),
	}
}

// CheckClientFiles verifies the dat and spr headers carry the signatures of version.
func CheckClientFiles(datPath, sprPath string, version versions.Version) Result {
	const name = "Client files"

	dat, err := readDatHeader(datPath)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if dat.Signature != version.DatSignature {
		return Result{Name: name, Detail: fmt.Sprintf("dat signature %08X does not match %s", dat.Signature, version)}
	}
	spr, err := readSprHeader(sprPath, version.Extended())
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if spr.Signature != version.SprSignature {
		return Result{Name: name, Detail: fmt.Sprintf("spr signature %08X does not match %s", spr.Signature, version)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s: %d items, %d outfits, %d effects, %d missiles, %d sprites",
			version, max(0, int(dat.Items)-datfile.FirstItemID+1), dat.Outfits, dat.Effects, dat.Missiles, spr.Count),
	}
}

// CheckHistory reports the journal state. A missing journal passes; it is
// created by the first export.
func CheckHistory(ctx context.Context, cfg *config.Config) Result {
	const name = "Export history"

	if !cfg.Export.RecordHistory {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	path := cfg.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first export)", path)}
	}
	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	applied, err := store.Migrations(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	schema := "schema 0"
	if n := len(applied); n > 0 {
		schema = fmt.Sprintf("schema %d", applied[n-1].Version)
	}
	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(runs) == 0 {
		return Result{Name: name, Passed: true, Detail: schema + ", no runs recorded"}
	}
	last := runs[0]
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s, last run %s %s (%d/%d)", schema, last.StartedAt.Local().Format("2006-01-02 15:04"), last.Status, last.Completed, last.Total),
	}
}

// CheckLock fails while another exporter holds the lock.
func CheckLock(path string) Result {
	const name = "Exporter lock"

	held, err := applock.Held(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if held {
		return Result{Name: name, Detail: "held by another exporter"}
	}
	return Result{Name: name, Passed: true, Detail: "available"}
}

func readDatHeader(path string) (datfile.DatHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return datfile.DatHeader{}, err
	}
	defer file.Close()
	return datfile.ReadDatHeader(file)
}

func readSprHeader(path string, extended bool) (datfile.SprHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return datfile.SprHeader{}, err
	}
	defer file.Close()
	return datfile.ReadSprHeader(file, extended)
}
