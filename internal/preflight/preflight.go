package preflight

import (
	"context"

	"obdexporter/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// RunAll executes the preflight checks for the given config. Client file
// checks run only when the version catalog loads.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Application directory", cfg.Paths.AppDir))
	results = append(results, CheckDirectoryAccess("Client directory", cfg.Paths.ClientDir))
	results = append(results, CheckOutputDirectory(cfg.Paths.OutputDir))

	catalog, catalogResult := CheckCatalog(cfg.Paths.VersionsFile)
	results = append(results, catalogResult)
	if catalog != nil {
		version, err := catalog.Resolve(uint16(cfg.Client.DefaultVersion))
		if err != nil {
			results = append(results, Result{Name: "Client files", Detail: err.Error()})
		} else {
			results = append(results, CheckClientFiles(cfg.DatPath(), cfg.SprPath(), version))
		}
	}

	results = append(results, CheckHistory(ctx, cfg))
	results = append(results, CheckLock(cfg.LockPath()))
	return results
}
