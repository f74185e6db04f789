package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"obdexporter/internal/pipeline"
	"obdexporter/internal/thing"
	"obdexporter/internal/versions"
)

// loadClient starts a load and blocks until it finishes.
func loadClient(ctx context.Context, controller *pipeline.Controller, version versions.Version) error {
	if err := controller.StartLoad(ctx, version); err != nil {
		return err
	}
	if err := controller.Wait(ctx); err != nil {
		return err
	}
	if err := controller.LastLoadError(); err != nil {
		return err
	}
	return nil
}

// expandSelectors turns selector arguments into identities. Single ids are
// kept as given so unknown things surface as export failures; ranges and
// "all" are matched against the loaded archive.
func expandSelectors(controller *pipeline.Controller, args []string) ([]thing.Identity, error) {
	var out []thing.Identity
	available := map[thing.Category][]thing.Identity{}
	for _, arg := range args {
		for _, field := range strings.Fields(strings.ReplaceAll(arg, ",", " ")) {
			selector, err := thing.ParseSelector(field)
			if err != nil {
				return nil, err
			}
			if !selector.All && selector.From == selector.To {
				out = append(out, thing.New(selector.Category, selector.From))
				continue
			}
			ids, ok := available[selector.Category]
			if !ok {
				if ids, err = controller.Enumerate(selector.Category); err != nil {
					return nil, err
				}
				available[selector.Category] = ids
			}
			matched := selector.Expand(ids)
			if len(matched) == 0 {
				return nil, fmt.Errorf("selector %q matches no things in the loaded client", field)
			}
			out = append(out, matched...)
		}
	}
	return out, nil
}

func selectorArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s requires at least one selector such as item:100, outfit:1-10 or missile:all", cmd.Name())
	}
	return nil
}
