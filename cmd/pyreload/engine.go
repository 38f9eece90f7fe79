package main

import (
	"context"
	"path/filepath"

	"pyreload/internal/config"
	"pyreload/internal/logging"
	"pyreload/internal/modgraph"
	"pyreload/internal/pypath"
)

// analyzeModule runs the discovery half of the pipeline for a module file:
// identify the module and its package boundary, merge skip lists from config
// and any RELOAD.toml next to the boundary package, and build the dependency
// graph. No host state is touched.
func analyzeModule(cfg *config.Config, logger *logging.Logger, moduleFile string) (*modgraph.Graph, error) {
	id, err := pypath.Identify(moduleFile)
	if err != nil {
		return nil, err
	}

	decl, err := config.LoadDeclaration(filepath.Join(id.Root, string(id.Boundary)))
	if err != nil {
		return nil, err
	}
	skip := cfg.EffectiveSkip(decl)

	resolver := modgraph.NewResolver(pypath.NewFSLocator(id.Root), id.Boundary, skip)
	builder := modgraph.NewBuilder(resolver, logger)
	builder.MaxSourceBytes = cfg.Scan.MaxFileSizeBytes
	return builder.Build(context.Background(), modgraph.Identity{Dotted: id.Dotted, Source: id.Source})
}
