package reload

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pyreload/internal/logging"
	"pyreload/internal/modgraph"
	"pyreload/internal/plan"
	"pyreload/internal/pypath"
)

// Options configures a Reloader. The zero value is usable: no skip list, no
// bytecode eviction, no history, discarded logs.
type Options struct {
	// Skip lists dotted paths treated as external even when they fall
	// inside the package boundary.
	Skip []string

	// MaxSourceBytes rejects module files larger than this during
	// discovery. Zero means no limit.
	MaxSourceBytes int

	Cache    BytecodeCache
	Recorder Recorder
	Logger   *logging.Logger
}

// Result reports one completed (or halted) reload request.
type Result struct {
	Session Session
	Graph   *modgraph.Graph
	Plan    *plan.Plan
}

// Reloader runs the full discover, schedule, execute pipeline for one module
// file. The dependency graph is rebuilt from scratch on every call; nothing
// is cached across requests. Concurrent calls against overlapping packages
// are not supported; the caller serializes.
type Reloader struct {
	runtime Runtime
	opts    Options
	logger  *logging.Logger
}

// New creates a Reloader around the host's re-execution primitive.
func New(runtime Runtime, opts Options) *Reloader {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reloader{runtime: runtime, opts: opts, logger: logger}
}

// Reload re-executes moduleFile and every in-boundary module it transitively
// from-imports, dependencies first. A parse error anywhere in the reachable
// set aborts before any re-execution. The first re-execution error halts the
// plan; earlier modules stay reloaded.
func (r *Reloader) Reload(ctx context.Context, moduleFile string) (*Result, error) {
	session := Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	id, err := pypath.Identify(moduleFile)
	if err != nil {
		return nil, err
	}
	session.Root = id.Dotted

	resolver := modgraph.NewResolver(pypath.NewFSLocator(id.Root), id.Boundary, r.opts.Skip)
	builder := modgraph.NewBuilder(resolver, r.logger)
	builder.MaxSourceBytes = r.opts.MaxSourceBytes
	graph, err := builder.Build(ctx, modgraph.Identity{Dotted: id.Dotted, Source: id.Source})
	if err != nil {
		return nil, err
	}

	p := plan.Compute(graph)
	session.Modules = p.Modules
	session.Cycles = len(p.Cycles)

	r.logger.Info("Computed reload plan", map[string]interface{}{
		"session": session.ID,
		"root":    graph.Root,
		"modules": graph.Len(),
		"steps":   p.Steps(),
	})
	for _, cycle := range p.Cycles {
		// Two passes converge most cycles; deeper tangles may need more
		// and are not silently re-run.
		r.logger.Warn("Import cycle detected, applying two-pass convergence", map[string]interface{}{
			"session": session.ID,
			"members": cycle,
		})
	}

	executor := NewExecutor(r.runtime, r.opts.Cache, r.logger)
	executed, execErr := executor.Run(graph, p)

	session.Executed = executed
	session.Duration = time.Since(session.StartedAt)
	if execErr != nil {
		session.Status = StatusFailed
		session.Failed = p.Modules[executed]
		session.Error = execErr.Error()
	} else {
		session.Status = StatusOK
	}
	r.record(session)

	result := &Result{Session: session, Graph: graph, Plan: p}
	if execErr != nil {
		return result, execErr
	}
	return result, nil
}

func (r *Reloader) record(session Session) {
	if r.opts.Recorder == nil {
		return
	}
	if err := r.opts.Recorder.Record(session); err != nil {
		r.logger.Warn("Failed to record reload session", map[string]interface{}{
			"session": session.ID,
			"error":   err.Error(),
		})
	}
}
