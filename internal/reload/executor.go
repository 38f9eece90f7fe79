package reload

import (
	rlerrors "pyreload/internal/errors"
	"pyreload/internal/logging"
	"pyreload/internal/modgraph"
	"pyreload/internal/plan"
)

// Executor walks a reload plan strictly in order: evict the module's bytecode
// cache, then re-execute it. A later module never starts before the earlier
// one completes, because later from-imports depend on the earlier modules'
// fully updated namespaces.
type Executor struct {
	runtime Runtime
	cache   BytecodeCache
	logger  *logging.Logger
}

// NewExecutor creates an executor. A nil cache disables eviction; a nil
// logger discards output.
func NewExecutor(runtime Runtime, cache BytecodeCache, logger *logging.Logger) *Executor {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{runtime: runtime, cache: cache, logger: logger}
}

// Run executes p against g and returns how many steps completed. The first
// re-execution error halts the plan immediately; modules already processed
// stay in their reloaded state. There is no rollback and no retry.
func (e *Executor) Run(g *modgraph.Graph, p *plan.Plan) (int, error) {
	for i, dotted := range p.Modules {
		node, ok := g.Node(dotted)
		if !ok {
			return i, rlerrors.NewModule(rlerrors.InternalError, dotted,
				"planned module missing from graph", nil)
		}
		id := node.Identity

		if err := e.cache.Evict(id); err != nil {
			e.logger.Warn("Bytecode cache eviction failed", map[string]interface{}{
				"module": dotted,
				"error":  err.Error(),
			})
		} else {
			e.logger.Debug("Evicted bytecode cache", map[string]interface{}{
				"module": dotted,
			})
		}

		if err := e.runtime.Reload(id); err != nil {
			return i, rlerrors.NewModule(rlerrors.ReloadFailed, dotted,
				"re-executing module", err)
		}
		e.logger.Info("Reloaded module", map[string]interface{}{
			"module": dotted,
			"step":   i + 1,
			"of":     len(p.Modules),
		})
	}
	return len(p.Modules), nil
}
