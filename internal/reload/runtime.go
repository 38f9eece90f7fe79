// Package reload executes a computed reload plan against host collaborators.
//
// The package owns no interpreter state of its own: re-execution and bytecode
// eviction are injected interfaces, so everything up to the host boundary
// stays testable without a live runtime.
package reload

import (
	"os"
	"path/filepath"
	"time"

	"pyreload/internal/modgraph"
)

// Runtime is the host's single-module re-execution primitive. Reload re-runs
// the module's source against its existing namespace, preserving the
// namespace's identity but replacing its contents. It returns any error the
// module's own code raised during re-execution.
type Runtime interface {
	Reload(id modgraph.Identity) error
}

// BytecodeCache evicts a module's stale compiled artifacts before
// re-execution. Eviction failures are logged, never fatal.
type BytecodeCache interface {
	Evict(id modgraph.Identity) error
}

// PycacheCache removes the __pycache__ directory next to the module's source
// file. Missing directories are not an error.
type PycacheCache struct{}

func (PycacheCache) Evict(id modgraph.Identity) error {
	dir := filepath.Join(filepath.Dir(id.Source.Path), "__pycache__")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(dir)
}

// NopCache skips eviction entirely, for hosts that run with bytecode caching
// disabled.
type NopCache struct{}

func (NopCache) Evict(modgraph.Identity) error { return nil }

// Session summarizes one reload request for history recording.
type Session struct {
	ID        string        `json:"id"`
	Root      string        `json:"root"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Modules   []string      `json:"modules"`
	Cycles    int           `json:"cycles"`
	Executed  int           `json:"executed"`
	Status    string        `json:"status"`
	Failed    string        `json:"failed,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Session status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder persists completed sessions. Recording failures are logged, never
// fatal: history is a diagnostic aid, not part of the reload contract.
type Recorder interface {
	Record(session Session) error
}
