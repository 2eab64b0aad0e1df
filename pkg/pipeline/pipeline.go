package pipeline

import (
	"time"

	"mzcc/pkg/compiler"
	"mzcc/pkg/diag"
)

// Store is the narrow guest file store surface the pipeline consumes.
// The store must guarantee that concurrent access to different paths
// does not corrupt either; the pipeline does not re-check that.
type Store interface {
	ReadText(path string) (string, error)
	WriteBinary(path string, data []byte) error
}

// State tracks where one pipeline instance is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// maxImageBytes is the practical single-segment ceiling for a produced
// image. A larger image signals a generator defect, not a user error.
const maxImageBytes = 0xFFFF

// Pipeline sequences one compile invocation: read source, validate, emit,
// assemble, persist, and accumulate diagnostics along the way. A single
// instance must not run concurrent invocations; its diagnostics belong to
// the most recently started run.
type Pipeline struct {
	store Store
	log   diag.Log
	state State
}

// New creates a pipeline over the given guest store.
func New(store Store) *Pipeline {
	return &Pipeline{store: store, state: StateIdle}
}

// State returns the lifecycle state of the last (or current) run.
func (p *Pipeline) State() State {
	return p.state
}

// Diagnostics returns the diagnostic stream of the most recently started
// run, in arrival order.
func (p *Pipeline) Diagnostics() []diag.Diagnostic {
	return p.log.Items()
}

// Compile runs the full build sequence for cfg and returns its result
// synchronously. Every invocation starts fresh: state moves to building
// and the diagnostic log is reset.
func (p *Pipeline) Compile(cfg Config) Result {
	start := time.Now()
	var deadline time.Time
	if cfg.MaxDuration > 0 {
		deadline = start.Add(cfg.MaxDuration)
	}

	p.state = StateBuilding
	p.log.Reset()
	p.log.Infof("compiling %s", cfg.SourcePath)

	backend, err := backendFor(cfg.Backend)
	if err != nil {
		return p.fail(cfg, start, "internal error: %v", err)
	}

	src, err := p.store.ReadText(cfg.SourcePath)
	if err != nil {
		return p.fail(cfg, start, "source file not found: %s", cfg.SourcePath)
	}

	if r, ok := p.pastDeadline(cfg, start, deadline); ok {
		return r
	}

	errs, warns := compiler.Validate(src, cfg.SourcePath)
	if len(errs) > 0 {
		for _, e := range errs {
			p.log.Add(e)
		}
		for _, w := range warns {
			p.log.Add(w)
		}
		return p.finishFailed(cfg, start)
	}
	for _, w := range warns {
		p.log.Add(w)
	}

	if r, ok := p.pastDeadline(cfg, start, deadline); ok {
		return r
	}

	image, err := backend.Build(src, cfg, &p.log)
	if err != nil {
		return p.fail(cfg, start, "internal error: %v", err)
	}
	if len(image) == 0 || len(image) > maxImageBytes {
		return p.fail(cfg, start, "internal error: produced image is %d bytes, outside (0, %d]", len(image), maxImageBytes)
	}

	if r, ok := p.pastDeadline(cfg, start, deadline); ok {
		return r
	}

	if err := p.store.WriteBinary(cfg.OutputPath, image); err != nil {
		return p.fail(cfg, start, "failed to write %s: %v", cfg.OutputPath, err)
	}

	elapsed := time.Since(start)
	if cfg.Report {
		p.writeReport(cfg, true, len(image), elapsed)
	}

	p.log.Successf("build of %s finished in %s (%d bytes)", cfg.OutputPath, elapsed.Round(time.Millisecond), len(image))
	p.state = StateSuccess
	return resultFrom(&p.log, true, cfg.OutputPath, image, elapsed)
}

// fail records a single error diagnostic and closes the run.
func (p *Pipeline) fail(cfg Config, start time.Time, format string, args ...any) Result {
	p.log.Errorf(format, args...)
	return p.finishFailed(cfg, start)
}

// finishFailed closes a run whose error diagnostics are already logged.
// The failed half of the build report is written here, so external
// consumers see failures too, not only successful builds.
func (p *Pipeline) finishFailed(cfg Config, start time.Time) Result {
	p.state = StateError
	elapsed := time.Since(start)
	if cfg.Report {
		p.writeReport(cfg, false, 0, elapsed)
	}
	return resultFrom(&p.log, false, "", nil, elapsed)
}

// pastDeadline implements the cooperative duration bound: it is checked
// between stages, never preemptively.
func (p *Pipeline) pastDeadline(cfg Config, start, deadline time.Time) (Result, bool) {
	if deadline.IsZero() || time.Now().Before(deadline) {
		return Result{}, false
	}
	return p.fail(cfg, start, "build exceeded the configured maximum duration"), true
}
