package pipeline

import (
	"fmt"
	"strings"
	"time"

	"mzcc/pkg/compiler"
	"mzcc/pkg/diag"
	"mzcc/pkg/mz"
)

// BackendKind names a build variant.
type BackendKind string

const (
	// BackendFull runs the real emitter and executable assembler.
	BackendFull BackendKind = "full"

	// BackendPlaceholder skips code generation entirely: it waits a
	// fixed artificial delay and produces a small non-executable marker
	// blob. Useful for exercising UI flows without a real binary.
	BackendPlaceholder BackendKind = "placeholder"

	// BackendExtended produces the same bytes as BackendFull but echoes
	// the requested compile options into the diagnostic stream.
	BackendExtended BackendKind = "extended"
)

// Backend is one build variant behind a common interface, so a future
// real cross-compiler can slot in without touching the orchestrator.
type Backend interface {
	Name() string
	Build(src string, cfg Config, log *diag.Log) ([]byte, error)
}

// backendFor resolves a kind to its implementation. The empty kind maps
// to the full backend.
func backendFor(kind BackendKind) (Backend, error) {
	switch kind {
	case BackendFull, "":
		return fullBackend{}, nil
	case BackendPlaceholder:
		return placeholderBackend{}, nil
	case BackendExtended:
		return extendedBackend{}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", kind)
}

type fullBackend struct{}

func (fullBackend) Name() string { return string(BackendFull) }

func (fullBackend) Build(src string, cfg Config, log *diag.Log) ([]byte, error) {
	code, err := compiler.EmitProgram(src, cfg.ExitCode)
	if err != nil {
		return nil, err
	}
	opts := mz.DefaultOptions()
	if cfg.StackSize != 0 {
		opts.StackSize = cfg.StackSize
	}
	opts.NoChecksum = cfg.NoChecksum
	return mz.Assemble(code, nil, opts)
}

// placeholderDelay is the fixed artificial build time of the placeholder
// backend.
const placeholderDelay = 250 * time.Millisecond

// placeholderMarker deliberately does not start with the executable
// signature, so nothing downstream mistakes the blob for a real image.
var placeholderMarker = []byte("::placeholder build, not executable::\r\n")

type placeholderBackend struct{}

func (placeholderBackend) Name() string { return string(BackendPlaceholder) }

func (placeholderBackend) Build(src string, cfg Config, log *diag.Log) ([]byte, error) {
	log.Infof("placeholder backend selected, emitting marker blob")
	time.Sleep(placeholderDelay)
	return placeholderMarker, nil
}

type extendedBackend struct{}

func (extendedBackend) Name() string { return string(BackendExtended) }

func (e extendedBackend) Build(src string, cfg Config, log *diag.Log) ([]byte, error) {
	log.Infof("optimization: %s", onOff(cfg.Options.Optimize))
	log.Infof("warnings: %s", onOff(cfg.Options.Warnings))
	log.Infof("debug info: %s", onOff(cfg.Options.Debug))
	if len(cfg.Options.CustomFlags) > 0 {
		log.Infof("custom flags: %s", strings.Join(cfg.Options.CustomFlags, " "))
	}
	// Options are echoed only; they do not alter the emitted bytes.
	return fullBackend{}.Build(src, cfg, log)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
