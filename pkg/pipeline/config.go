package pipeline

import "time"

// CompileOptions are the user-requested compilation flags. Only the
// extended backend looks at them, and it only echoes them into the
// diagnostic stream: the options never change the emitted bytes. That is
// a documented limitation of this generator, not an oversight.
type CompileOptions struct {
	Optimize    bool
	Warnings    bool
	Debug       bool
	CustomFlags []string
}

// Config is the complete input of one compile invocation. It is passed
// explicitly so the pipeline stays a pure function of
// (source, config, store); nothing is read from ambient state.
type Config struct {
	// ProjectName names the build in diagnostics and the report.
	ProjectName string

	// SourcePath and OutputPath are virtual-drive absolute paths inside
	// the guest store, e.g. /C/PROJECT/HELLO.C.
	SourcePath string
	OutputPath string

	// Backend selects the build variant; empty means BackendFull.
	Backend BackendKind

	// ExitCode is baked into the exit fragment of the emitted program.
	ExitCode uint8

	// StackSize overrides the image's initial stack pointer; zero keeps
	// the assembler default.
	StackSize uint16

	// NoChecksum skips the checksum pass over the finished image.
	NoChecksum bool

	// MaxDuration bounds a build. Zero means unbounded. The bound is
	// cooperative: it is checked between pipeline stages, not enforced
	// preemptively.
	MaxDuration time.Duration

	// Report requests a machine-readable build report beside the
	// artifact.
	Report bool

	Options CompileOptions
}
