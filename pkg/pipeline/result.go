package pipeline

import (
	"strings"
	"time"

	"mzcc/pkg/diag"
)

// Result is the record one compile invocation hands back to its caller.
// The caller owns it; the pipeline never touches it again.
type Result struct {
	Success    bool
	Errors     []string
	Warnings   []string
	OutputFile string

	// Executable carries the produced image bytes on success, nil
	// otherwise.
	Executable []byte

	// RawOutput is the rendered diagnostic stream, one message per line.
	RawOutput string

	CompilationTime time.Duration
}

// resultFrom collects a Result out of the run's diagnostic log.
func resultFrom(log *diag.Log, success bool, outputFile string, executable []byte, elapsed time.Duration) Result {
	var raw strings.Builder
	for _, d := range log.Items() {
		raw.WriteString(d.String())
		raw.WriteByte('\n')
	}
	return Result{
		Success:         success,
		Errors:          log.Messages(diag.Error),
		Warnings:        log.Messages(diag.Warning),
		OutputFile:      outputFile,
		Executable:      executable,
		RawOutput:       raw.String(),
		CompilationTime: elapsed,
	}
}
