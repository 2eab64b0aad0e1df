package diag

import (
	"fmt"
	"time"
)

// Severity classifies a build diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Success
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Success:
		return "success"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic is one timestamped build message. Line and Column are zero
// when position tracking was not attempted; the validator only tracks
// positions approximately, so callers must not over-trust them.
type Diagnostic struct {
	Severity  Severity
	Message   string
	File      string
	Line      int
	Column    int
	Timestamp time.Time
}

// At returns a copy of d attributed to a file position.
func (d Diagnostic) At(file string, line, column int) Diagnostic {
	d.File = file
	d.Line = line
	d.Column = column
	return d
}

func (d Diagnostic) String() string {
	if d.File != "" && d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// New constructs a diagnostic stamped with the current time.
func New(sev Severity, message string) Diagnostic {
	return Diagnostic{Severity: sev, Message: message, Timestamp: time.Now()}
}

// Errorf builds an error diagnostic attributed to a file position.
func Errorf(file string, line int, format string, args ...any) Diagnostic {
	return New(Error, fmt.Sprintf(format, args...)).At(file, line, 0)
}

// Warningf builds a warning diagnostic attributed to a file position.
func Warningf(file string, line int, format string, args ...any) Diagnostic {
	return New(Warning, fmt.Sprintf(format, args...)).At(file, line, 0)
}
