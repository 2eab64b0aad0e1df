package diag

import "fmt"

// Log is the ordered, append-only diagnostic list of one pipeline run.
// Reset starts the next run. A Log belongs to a single in-progress run
// and is not safe to share across concurrent compile invocations.
type Log struct {
	items []Diagnostic
}

// Reset discards all accumulated diagnostics.
func (l *Log) Reset() {
	l.items = l.items[:0]
}

// Add appends d in arrival order.
func (l *Log) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

func (l *Log) Infof(format string, args ...any) {
	l.Add(New(Info, fmt.Sprintf(format, args...)))
}

func (l *Log) Warnf(format string, args ...any) {
	l.Add(New(Warning, fmt.Sprintf(format, args...)))
}

func (l *Log) Errorf(format string, args ...any) {
	l.Add(New(Error, fmt.Sprintf(format, args...)))
}

func (l *Log) Successf(format string, args ...any) {
	l.Add(New(Success, fmt.Sprintf(format, args...)))
}

// Len returns the number of accumulated diagnostics.
func (l *Log) Len() int {
	return len(l.items)
}

// Items returns the accumulated diagnostics in arrival order. The slice
// points at the log's internal storage; callers must not modify it.
func (l *Log) Items() []Diagnostic {
	return l.items
}

// HasErrors reports whether any diagnostic has Error severity.
func (l *Log) HasErrors() bool {
	for i := range l.items {
		if l.items[i].Severity == Error {
			return true
		}
	}
	return false
}

// Messages returns the message text of every diagnostic matching sev.
func (l *Log) Messages(sev Severity) []string {
	var out []string
	for i := range l.items {
		if l.items[i].Severity == sev {
			out = append(out, l.items[i].Message)
		}
	}
	return out
}
