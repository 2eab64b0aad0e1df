package pipeline

import (
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mzcc/pkg/diag"
)

// reportSchemaVersion is bumped whenever the Report layout changes, so
// stale reports are recognizable.
const reportSchemaVersion uint16 = 1

// Report is the machine-readable record of one build, persisted beside
// the artifact for external consumers (the editing UI reads it instead
// of re-parsing the textual diagnostics).
type Report struct {
	Schema     uint16
	Project    string
	Success    bool
	Errors     []string
	Warnings   []string
	OutputFile string
	ImageSize  int
	DurationMs int64
	Timestamp  time.Time
}

// EncodeReport serializes r with msgpack.
func EncodeReport(r *Report) ([]byte, error) {
	return msgpack.Marshal(r)
}

// DecodeReport deserializes a report blob.
func DecodeReport(data []byte) (*Report, error) {
	var r Report
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReportPath derives the report location from an artifact path by
// swapping the extension for .REP.
func ReportPath(outputPath string) string {
	if i := strings.LastIndexByte(outputPath, '.'); i > strings.LastIndexByte(outputPath, '/') {
		return outputPath[:i] + ".REP"
	}
	return outputPath + ".REP"
}

// writeReport persists the build report. A report failure never fails
// the build; it is downgraded to a warning.
func (p *Pipeline) writeReport(cfg Config, success bool, imageSize int, elapsed time.Duration) {
	r := &Report{
		Schema:     reportSchemaVersion,
		Project:    cfg.ProjectName,
		Success:    success,
		Errors:     p.log.Messages(diag.Error),
		Warnings:   p.log.Messages(diag.Warning),
		OutputFile: cfg.OutputPath,
		ImageSize:  imageSize,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now(),
	}
	blob, err := EncodeReport(r)
	if err != nil {
		p.log.Warnf("build report not written: %v", err)
		return
	}
	if err := p.store.WriteBinary(ReportPath(cfg.OutputPath), blob); err != nil {
		p.log.Warnf("build report not written: %v", err)
	}
}
