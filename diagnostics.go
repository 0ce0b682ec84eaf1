package slint

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (sev Severity) String() string {
	switch sev {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "?"
}

// Diagnostic is one problem found in a source file. Diagnostics are
// collected and reported to the caller, they are never thrown: a parse or
// resolution problem does not abort the pipeline.
type Diagnostic struct {
	Level      Severity `json:"level"`
	Message    string   `json:"message"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	SourceFile string   `json:"sourceFile,omitempty"`
}

func (d Diagnostic) String() string {
	if d.SourceFile != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.SourceFile, d.Line, d.Column, d.Level, d.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Level, d.Message)
}

// DiagnosticList accumulates the diagnostics of one compilation session.
type DiagnosticList struct {
	Diagnostics []Diagnostic
}

func (dl *DiagnosticList) Add(d Diagnostic) {
	dl.Diagnostics = append(dl.Diagnostics, d)
}

func (dl *DiagnosticList) Errorf(loc Location, format string, args ...interface{}) {
	dl.Add(Diagnostic{
		Level:      SeverityError,
		Message:    fmt.Sprintf(format, args...),
		Line:       loc.Line,
		Column:     loc.Column,
		SourceFile: loc.SourceFile,
	})
}

func (dl *DiagnosticList) Warnf(loc Location, format string, args ...interface{}) {
	dl.Add(Diagnostic{
		Level:      SeverityWarning,
		Message:    fmt.Sprintf(format, args...),
		Line:       loc.Line,
		Column:     loc.Column,
		SourceFile: loc.SourceFile,
	})
}

// HasError tells whether any Error-level diagnostic was recorded. A session
// with errors yields no usable compiled component.
func (dl *DiagnosticList) HasError() bool {
	for _, d := range dl.Diagnostics {
		if d.Level == SeverityError {
			return true
		}
	}
	return false
}

func (dl *DiagnosticList) String() string {
	var sb strings.Builder
	for _, d := range dl.Diagnostics {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Location is a position in a source file, 1-based.
type Location struct {
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	SourceFile string `json:"sourceFile,omitempty"`
}

const BLACK = "\033[0;0m"
const RED = "\033[0;31m"
const YELLOW = "\033[0;33m"
const BLUE = "\033[94m"
const GREEN = "\033[92m"

// FormattedAnnotation renders a diagnostic with a few lines of source
// context, highlighting the offending line.
func FormattedAnnotation(source string, d Diagnostic, color string, contextSize int) string {
	if source != "" && contextSize >= 0 {
		lines := strings.Split(source, "\n")
		line := d.Line - 1
		if line >= 0 && line < len(lines) {
			begin := max(0, line-contextSize)
			end := min(len(lines), line+contextSize+1)
			tmp := ""
			for i := begin; i < end; i++ {
				if i == line {
					tmp += fmt.Sprintf("%3d\t%s%v%s\n", i+1, color, lines[i], BLACK)
				} else {
					tmp += fmt.Sprintf("%3d\t%v\n", i+1, lines[i])
				}
			}
			return fmt.Sprintf("%s\n%s", d.String(), tmp)
		}
	}
	return d.String()
}

func max(n1 int, n2 int) int {
	if n1 > n2 {
		return n1
	}
	return n2
}

func min(n1 int, n2 int) int {
	if n1 < n2 {
		return n1
	}
	return n2
}
