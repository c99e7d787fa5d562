// Package errors implements the build message taxonomy (spec.md §7):
// every parsing, binding, patch, and IO failure accumulates into a
// BuildLog with a location rather than escaping as a raw Go error, so
// the build report can surface every problem in one pass instead of
// bailing on the first one.
package errors

import (
	"fmt"
	"time"

	"github.com/standardbeagle/gcbuild/internal/location"
)

// Severity distinguishes informational notes from build-failing errors.
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Category classifies a BuildMessage per spec.md §7.
type Category string

const (
	Structural Category = "structural"
	Syntactic  Category = "syntactic"
	Semantic   Category = "semantic"
	Reference  Category = "reference"
	Patch      Category = "patch"
	IO         Category = "io"
	Internal   Category = "internal"
)

// BuildMessage is one entry in a build's chronological report: a
// severity, a category, an optional source location, and an optional
// wrapped cause.
type BuildMessage struct {
	Severity  Severity
	Category  Category
	Location  *location.SourceLocation
	Text      string
	Cause     error
	Timestamp time.Time
}

// NewBuildMessage constructs a BuildMessage with the current time.
func NewBuildMessage(sev Severity, cat Category, text string) *BuildMessage {
	return &BuildMessage{Severity: sev, Category: cat, Text: text, Timestamp: time.Now()}
}

// WithLocation attaches a source location.
func (m *BuildMessage) WithLocation(loc location.SourceLocation) *BuildMessage {
	m.Location = &loc
	return m
}

// WithCause attaches an underlying error.
func (m *BuildMessage) WithCause(err error) *BuildMessage {
	m.Cause = err
	return m
}

// Error implements the error interface so a BuildMessage can be
// returned, wrapped, or compared with errors.Is/As like any other error.
func (m *BuildMessage) Error() string {
	loc := ""
	if m.Location != nil {
		loc = m.Location.String() + ": "
	}
	if m.Cause != nil {
		return fmt.Sprintf("%s[%s/%s] %s: %v", loc, m.Severity, m.Category, m.Text, m.Cause)
	}
	return fmt.Sprintf("%s[%s/%s] %s", loc, m.Severity, m.Category, m.Text)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (m *BuildMessage) Unwrap() error { return m.Cause }

// BuildLog accumulates messages across one build, the way spec.md §7
// requires: parsing and binding problems are collected rather than
// thrown, and the build only bails at a named gate.
type BuildLog struct {
	Messages []*BuildMessage
}

// Add appends a message to the log.
func (l *BuildLog) Add(m *BuildMessage) {
	l.Messages = append(l.Messages, m)
}

// Errorf records an Error-severity message in the given category.
func (l *BuildLog) Errorf(cat Category, loc *location.SourceLocation, format string, args ...any) {
	m := NewBuildMessage(Error, cat, fmt.Sprintf(format, args...))
	m.Location = loc
	l.Add(m)
}

// Warnf records a Warning-severity message.
func (l *BuildLog) Warnf(cat Category, loc *location.SourceLocation, format string, args ...any) {
	m := NewBuildMessage(Warning, cat, fmt.Sprintf(format, args...))
	m.Location = loc
	l.Add(m)
}

// Infof records an Info-severity message.
func (l *BuildLog) Infof(cat Category, loc *location.SourceLocation, format string, args ...any) {
	m := NewBuildMessage(Info, cat, fmt.Sprintf(format, args...))
	m.Location = loc
	l.Add(m)
}

// CauseErrorf records an Error-severity message wrapping an existing
// error as its cause.
func (l *BuildLog) CauseErrorf(cat Category, loc *location.SourceLocation, err error, format string, args ...any) {
	m := NewBuildMessage(Error, cat, fmt.Sprintf(format, args...)).WithCause(err)
	m.Location = loc
	l.Add(m)
}

// HasErrors reports whether any Error-severity message was recorded.
func (l *BuildLog) HasErrors() bool {
	for _, m := range l.Messages {
		if m.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity messages.
func (l *BuildLog) Errors() []*BuildMessage {
	var out []*BuildMessage
	for _, m := range l.Messages {
		if m.Severity == Error {
			out = append(out, m)
		}
	}
	return out
}

// BuildFailed is returned once a build reaches a gate with at least one
// Error-severity message in its log.
type BuildFailed struct {
	Report []*BuildMessage
}

// NewBuildFailed wraps a log's messages as a BuildFailed, provided the
// log actually has errors; returns nil otherwise so callers can write
// `if err := errors.NewBuildFailed(log); err != nil { return err }`.
func NewBuildFailed(log *BuildLog) *BuildFailed {
	if !log.HasErrors() {
		return nil
	}
	return &BuildFailed{Report: log.Messages}
}

func (e *BuildFailed) Error() string {
	n := 0
	for _, m := range e.Report {
		if m.Severity == Error {
			n++
		}
	}
	return fmt.Sprintf("build failed: %d error(s) of %d message(s)", n, len(e.Report))
}
