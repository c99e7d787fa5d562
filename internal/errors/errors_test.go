package errors

import (
	"errors"
	"testing"

	"github.com/standardbeagle/gcbuild/internal/location"
)

func TestBuildMessageError(t *testing.T) {
	underlying := errors.New("bad bracket")
	m := NewBuildMessage(Error, Syntactic, "could not parse header").WithCause(underlying)

	if !errors.Is(m, underlying) {
		t.Errorf("expected BuildMessage to unwrap to underlying error")
	}

	want := "[error/syntactic] could not parse header: bad bracket"
	if m.Error() != want {
		t.Errorf("Error() = %q, want %q", m.Error(), want)
	}
}

func TestBuildMessageWithLocation(t *testing.T) {
	src := location.SpreadsheetFile{Path: "items.csv"}
	loc := location.Cell(src, 1, 2)
	m := NewBuildMessage(Warning, Semantic, "duplicate key").WithLocation(loc)

	if m.Location == nil {
		t.Fatal("expected Location to be set")
	}
	if m.Error() == "" {
		t.Error("expected non-empty error text")
	}
}

func TestBuildLog_HasErrorsAndErrors(t *testing.T) {
	var log BuildLog
	log.Infof(Structural, nil, "starting build")
	log.Warnf(Semantic, nil, "unused alias %q", "a1")

	if log.HasErrors() {
		t.Error("expected no errors yet")
	}

	log.Errorf(Patch, nil, "replacement of nonexistent key %q", "missing")
	if !log.HasErrors() {
		t.Error("expected HasErrors to be true after Errorf")
	}
	if len(log.Errors()) != 1 {
		t.Errorf("expected exactly 1 error-severity message, got %d", len(log.Errors()))
	}
	if len(log.Messages) != 3 {
		t.Errorf("expected 3 total messages, got %d", len(log.Messages))
	}
}

func TestNewBuildFailed(t *testing.T) {
	var log BuildLog
	log.Infof(Structural, nil, "ok so far")
	if bf := NewBuildFailed(&log); bf != nil {
		t.Error("expected nil BuildFailed when log has no errors")
	}

	log.Errorf(Reference, nil, "unresolved ref %q", "item1")
	bf := NewBuildFailed(&log)
	if bf == nil {
		t.Fatal("expected non-nil BuildFailed once an error is logged")
	}
	if bf.Error() == "" {
		t.Error("expected non-empty Error() text")
	}
}

func TestBuildLog_CauseErrorf(t *testing.T) {
	var log BuildLog
	underlying := errors.New("transport reset")
	log.CauseErrorf(IO, nil, underlying, "fetch failed for %q", "config.csv")

	if len(log.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(log.Errors()))
	}
	if !errors.Is(log.Errors()[0], underlying) {
		t.Error("expected logged message to unwrap to underlying error")
	}
}
