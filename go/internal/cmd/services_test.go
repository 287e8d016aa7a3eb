package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type stubCloser struct {
	err    error
	closed int
}

func (s *stubCloser) Close() error {
	s.closed++
	return s.err
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestCloseLoggedReportsError(t *testing.T) {
	buf := captureLog(t)
	c := &stubCloser{err: errors.New("drain timeout")}

	closeLogged("record publisher", c)

	if c.closed != 1 {
		t.Fatalf("Close called %d times, want 1", c.closed)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one log entry, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "error" || entry["error"] != "drain timeout" || entry["component"] != "record publisher" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestCloseLoggedQuietOnSuccess(t *testing.T) {
	buf := captureLog(t)
	c := &stubCloser{}

	closeLogged("record publisher", c)

	if c.closed != 1 {
		t.Fatalf("Close called %d times, want 1", c.closed)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}
