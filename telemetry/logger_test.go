package telemetry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpLoggerDiscardsEverything(t *testing.T) {
	var l NoOpLogger
	assert.False(t, l.IsEnabled(LevelError))
	l.Log(Entry{Level: LevelError, Message: "should not panic"})
}

func TestDefaultLoggerRespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger(&buf, LevelWarn)

	l.Log(Entry{Level: LevelInfo, Op: "read", Message: "ignored"})
	assert.Empty(t, buf.String())

	l.Log(Entry{Level: LevelError, Op: "read", Message: "boom", Err: errors.New("eio")})
	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "read")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "eio")
}

func TestDefaultLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger(&buf, LevelError)
	l.Log(Entry{Level: LevelInfo, Message: "ignored"})
	assert.Empty(t, buf.String())

	l.SetLevel(LevelInfo)
	l.Log(Entry{Level: LevelInfo, Message: "now visible"})
	assert.True(t, strings.Contains(buf.String(), "now visible"))
}
