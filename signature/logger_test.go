package signature

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLogger_RespectsMinimumLevel(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	l := NewStdLogger(log.New(&buf, "", 0), ELogLevel.Warning())

	a.True(l.ShouldLog(ELogLevel.Error()))
	a.True(l.ShouldLog(ELogLevel.Warning()))
	a.False(l.ShouldLog(ELogLevel.Info()))
	a.False(l.ShouldLog(ELogLevel.Debug()))
	a.False(l.ShouldLog(ELogLevel.None()))

	l.Log(ELogLevel.Info(), "should not appear")
	a.Empty(buf.String())

	l.Log(ELogLevel.Error(), "boom")
	a.Contains(buf.String(), "boom")
}

func TestNullLogger_NeverLogs(t *testing.T) {
	a := assert.New(t)
	var l ILogger = nullLogger{}
	a.False(l.ShouldLog(ELogLevel.Error()))
}
