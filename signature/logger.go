// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package signature

import (
	"log"
)

// ILogger is the ambient logging surface threaded through readers and the
// pipeline. Modeled on common/logger.go's ILogger (ShouldLog/Log/Panic),
// trimmed to what this package actually emits.
type ILogger interface {
	ShouldLog(level LogLevel) bool
	Log(level LogLevel, msg string)
}

// nullLogger discards everything; it's the default so callers that don't
// care about logging don't have to provide one.
type nullLogger struct{}

func (nullLogger) ShouldLog(LogLevel) bool    { return false }
func (nullLogger) Log(LogLevel, string)       {}

// StdLogger adapts the standard library's *log.Logger to ILogger, the way
// common/logger.go's jobLogger wraps *log.Logger for file-backed logging.
type StdLogger struct {
	Minimum LogLevel
	logger  *log.Logger
}

// NewStdLogger builds an ILogger that writes through dest every message at
// the given minimum level or more severe (Error is the most severe, Debug
// the least); None is never written.
func NewStdLogger(dest *log.Logger, minimum LogLevel) *StdLogger {
	return &StdLogger{Minimum: minimum, logger: dest}
}

func (l *StdLogger) ShouldLog(level LogLevel) bool {
	if level == ELogLevel.None() {
		return false
	}
	return level <= l.Minimum
}

func (l *StdLogger) Log(level LogLevel, msg string) {
	if !l.ShouldLog(level) {
		return
	}
	l.logger.Printf("%s: %s", level, msg)
}
