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

import "github.com/pkg/errors"

// Sentinel errors for the open/stat failure class (spec §7, taxonomy (1)).
// Wrapped with github.com/pkg/errors at the point of failure so callers get
// a stack trace, matching the teacher's use of pkg/errors across common/ and ste/.
var (
	ErrFileNotAccessible = errors.New("filesig: file is not accessible")
	ErrCannotStatFile    = errors.New("filesig: cannot determine file size")
	ErrUnalignedChunk    = errors.New("filesig: chunk_size must be a multiple of the OS page size for this reader")
)

// panic values for programmer misuse (spec §7 taxonomy (3)). These are not
// `error` values returned to a caller - they are process-fatal, mirroring
// common/logger.go's ILogger.Panic and common/singleChunkReader.go's use of
// `panic("...")` for invariant violations such as "unexpected nil buffer".
//
// Cancellation is a status, not an error (spec §7 taxonomy (4)): a
// cancelled run is reported via WaitStatus.Canceled() and, from
// Pipeline.Cancel(true), via CheckException() returning whatever
// exception a worker had actually captured - there is no separate
// sentinel for "cancelled with no underlying error".
const (
	panicPushAfterFreeze = "filesig: push to aggregator after it was frozen"
	panicReleaseUnknown  = "filesig: release of a buffer the pool does not own"
)
