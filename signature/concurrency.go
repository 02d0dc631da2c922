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
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// ComputeWorkerCount picks the pipeline's worker count for readerKind
// given numCPU logical cores, honoring a FILESIG_WORKER_COUNT override the
// same way the teacher's common/concurrency.go honors
// AZCOPY_CONCURRENCY_VALUE. Absent an override, it follows spec §4.5's
// recommendation: one worker per core for the streaming reader (the
// producer goroutine is the one doing the I/O), three per core for either
// mmap mode (page faults block the hashing goroutine itself).
func ComputeWorkerCount(readerKind ReaderKind, numCPU int) (int, error) {
	if override := os.Getenv("FILESIG_WORKER_COUNT"); override != "" {
		val, err := strconv.Atoi(override)
		if err != nil {
			return 0, errors.Wrapf(err, "filesig: invalid FILESIG_WORKER_COUNT %q", override)
		}
		return val, nil
	}

	if numCPU < 1 {
		numCPU = 1
	}
	if readerKind == EReaderKind.Stream() {
		return numCPU, nil
	}
	return 3 * numCPU, nil
}
