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

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// progressPrinter tracks bytes hashed so far and repaints a single
// carriage-returned status line, the Go equivalent of main.cpp's
// "\r" + percents + " hashes:" + count loop.
type progressPrinter struct {
	fileSize   int64
	bytesDone  int64
	recordDone int64
	start      time.Time
}

func newProgressPrinter(fileSize int64) *progressPrinter {
	return &progressPrinter{fileSize: fileSize, start: time.Now()}
}

// onRecord is called from the pipeline's record callback, so it must be
// cheap and non-blocking, matching RecordCallback's contract.
func (p *progressPrinter) onRecord(offset int64, size int32) {
	atomic.StoreInt64(&p.bytesDone, offset+int64(size))
	atomic.AddInt64(&p.recordDone, 1)
}

func (p *progressPrinter) print() {
	done := atomic.LoadInt64(&p.bytesDone)
	count := atomic.LoadInt64(&p.recordDone)

	var pct float64
	if p.fileSize > 0 {
		pct = 100 * float64(done) / float64(p.fileSize)
	} else {
		pct = 100
	}

	fmt.Fprintf(os.Stdout, "\r%6.2f%%  %s / %s  hashes:%d",
		pct, humanize.Bytes(uint64(done)), humanize.Bytes(uint64(p.fileSize)), count)
}

func (p *progressPrinter) finish() {
	p.print()
	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Fprintf(os.Stdout, "\nTotal time: %s\n", elapsed)
}
