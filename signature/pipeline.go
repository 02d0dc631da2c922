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
	"sync"
	"sync/atomic"
	"time"
)

// Pipeline is the worker-pool coordinator (spec §4.5, C5), grounded on
// original_source/file_sig_lib/SigPipeline.{hpp,cpp}: a fixed pool of
// goroutines pulls blocks from a BlockReader, hashes each with Hasher, and
// pushes the resulting Record into an ordered-records aggregator. The last
// worker to exit its loop freezes the aggregator, mirroring hasherThread's
// "if 1 == m_activeThreads-- { records.setFreez() }".
type Pipeline struct {
	reader   BlockReader
	hasher   Hasher
	records  *aggregator
	log      ILogger
	active   int32
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewPipeline starts workerCount goroutines immediately. workerCount is
// clamped to at least 1, matching SigPipeline's std::max(threadsCount, 1u).
// log may be nil, in which case a no-op logger is used.
func NewPipeline(reader BlockReader, hasher Hasher, workerCount int, log ILogger) *Pipeline {
	if workerCount < 1 {
		workerCount = 1
	}
	if log == nil {
		log = nullLogger{}
	}

	p := &Pipeline{
		reader:  reader,
		hasher:  hasher,
		records: newAggregator(),
		log:     log,
		active:  int32(workerCount),
	}

	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.workerLoop()
	}
	return p
}

// SetRecordsCallback installs the push-side emit callback (spec §4.4);
// forwarded straight to the aggregator.
func (p *Pipeline) SetRecordsCallback(cb RecordCallback) {
	p.records.SetCallback(cb)
}

// workerLoop is one SigPipeline::hasherThread: pull, hash, push, repeat
// until the reader reports EOF or Push reports cancellation. Any error
// acquiring a block is captured as the pipeline's single exception,
// exactly as the C++ catch-and-setException block does.
func (p *Pipeline) workerLoop() {
	defer p.wg.Done()
	defer p.onWorkerExit()

	for {
		handle, err := p.reader.AcquireNext()
		if err != nil {
			if p.log.ShouldLog(ELogLevel.Error()) {
				p.log.Log(ELogLevel.Error(), "worker acquire failed: "+err.Error())
			}
			p.records.SetException(err)
			return
		}
		if handle == nil {
			return
		}

		record := Record{
			Offset: handle.Offset(),
			Size:   handle.Size(),
			Hash:   p.hasher(handle.Data()),
		}
		handle.Release()

		if !p.records.Push(record) {
			return
		}
	}
}

// onWorkerExit is the "if 1 == m_activeThreads--" check: only the worker
// that brings the active count to zero freezes the aggregator, since
// freezing earlier would make a still-running sibling's Push panic.
func (p *Pipeline) onWorkerExit() {
	if atomic.AddInt32(&p.active, -1) == 0 {
		p.records.SetFrozen()
	}
}

// Cancel stops the pipeline. It marks the aggregator cleaned (discarding
// any buffered records and causing AcquireNext-driven loops to wind down on
// their next iteration) and tells the reader to stop (once per pipeline),
// so workers currently blocked in AcquireNext (waiting on the streaming
// reader's producer, say) wake up. If sync is
// true, Cancel waits for every worker goroutine to exit before returning,
// matching SigPipeline::cancel(sync)'s waitAllThreads()+checkException.
func (p *Pipeline) Cancel(sync bool) error {
	p.records.SetCleaned()
	p.stopOnce.Do(func() {
		p.reader.Stop()
	})

	if !sync {
		return nil
	}
	p.wg.Wait()
	return p.records.CheckException()
}

// Wait blocks up to timeout for any record to become ready to pop, or for
// the run to finish/cancel/fail. It does not consume a record - callers
// driving emission through a callback use this to learn when the run has
// ended. Mirrors SigPipeline::wait(timeoutMs).
func (p *Pipeline) Wait(timeout time.Duration) (WaitStatus, error) {
	return p.records.WaitForAny(timeout)
}

// WaitRecord blocks up to timeout for the next in-order record and, if one
// becomes ready, returns it with EWaitStatus.Ready(). Mirrors
// SigPipeline::wait(timeoutMs, record).
func (p *Pipeline) WaitRecord(timeout time.Duration) (Record, WaitStatus, error) {
	return p.records.TryPop(timeout)
}

// Close stops every worker and releases the reader, matching
// SigPipeline::~SigPipeline's setCleanup()+waitAllThreads(). Safe to call
// after Cancel; idempotent via Cancel's own stopOnce on the reader.
func (p *Pipeline) Close() {
	_ = p.Cancel(true)
}
