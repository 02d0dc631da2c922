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
	"sort"
	"sync"
	"time"
)

// Record describes one hashed block. Records are totally ordered by Offset;
// the pipeline guarantees no two records share an offset.
type Record struct {
	Offset int64
	Size   int32
	Hash   []byte
}

// RecordCallback is invoked, in file order, once per record. It must not
// block or call back into the aggregator - it runs on the pushing worker's
// goroutine while the aggregator's mutex is held, exactly as
// original_source/file_sig_lib/SigRecords.hpp documents for its
// OnHashRecord callback ("must not use long operations or wait functions").
type RecordCallback func(Record)

// aggregator is the ordered-records aggregator (spec §4.4). It is grounded
// on two teacher shapes: the state machine (pending set keyed by offset,
// next_offset cursor, cleaned/frozen flags, single captured exception) comes
// from original_source/file_sig_lib/SigRecords.hpp; the push/drain-in-order
// loop under one mutex comes from common/chunkedFileWriter.go's
// saveAvailableChunks, generalized from a channel-fed single writer
// goroutine to a directly-called, multi-writer-safe type (workers call
// push concurrently here, instead of a single worker routine reading a
// channel), since the pipeline has N hashing goroutines rather than one
// writer goroutine.
type aggregator struct {
	mu       sync.Mutex
	cv       *sync.Cond
	pending  []Record // kept sorted by Offset; small-N insertion sort is fine, see insert
	nextOff  int64
	callback RecordCallback
	err      error
	cleaned  bool
	frozen   bool
}

func newAggregator() *aggregator {
	a := &aggregator{}
	a.cv = sync.NewCond(&a.mu)
	return a
}

// SetCallback registers or replaces the push-side emit callback. Takes
// effect starting with the next push, per spec §4.4.
func (a *aggregator) SetCallback(cb RecordCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = cb
}

// Push inserts a record and, if a callback is installed, drains every
// record now in order through it. Returns false if the aggregator has
// been cleaned (cancelled) - the caller (a pipeline worker) should stop
// pulling blocks in that case. Pushing after Freeze is a programmer error.
func (a *aggregator) Push(r Record) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cleaned {
		return false
	}
	if a.frozen {
		panic(panicPushAfterFreeze)
	}

	a.insert(r)

	if a.callback != nil {
		for {
			head, ok := a.peekReady()
			if !ok {
				break
			}
			a.pending = a.pending[1:]
			a.nextOff += int64(head.Size)
			a.callback(head)
		}
	} else {
		a.cv.Broadcast()
	}
	return true
}

// insert keeps a.pending sorted by Offset. Chosen over a map/heap because
// in-flight block counts are small (bounded by worker_count plus whatever
// a reader's own pool holds), so linear insertion is simpler than a tree
// and plenty fast; mirrors the teacher's ordinary-library-container choice
// (std::set<HashRecord> in SigRecords.hpp) rather than introducing a new
// dependency for this.
func (a *aggregator) insert(r Record) {
	i := sort.Search(len(a.pending), func(i int) bool { return a.pending[i].Offset >= r.Offset })
	a.pending = append(a.pending, Record{})
	copy(a.pending[i+1:], a.pending[i:])
	a.pending[i] = r
}

// peekReady reports whether the lowest-offset pending record is exactly
// the next one due for emission.
func (a *aggregator) peekReady() (Record, bool) {
	if len(a.pending) == 0 {
		return Record{}, false
	}
	head := a.pending[0]
	if head.Offset != a.nextOff {
		return Record{}, false
	}
	return head, true
}

// TryPop waits (up to timeout) for the next in-order record and, if one is
// ready, removes and returns it. Semantics follow
// original_source/file_sig_lib/SigRecords.hpp's tryPopRecord: an absolute
// deadline (time.Now().Add(timeout), computed once on entry) is used so spurious
// wakeups never extend the caller's total wait past timeout.
func (a *aggregator) TryPop(timeout time.Duration) (Record, WaitStatus, error) {
	deadline := time.Now().Add(timeout)

	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		if a.err != nil {
			err := a.err
			a.err = nil
			return Record{}, 0, err
		}
		if a.cleaned {
			return Record{}, EWaitStatus.Canceled(), nil
		}
		if head, ok := a.peekReady(); ok {
			a.pending = a.pending[1:]
			a.nextOff += int64(head.Size)
			return head, EWaitStatus.Ready(), nil
		}
		if a.frozen {
			return Record{}, EWaitStatus.Finished(), nil
		}
		if !a.waitUntil(deadline) {
			return Record{}, EWaitStatus.Timeout(), nil
		}
	}
}

// WaitForAny blocks on the same wake conditions as TryPop but does not
// extract a record - used when the caller drives emission solely through
// a callback and only wants to know when the run is done.
func (a *aggregator) WaitForAny(timeout time.Duration) (WaitStatus, error) {
	deadline := time.Now().Add(timeout)

	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		if a.err != nil {
			err := a.err
			a.err = nil
			return 0, err
		}
		if a.cleaned {
			return EWaitStatus.Canceled(), nil
		}
		if a.frozen && len(a.pending) == 0 {
			return EWaitStatus.Finished(), nil
		}
		if _, ok := a.peekReady(); ok {
			return EWaitStatus.Ready(), nil
		}
		if !a.waitUntil(deadline) {
			return EWaitStatus.Timeout(), nil
		}
	}
}

// waitUntil blocks on the condition variable until woken or the deadline
// passes, returning false on timeout. sync.Cond has no wait-with-deadline,
// so we approximate it by waking a helper goroutine at the deadline; this
// keeps the same "use an absolute deadline, not a per-wakeup timer" policy
// spec §4.4/§5 calls for while staying on sync.Cond (matching the
// mutex+condvar shape of every teacher reader/writer in this package,
// rather than switching this one type to channels).
func (a *aggregator) waitUntil(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}

	timedOut := make(chan struct{})
	timer := time.AfterFunc(remaining, func() {
		close(timedOut)
		a.cv.Broadcast()
	})
	defer timer.Stop()

	a.cv.Wait()

	select {
	case <-timedOut:
		return false
	default:
		return true
	}
}

// SetException stores the first error reported by any worker; later calls
// are no-ops, per spec §7's "first exception observed ... is stored once".
func (a *aggregator) SetException(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return
	}
	a.err = err
	a.cv.Broadcast()
}

// CheckException consumes and returns the captured exception, if any,
// leaving none behind for the next caller. Mirrors
// original_source/file_sig_lib/SigRecords.hpp's checkException(), used by
// SigPipeline::cancel(sync) to re-raise a worker's exception after joining
// every thread.
func (a *aggregator) CheckException() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.err
	a.err = nil
	return err
}

// SetCleaned marks cancellation: discards pending records and wakes every
// waiter with Canceled.
func (a *aggregator) SetCleaned() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cleaned = true
	a.pending = nil
	a.cv.Broadcast()
}

// SetFrozen marks end-of-input: no more pushes will arrive. Per the
// freeze-then-push race discussion in spec §9, callers must call this only
// after their own work is fully pushed (the pipeline's last-worker-out
// convention handles that).
func (a *aggregator) SetFrozen() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frozen = true
	a.cv.Broadcast()
}
