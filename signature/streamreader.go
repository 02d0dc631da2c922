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
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// poolBuffer is one fixed-capacity slot in the streaming reader's pool. Its
// backing array is never reallocated; only the logical length changes as
// it's refilled. Grounded on original_source/file_sig_lib/FileStreamChunkReader.hpp's
// private Chunk struct (a std::vector<char> buffer plus an offset) and on
// the free/ready/busy list discipline of FileStreamChunkReader.cpp.
type poolBuffer struct {
	buf    []byte // full capacity, reused forever
	size   int    // valid bytes, set when moved from free -> ready
	offset int64
}

// streamReader is the streaming reader with prefetch (spec §4.2, C2). One
// producer goroutine reads the file sequentially into pooled buffers; the
// pipeline's worker goroutines are the consumers. Everything is guarded by
// one mutex with two condition variables (readyCV, freeCV), exactly as
// original_source/file_sig_lib/FileStreamChunkReader.{hpp,cpp} and
// common/cacheLimiter.go's bounded-resource style.
type streamReader struct {
	base baseReader

	file      *os.File
	chunkSize int64

	mu      sync.Mutex
	readyCV *sync.Cond
	freeCV  *sync.Cond

	free  []*poolBuffer
	ready []*poolBuffer
	busy  map[int64]*poolBuffer // keyed by offset, which is unique per in-flight block

	stopped bool
	eof     bool
	err     error

	stopOnce sync.Once
	doneCh   chan struct{} // closed once the producer goroutine exits
}

// NewStreamReader opens path and starts its background prefetch goroutine.
// cachedChunksCount is the total number of pooled buffers (free+ready+busy);
// spec §4.2 recommends 2x worker_count.
func NewStreamReader(path string, cachedChunksCount int, chunkSize int64) (BlockReader, error) {
	if cachedChunksCount < 1 {
		cachedChunksCount = 1
	}
	if chunkSize <= 0 {
		return nil, errors.New("filesig: chunk_size must be positive")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotAccessible, "open %s: %v", path, err)
	}

	r := &streamReader{
		file:      f,
		chunkSize: chunkSize,
		busy:      make(map[int64]*poolBuffer, cachedChunksCount),
		doneCh:    make(chan struct{}),
	}
	r.readyCV = sync.NewCond(&r.mu)
	r.freeCV = sync.NewCond(&r.mu)
	r.base = baseReader{impl: r}

	for i := 0; i < cachedChunksCount; i++ {
		r.free = append(r.free, &poolBuffer{buf: make([]byte, chunkSize)})
	}

	go r.producerLoop()
	return &r.base, nil
}

// producerLoop is the single producer thread of spec §4.2.
func (r *streamReader) producerLoop() {
	defer close(r.doneCh)

	var pos int64
	for {
		r.mu.Lock()
		for len(r.free) == 0 && !r.stopped {
			r.freeCV.Wait()
		}
		if r.stopped {
			r.mu.Unlock()
			return
		}
		pb := r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]
		r.mu.Unlock()

		n, readErr := r.readChunk(pb.buf[:r.chunkSize])
		pb.offset = pos
		pb.size = n
		pos += int64(n)

		r.mu.Lock()
		if readErr != nil {
			r.err = errors.Wrap(readErr, "filesig: streaming read failed")
			r.stopped = true
			r.readyCV.Broadcast()
			r.mu.Unlock()
			return
		}
		if n == 0 {
			r.eof = true
			r.readyCV.Broadcast()
			r.mu.Unlock()
			return
		}
		r.ready = append(r.ready, pb)
		r.readyCV.Broadcast()
		r.mu.Unlock()
	}
}

// readChunk fills dst as full as possible via successive Reads, the way
// os.File.Read can return short reads before true EOF. Records the byte
// count actually read; an io.EOF on the first read of this call is not an
// error, it just means n == 0.
func (r *streamReader) readChunk(dst []byte) (int, error) {
	total := 0
	for total < len(dst) {
		n, err := r.file.Read(dst[total:])
		total += n
		if err != nil {
			if total > 0 || err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// acquireRaw implements rawReader for the consumer side (spec §4.2's
// "Consumer acquire_raw").
func (r *streamReader) acquireRaw() (Block, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.ready) == 0 && !r.stopped && !r.eof {
		r.readyCV.Wait()
	}

	if r.err != nil {
		err := r.err
		r.err = nil
		return Block{}, false, err
	}

	if r.eof && len(r.ready) == 0 {
		r.stopped = true
	}
	if r.stopped {
		return Block{}, false, nil
	}

	pb := r.ready[0]
	r.ready = r.ready[1:]
	r.busy[pb.offset] = pb

	return Block{Offset: pb.offset, Size: int32(pb.size), Data: pb.buf[:pb.size]}, true, nil
}

// releaseRaw implements rawReader: move the buffer from busy back to free,
// keyed by the block's offset (unique among in-flight blocks, since each
// offset is handed out by acquireRaw at most once before being released).
// The C++ reader instead matches on the raw buffer address
// (original_source/file_sig_lib/FileStreamChunkReader.cpp's freeChunk); the
// offset key is equivalent here and avoids relying on slice-header identity.
// A release for a block this reader never handed out is a programmer error.
func (r *streamReader) releaseRaw(block Block) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pb, ok := r.busy[block.Offset]
	if !ok {
		panic(panicReleaseUnknown)
	}
	delete(r.busy, block.Offset)
	r.free = append(r.free, pb)
	r.freeCV.Signal()
}

// stop implements rawReader.stop, forwarding the coordinator's stop
// notification (spec §5's cancellation semantics: "each reader forwards
// the stop notification from the coordinator"). Idempotent and safe from
// any goroutine, matching
// original_source/file_sig_lib/FileStreamChunkReader.hpp's stop(sync).
func (r *streamReader) stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		r.freeCV.Broadcast()
		r.readyCV.Broadcast()
	})
	<-r.doneCh
	r.file.Close()
}
