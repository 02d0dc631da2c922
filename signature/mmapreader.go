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
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// mmapReader is the memory-mapping reader (spec §4.3, C3), grounded on
// original_source/file_sig_lib/FileMappingChunkReader.{hpp,cpp}. Two modes
// selected at construction:
//
//   - mapAll: the whole file is mapped once; acquireRaw hands out slices
//     into that single mapping and releaseRaw is a no-op.
//   - per-block: acquireRaw maps exactly the requested window and
//     releaseRaw unmaps it.
//
// Cursor discipline mirrors the streaming reader's producer-side cursor:
// one mutex guards a 64-bit position plus the file-size endpoint.
type mmapReader struct {
	base baseReader

	file      *os.File
	fileSize  int64
	chunkSize int64
	mapAll    bool

	mu      sync.Mutex
	pos     int64
	stopped bool
	whole   []byte // non-nil only in mapAll mode, set once at construction

	busyMu sync.Mutex
	busy   map[uintptr]struct{} // per-block mode only: addresses handed out but not yet released

	unmapOnce sync.Once
}

// NewMmapReader opens path and, in mapAll mode, maps it immediately. In
// per-block mode chunkSize must be a multiple of the OS page size, since
// mmap/MapViewOfFile both require page-aligned offsets and every block
// after the first starts at a multiple of chunkSize (spec §4.3's
// alignment constraint).
func NewMmapReader(path string, chunkSize int64, mapAll bool) (BlockReader, error) {
	if chunkSize <= 0 {
		return nil, errors.New("filesig: chunk_size must be positive")
	}
	if !mapAll && chunkSize%int64(pageSize()) != 0 {
		return nil, ErrUnalignedChunk
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotAccessible, "open %s: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(ErrCannotStatFile, "stat %s: %v", path, err)
	}

	r := &mmapReader{
		file:      f,
		fileSize:  info.Size(),
		chunkSize: chunkSize,
		mapAll:    mapAll,
		busy:      make(map[uintptr]struct{}),
	}
	r.base = baseReader{impl: r}

	if mapAll && r.fileSize > 0 {
		whole, err := mapRegion(f, 0, int(r.fileSize))
		if err != nil {
			f.Close()
			return nil, err
		}
		_ = adviseSequential(whole) // advisory only
		r.whole = whole
	}

	return &r.base, nil
}

// acquireRaw implements rawReader. The cursor advance happens under mu;
// the actual per-block mmap syscall (when not mapAll) happens outside it,
// matching FileMappingChunkReader.cpp's getChunk, which releases its lock
// before calling mmap.
func (r *mmapReader) acquireRaw() (Block, bool, error) {
	r.mu.Lock()
	if r.stopped || r.pos >= r.fileSize {
		r.mu.Unlock()
		return Block{}, false, nil
	}

	offset := r.pos
	size := r.chunkSize
	if remaining := r.fileSize - offset; size > remaining {
		size = remaining
	}
	r.pos += size

	if r.mapAll {
		data := r.whole[offset : offset+size]
		r.mu.Unlock()
		return Block{Offset: offset, Size: int32(size), Data: data}, true, nil
	}
	r.mu.Unlock()

	data, err := mapRegion(r.file, offset, int(size))
	if err != nil {
		return Block{}, false, err
	}

	r.busyMu.Lock()
	r.busy[addrOf(data)] = struct{}{}
	r.busyMu.Unlock()

	return Block{Offset: offset, Size: int32(size), Data: data}, true, nil
}

// releaseRaw implements rawReader. In mapAll mode this is a no-op per spec
// §4.3; the whole mapping is torn down once at stop(). In per-block mode
// it unmaps exactly the slice handed out by acquireRaw - the slice header
// already carries both the base address and the length, so unlike the
// documented "dropped size parameter" bug (spec §9), there's no separate
// size to lose in the first place.
func (r *mmapReader) releaseRaw(block Block) {
	if r.mapAll {
		return
	}

	addr := addrOf(block.Data)
	r.busyMu.Lock()
	if _, ok := r.busy[addr]; !ok {
		r.busyMu.Unlock()
		panic(panicReleaseUnknown)
	}
	delete(r.busy, addr)
	r.busyMu.Unlock()

	if err := unmapRegion(block.Data); err != nil {
		panic(err)
	}
}

// stop implements rawReader.stop. Any blocks still checked out in
// per-block mode are the caller's responsibility to release first; stop
// only tears down the whole-file mapping and the file handle.
func (r *mmapReader) stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.unmapOnce.Do(func() {
		if r.whole != nil {
			if err := unmapRegion(r.whole); err != nil {
				panic(err)
			}
		}
	})
	r.file.Close()
}

func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
