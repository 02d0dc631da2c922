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

import "sync"

// Block is an immutable view into one contiguous range of a file's bytes.
// Offsets across the blocks produced by a single reader partition the file
// exactly: offset_i + size_i == offset_{i+1}, offset_0 == 0, and the sum of
// all sizes equals the file size.
type Block struct {
	Offset int64
	Size   int32
	Data   []byte
}

// rawReader is implemented by the concrete reader variants. acquireRaw
// returns (block, false, nil) at EOF and must never fail after that point.
// releaseRaw must not fail; any cleanup error it hits must be logged and
// discarded, or treated as fatal process state, never returned to the caller.
type rawReader interface {
	acquireRaw() (Block, bool, error)
	releaseRaw(Block)
	stop()
}

// BlockHandle is a scoped ownership token over a Block. At most one live
// handle exists per acquisition; Release() gives the block back to its
// reader (pool slot, or unmap) exactly once. Accessing Data() on a released
// handle is a programmer error and panics, mirroring the teacher's
// "assert(m_reader)" discipline in ChunkReader::Chunk (original_source/file_sig_lib/ChunkReader.cpp)
// and the use/unuse locking style of common/singleChunkReader.go.
type BlockHandle struct {
	mu       sync.Mutex
	block    Block
	reader   rawReader
	released bool
}

func newBlockHandle(reader rawReader, block Block) *BlockHandle {
	return &BlockHandle{reader: reader, block: block}
}

// Offset is the absolute position of this block's first byte within the file.
func (h *BlockHandle) Offset() int64 {
	return h.block.Offset
}

// Size is the number of valid bytes in this block.
func (h *BlockHandle) Size() int32 {
	return h.block.Size
}

// Data returns the block's bytes. Panics if the handle has been released.
func (h *BlockHandle) Data() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		panic("filesig: use of a released block handle")
	}
	return h.block.Data
}

// Release returns the block to its reader. Safe to call more than once;
// only the first call has effect, so callers that release explicitly and
// then let the handle go out of scope still satisfy "release exactly once".
func (h *BlockHandle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	block := h.block
	h.mu.Unlock()

	h.reader.releaseRaw(block)
}
