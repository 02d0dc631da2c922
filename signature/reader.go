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

// BlockReader is the uniform pull API consumed by the pipeline's workers.
// AcquireNext blocks until a block is available, returns (nil, nil) at EOF,
// and is safe to call concurrently from multiple worker goroutines -
// implementations own their internal synchronization.
//
// This is a template-method interface: concrete readers (streamReader,
// mmapReader) only implement rawReader's acquireRaw/releaseRaw; baseReader
// wraps the raw pair into a *BlockHandle whose Release() forwards to
// releaseRaw. Modeled on original_source/file_sig_lib/ChunkReader.{hpp,cpp}'s
// getNextChunk/getChunk/freeChunk split, and on common/singleChunkReader.go's
// public-wrapper-over-private-impl shape.
type BlockReader interface {
	// AcquireNext returns the next block in file order, or (nil, nil) at EOF.
	AcquireNext() (*BlockHandle, error)

	// Stop releases any resources the reader holds and unblocks any
	// in-flight or future AcquireNext calls, causing them to return
	// (nil, nil). Safe to call multiple times and from any goroutine.
	Stop()
}

type baseReader struct {
	impl rawReader
}

func (b *baseReader) AcquireNext() (*BlockHandle, error) {
	block, ok, err := b.impl.acquireRaw()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return newBlockHandle(b.impl, block), nil
}

func (b *baseReader) Stop() {
	b.impl.stop()
}
