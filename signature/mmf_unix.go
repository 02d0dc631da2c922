//go:build linux || darwin
// +build linux darwin

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

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mapRegion maps [offset, offset+length) of file read-only and private,
// matching original_source/file_sig_lib/FileMappingChunkReader.cpp's
// mmap(nullptr, size, PROT_READ, MAP_PRIVATE, fd, offset). Generalizes
// common/mmf_unix.go's NewMMF (which also supports writable/shared
// mappings this reader never needs) down to the read-only case.
func mapRegion(file *os.File, offset int64, length int) ([]byte, error) {
	b, err := unix.Mmap(int(file.Fd()), offset, length, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(err, "filesig: mmap failed")
	}
	return b, nil
}

// adviseSequential hints the page cache the way the teacher's mmap-all path
// does (madvise MADV_SEQUENTIAL, then MADV_WILLNEED; the advice values are
// not bit flags, so they are issued as two calls). Advisory only; a failure
// here never affects correctness, so the caller ignores it.
func adviseSequential(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_SEQUENTIAL); err != nil {
		return err
	}
	return unix.Madvise(b, unix.MADV_WILLNEED)
}

// unmapRegion is the inverse of mapRegion, keyed on the exact slice that
// was returned, so it carries its own length - the "drop the size
// parameter" bug spec §9 calls out can't happen here since there's nothing
// separate to drop.
func unmapRegion(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return errors.Wrap(err, "filesig: munmap failed")
	}
	return nil
}

func pageSize() int {
	return os.Getpagesize()
}
