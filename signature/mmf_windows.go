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
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// mapRegion is CreateFileMapping+MapViewOfFile, matching
// common/mmf_windows.go's NewMMF but restricted to the read-only case the
// spec's reader portability contract (§4.3) needs on this platform.
func mapRegion(file *os.File, offset int64, length int) ([]byte, error) {
	end := offset + int64(length) // the mapping object must cover the whole view
	h, err := windows.CreateFileMapping(windows.Handle(file.Fd()), nil, windows.PAGE_READONLY,
		uint32(end>>32), uint32(end&0xffffffff), nil)
	if err != nil {
		return nil, errors.Wrap(err, "filesig: CreateFileMapping failed")
	}
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, uint32(offset>>32), uint32(offset&0xffffffff), uintptr(length))
	if err != nil {
		return nil, errors.Wrap(err, "filesig: MapViewOfFile failed")
	}

	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = length
	sh.Cap = length
	return b, nil
}

// adviseSequential is a no-op on Windows: there is no MapViewOfFile
// equivalent of madvise in the surface this module otherwise uses.
func adviseSequential(b []byte) error {
	return nil
}

func unmapRegion(b []byte) error {
	addr := uintptr(unsafe.Pointer(&b[0]))
	if err := windows.UnmapViewOfFile(addr); err != nil {
		return errors.Wrap(err, "filesig: UnmapViewOfFile failed")
	}
	return nil
}

func pageSize() int {
	var si windows.SystemInfo
	windows.GetSystemInfo(&si)
	return int(si.PageSize)
}
